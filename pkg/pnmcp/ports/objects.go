package ports

// ObjectKind is the App Context object type.
type ObjectKind string

// App Context object types.
const (
	ObjectUser       ObjectKind = "user"
	ObjectChannel    ObjectKind = "channel"
	ObjectMembership ObjectKind = "membership"
)

// ObjectOp is the App Context operation.
type ObjectOp string

// App Context operations.
const (
	OpGet    ObjectOp = "get"
	OpSet    ObjectOp = "set"
	OpRemove ObjectOp = "remove"
	OpGetAll ObjectOp = "getAll"
)

// MembershipSide tells which side of a user/channel membership is
// addressed.
type MembershipSide int

const (
	// MembershipsOfUser addresses the channels of user ID.
	MembershipsOfUser MembershipSide = iota
	// MembersOfChannel addresses the users of channel ID.
	MembersOfChannel
)

// ObjectsRequest is a decoded manage_app_context call.
type ObjectsRequest struct {
	Kind    ObjectKind
	Op      ObjectOp
	ID      string
	Data    ObjectData
	Side    MembershipSide
	Entries []MembershipEntry
	Options ObjectOptions
}

// ObjectData holds user or channel metadata fields.
type ObjectData struct {
	Name        string
	Email       string
	ExternalID  string
	ProfileURL  string
	Description string
	Custom      map[string]any
}

// MembershipEntry is one channel (or user) joined or left.
type MembershipEntry struct {
	ID     string
	Custom map[string]any
}

// ObjectOptions pages and filters list results.
type ObjectOptions struct {
	Limit  int
	Filter string
	Sort   []string
}
