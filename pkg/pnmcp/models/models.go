// Package models holds the normalized shapes every admin API generation
// is mapped into, plus the documentation response.
package models

// KeysetType is the normalized keyset environment.
type KeysetType string

const (
	// KeysetTesting is a free testing keyset.
	KeysetTesting KeysetType = "testing"
	// KeysetProduction is a production keyset.
	KeysetProduction KeysetType = "production"
)

// Valid reports whether t is one of the known keyset types.
func (t KeysetType) Valid() bool {
	return t == KeysetTesting || t == KeysetProduction
}

// App groups keysets.
type App struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Keyset is a publish/subscribe key pair plus its feature configuration.
type Keyset struct {
	ID           string        `json:"id"`
	AppID        string        `json:"appId,omitempty"`
	Name         string        `json:"name"`
	PublishKey   string        `json:"publishKey"`
	SubscribeKey string        `json:"subscribeKey"`
	Type         KeysetType    `json:"type"`
	Config       *KeysetConfig `json:"config,omitempty"`
}

// KeysetConfig groups the independently toggleable feature blocks.
// A nil block means "not specified" and is never forwarded upstream.
type KeysetConfig struct {
	MessagePersistence *MessagePersistence `json:"messagePersistence,omitempty"`
	AppContext         *AppContext         `json:"appContext,omitempty"`
	Files              *Files              `json:"files,omitempty"`
	Presence           *Presence           `json:"presence,omitempty"`
}

// Empty reports whether no block is set.
func (c *KeysetConfig) Empty() bool {
	return c == nil ||
		(c.MessagePersistence == nil && c.AppContext == nil &&
			c.Files == nil && c.Presence == nil)
}

// MessagePersistence configures message storage.
type MessagePersistence struct {
	Enabled           bool  `json:"enabled"`
	Retention         *int  `json:"retention,omitempty"`
	DeleteFromHistory *bool `json:"deleteFromHistory,omitempty"`
}

// AppContext configures object (user/channel/membership) storage.
type AppContext struct {
	Enabled               bool   `json:"enabled"`
	Region                string `json:"region,omitempty"`
	UserMetadataEvents    *bool  `json:"userMetadataEvents,omitempty"`
	ChannelMetadataEvents *bool  `json:"channelMetadataEvents,omitempty"`
	MembershipEvents      *bool  `json:"membershipEvents,omitempty"`
}

// Files configures file sharing.
type Files struct {
	Enabled   bool   `json:"enabled"`
	Region    string `json:"region,omitempty"`
	Retention *int   `json:"retention,omitempty"`
}

// Presence configures occupancy tracking.
type Presence struct {
	Enabled                   bool  `json:"enabled"`
	AnnounceMax               *int  `json:"announceMax,omitempty"`
	Interval                  *int  `json:"interval,omitempty"`
	Deltas                    *bool `json:"deltas,omitempty"`
	GenerateLeaveOnDisconnect *bool `json:"generateLeaveOnDisconnect,omitempty"`
	StreamFiltering           *bool `json:"streamFiltering,omitempty"`
	GlobalHereNow             *bool `json:"globalHereNow,omitempty"`
	Debounce                  *int  `json:"debounce,omitempty"`
}

// Allowed enum values for the feature blocks.
var (
	PersistenceRetentions = []int{1, 7, 30, 90, 180, 365, 0}
	AppContextRegions     = []string{"aws-iad-1", "aws-pdx-1", "aws-fra-1", "aws-bom-1"}
	FilesRegions          = []string{"us-east-1", "eu-central-1", "ap-south-1"}
	FilesRetentions       = []int{1, 7, 30}
)

// NewKeyset is the input for keyset creation.
type NewKeyset struct {
	Name   string       `json:"name"`
	AppID  string       `json:"appId,omitempty"`
	Type   KeysetType   `json:"type"`
	Config KeysetConfig `json:"config"`
}

// UsageQuery selects usage metrics. V1 uses Scope/ID, V2 uses
// EntityType/EntityID/Metrics; both use the date range.
type UsageQuery struct {
	Scope      string   `json:"scope,omitempty"`
	ID         string   `json:"id,omitempty"`
	EntityType string   `json:"entityType,omitempty"`
	EntityID   string   `json:"entityId,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
}

// Documentation is the documentation service response, passed through.
type Documentation struct {
	Content  string      `json:"content"`
	Metadata DocMetadata `json:"metadata"`
}

// DocMetadata describes a documentation page.
type DocMetadata struct {
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	UpdatedAt string `json:"updated_at"`
}
