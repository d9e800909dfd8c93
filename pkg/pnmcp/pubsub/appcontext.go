package pubsub

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

// AppContextRequest is a manage_app_context call as received.
type AppContextRequest struct {
	credentials.Pair
	Type      string             `json:"type"`
	Operation string             `json:"operation"`
	ID        string             `json:"id"`
	Data      *AppContextData    `json:"data,omitempty"`
	Options   *AppContextOptions `json:"options,omitempty"`
}

// AppContextData carries object fields, or for memberships either the
// channels of a user or the users of a channel.
type AppContextData struct {
	Name        string          `json:"name,omitempty"`
	Email       string          `json:"email,omitempty"`
	ExternalID  string          `json:"externalId,omitempty"`
	ProfileURL  string          `json:"profileUrl,omitempty"`
	Description string          `json:"description,omitempty"`
	Custom      map[string]any  `json:"custom,omitempty"`
	Channels    []MembershipRef `json:"channels,omitempty"`
	UUIDs       []MembershipRef `json:"uuids,omitempty"`
}

// AppContextOptions pages and filters list operations.
type AppContextOptions struct {
	Limit   int      `json:"limit,omitempty"`
	Filter  string   `json:"filter,omitempty"`
	Sort    []string `json:"sort,omitempty"`
	Members bool     `json:"members,omitempty"`
}

// MembershipRef is either a bare id or {"id": ..., "custom": {...}}.
type MembershipRef struct {
	ID     string         `json:"id"`
	Custom map[string]any `json:"custom,omitempty"`
}

// UnmarshalJSON accepts a string or an object.
func (r *MembershipRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = MembershipRef{ID: id}

		return nil
	}

	type plain MembershipRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.ID == "" {
		return errors.New("membership entry needs an id")
	}
	*r = MembershipRef(p)

	return nil
}

// ObjectsRequest converts the call into its tagged form. Which membership
// side is addressed is decided here and nowhere else.
func (r AppContextRequest) ObjectsRequest() ports.ObjectsRequest {
	out := ports.ObjectsRequest{
		Kind: ports.ObjectKind(r.Type),
		Op:   ports.ObjectOp(r.Operation),
		ID:   r.ID,
		Side: ports.MembershipsOfUser,
	}

	if r.Options != nil {
		out.Options = ports.ObjectOptions{
			Limit:  r.Options.Limit,
			Filter: r.Options.Filter,
			Sort:   r.Options.Sort,
		}
		if r.Options.Members {
			out.Side = ports.MembersOfChannel
		}
	}

	if d := r.Data; d != nil {
		out.Data = ports.ObjectData{
			Name:        d.Name,
			Email:       d.Email,
			ExternalID:  d.ExternalID,
			ProfileURL:  d.ProfileURL,
			Description: d.Description,
			Custom:      d.Custom,
		}

		refs := d.Channels
		if len(d.UUIDs) > 0 {
			out.Side = ports.MembersOfChannel
			refs = d.UUIDs
		}
		for _, ref := range refs {
			out.Entries = append(out.Entries, ports.MembershipEntry{ID: ref.ID, Custom: ref.Custom})
		}
	}

	return out
}

// AppContext runs a user, channel or membership operation.
func (s *Service) AppContext(ctx context.Context, req AppContextRequest) (any, error) {
	c, err := s.client(req.Pair)
	if err != nil {
		return nil, err
	}

	return c.Objects(ctx, req.ObjectsRequest())
}
