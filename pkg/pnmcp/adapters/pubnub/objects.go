package pubnub

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	sdk "github.com/pubnub/go/v7"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

// Objects dispatches an App Context request to the matching SDK builder.
func (c *Client) Objects(ctx context.Context, req ports.ObjectsRequest) (any, error) {
	var (
		res any
		err error
	)

	switch req.Kind {
	case ports.ObjectUser:
		res, err = c.userObjects(ctx, req)
	case ports.ObjectChannel:
		res, err = c.channelObjects(ctx, req)
	case ports.ObjectMembership:
		if req.Side == ports.MembersOfChannel {
			res, err = c.channelMembers(ctx, req)
		} else {
			res, err = c.memberships(ctx, req)
		}
	default:
		return nil, fmt.Errorf("unknown object type %q", req.Kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Op, req.Kind)
	}

	return res, nil
}

func (c *Client) userObjects(ctx context.Context, req ports.ObjectsRequest) (any, error) {
	include := []sdk.PNUUIDMetadataInclude{sdk.PNUUIDMetadataIncludeCustom}

	switch req.Op {
	case ports.OpGet:
		res, _, err := c.pn.GetUUIDMetadataWithContext(ctx).
			UUID(req.ID).
			Include(include).
			Execute()

		return res, err
	case ports.OpSet:
		b := c.pn.SetUUIDMetadataWithContext(ctx).UUID(req.ID).Include(include)
		if req.Data.Name != "" {
			b = b.Name(req.Data.Name)
		}
		if req.Data.Email != "" {
			b = b.Email(req.Data.Email)
		}
		if req.Data.ExternalID != "" {
			b = b.ExternalID(req.Data.ExternalID)
		}
		if req.Data.ProfileURL != "" {
			b = b.ProfileURL(req.Data.ProfileURL)
		}
		if req.Data.Custom != nil {
			b = b.Custom(req.Data.Custom)
		}
		res, _, err := b.Execute()

		return res, err
	case ports.OpRemove:
		res, _, err := c.pn.RemoveUUIDMetadataWithContext(ctx).UUID(req.ID).Execute()

		return res, err
	case ports.OpGetAll:
		b := c.pn.GetAllUUIDMetadataWithContext(ctx).Include(include).Count(true)
		if req.Options.Limit > 0 {
			b = b.Limit(req.Options.Limit)
		}
		if req.Options.Filter != "" {
			b = b.Filter(req.Options.Filter)
		}
		if len(req.Options.Sort) > 0 {
			b = b.Sort(req.Options.Sort)
		}
		res, _, err := b.Execute()

		return res, err
	}

	return nil, fmt.Errorf("unknown operation %q", req.Op)
}

func (c *Client) channelObjects(ctx context.Context, req ports.ObjectsRequest) (any, error) {
	include := []sdk.PNChannelMetadataInclude{sdk.PNChannelMetadataIncludeCustom}

	switch req.Op {
	case ports.OpGet:
		res, _, err := c.pn.GetChannelMetadataWithContext(ctx).
			Channel(req.ID).
			Include(include).
			Execute()

		return res, err
	case ports.OpSet:
		b := c.pn.SetChannelMetadataWithContext(ctx).Channel(req.ID).Include(include)
		if req.Data.Name != "" {
			b = b.Name(req.Data.Name)
		}
		if req.Data.Description != "" {
			b = b.Description(req.Data.Description)
		}
		if req.Data.Custom != nil {
			b = b.Custom(req.Data.Custom)
		}
		res, _, err := b.Execute()

		return res, err
	case ports.OpRemove:
		res, _, err := c.pn.RemoveChannelMetadataWithContext(ctx).Channel(req.ID).Execute()

		return res, err
	case ports.OpGetAll:
		b := c.pn.GetAllChannelMetadataWithContext(ctx).Include(include).Count(true)
		if req.Options.Limit > 0 {
			b = b.Limit(req.Options.Limit)
		}
		if req.Options.Filter != "" {
			b = b.Filter(req.Options.Filter)
		}
		if len(req.Options.Sort) > 0 {
			b = b.Sort(req.Options.Sort)
		}
		res, _, err := b.Execute()

		return res, err
	}

	return nil, fmt.Errorf("unknown operation %q", req.Op)
}

// memberships addresses the channels user req.ID belongs to.
func (c *Client) memberships(ctx context.Context, req ports.ObjectsRequest) (any, error) {
	include := []sdk.PNMembershipsInclude{
		sdk.PNMembershipsIncludeCustom,
		sdk.PNMembershipsIncludeChannel,
	}

	switch req.Op {
	case ports.OpGet, ports.OpGetAll:
		b := c.pn.GetMembershipsWithContext(ctx).UUID(req.ID).Include(include).Count(true)
		if req.Options.Limit > 0 {
			b = b.Limit(req.Options.Limit)
		}
		if req.Options.Filter != "" {
			b = b.Filter(req.Options.Filter)
		}
		if len(req.Options.Sort) > 0 {
			b = b.Sort(req.Options.Sort)
		}
		res, _, err := b.Execute()

		return res, err
	case ports.OpSet:
		set := make([]sdk.PNMembershipsSet, 0, len(req.Entries))
		for _, e := range req.Entries {
			set = append(set, sdk.PNMembershipsSet{
				Channel: sdk.PNMembershipsChannel{ID: e.ID},
				Custom:  e.Custom,
			})
		}
		res, _, err := c.pn.SetMembershipsWithContext(ctx).
			UUID(req.ID).
			Set(set).
			Include(include).
			Execute()

		return res, err
	case ports.OpRemove:
		remove := make([]sdk.PNMembershipsRemove, 0, len(req.Entries))
		for _, e := range req.Entries {
			remove = append(remove, sdk.PNMembershipsRemove{
				Channel: sdk.PNMembershipsChannel{ID: e.ID},
			})
		}
		res, _, err := c.pn.RemoveMembershipsWithContext(ctx).
			UUID(req.ID).
			Remove(remove).
			Include(include).
			Execute()

		return res, err
	}

	return nil, fmt.Errorf("unknown operation %q", req.Op)
}

// channelMembers addresses the users of channel req.ID.
func (c *Client) channelMembers(ctx context.Context, req ports.ObjectsRequest) (any, error) {
	include := []sdk.PNChannelMembersInclude{
		sdk.PNChannelMembersIncludeCustom,
		sdk.PNChannelMembersIncludeUUID,
	}

	switch req.Op {
	case ports.OpGet, ports.OpGetAll:
		b := c.pn.GetChannelMembersWithContext(ctx).Channel(req.ID).Include(include).Count(true)
		if req.Options.Limit > 0 {
			b = b.Limit(req.Options.Limit)
		}
		if req.Options.Filter != "" {
			b = b.Filter(req.Options.Filter)
		}
		if len(req.Options.Sort) > 0 {
			b = b.Sort(req.Options.Sort)
		}
		res, _, err := b.Execute()

		return res, err
	case ports.OpSet:
		set := make([]sdk.PNChannelMembersSet, 0, len(req.Entries))
		for _, e := range req.Entries {
			set = append(set, sdk.PNChannelMembersSet{
				UUID:   sdk.PNChannelMembersUUID{ID: e.ID},
				Custom: e.Custom,
			})
		}
		res, _, err := c.pn.SetChannelMembersWithContext(ctx).
			Channel(req.ID).
			Set(set).
			Include(include).
			Execute()

		return res, err
	case ports.OpRemove:
		remove := make([]sdk.PNChannelMembersRemove, 0, len(req.Entries))
		for _, e := range req.Entries {
			remove = append(remove, sdk.PNChannelMembersRemove{
				UUID: sdk.PNChannelMembersUUID{ID: e.ID},
			})
		}
		res, _, err := c.pn.RemoveChannelMembersWithContext(ctx).
			Channel(req.ID).
			Remove(remove).
			Include(include).
			Execute()

		return res, err
	}

	return nil, fmt.Errorf("unknown operation %q", req.Op)
}
