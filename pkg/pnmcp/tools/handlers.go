package tools

import (
	"context"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/admin"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/docs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/models"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/pubsub"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/schema"
)

// Deps are the services the tools call into. Admin is nil when no admin
// credentials are configured; admin tools then fail with a configuration
// error naming every way to configure them.
type Deps struct {
	Docs   *docs.Client
	Admin  *admin.Facade
	PubSub *pubsub.Service
}

// RegisterAll registers every tool with the schemas of set.
func RegisterAll(r *Registry, set schema.Set, deps Deps) {
	h := &handlers{deps: deps}

	for _, t := range []Tool{
		{
			Name:        schema.ToolSDKDocumentation,
			Description: "Retrieve PubNub SDK documentation for a language and feature.",
			Handler:     h.sdkDocumentation,
		},
		{
			Name:        schema.ToolChatSDKDocumentation,
			Description: "Retrieve PubNub Chat SDK documentation for a language and feature.",
			Handler:     h.chatDocumentation,
		},
		{
			Name:        schema.ToolHowTo,
			Description: "Retrieve a PubNub how-to guide.",
			Handler:     h.howTo,
		},
		{
			Name:        schema.ToolManageApps,
			Description: "List, create or rename PubNub apps in the admin portal.",
			Handler:     h.manageApps,
		},
		{
			Name: schema.ToolManageKeysets,
			Description: "Get, list, create or reconfigure PubNub keysets. " +
				"Creating a keyset without appId creates an app for it first.",
			Handler: h.manageKeysets,
		},
		{
			Name:        schema.ToolUsageMetrics,
			Description: "Retrieve PubNub usage metrics for a date range.",
			Handler:     h.usageMetrics,
		},
		{
			Name:        schema.ToolManageAppContext,
			Description: "Manage App Context users, channels and memberships.",
			Handler:     h.appContext,
		},
		{
			Name:        schema.ToolSendMessage,
			Description: "Publish a message or send a signal to a PubNub channel.",
			Handler:     h.sendMessage,
		},
		{
			Name:        schema.ToolPresence,
			Description: "Get occupancy of channels (here now) or the channels of a user (where now).",
			Handler:     h.presence,
		},
		{
			Name: schema.ToolSubscribeAndReceive,
			Description: "Subscribe to a channel, wait for messages or a timeout (max 30s), " +
				"then unsubscribe and return what arrived.",
			Handler: h.subscribeAndReceive,
		},
		{
			Name:        schema.ToolHistory,
			Description: "Fetch stored messages from one or more channels.",
			Handler:     h.history,
		},
	} {
		t.Schema = set[t.Name]
		r.Register(t)
	}
}

type handlers struct {
	deps Deps
}

func (h *handlers) admin() (*admin.Facade, error) {
	if h.deps.Admin == nil {
		return nil, credentials.ErrMissingAdminCredentials()
	}

	return h.deps.Admin, nil
}

type docRequest struct {
	Language string `json:"language"`
	Feature  string `json:"feature"`
	Slug     string `json:"slug"`
}

func documentText(doc *models.Documentation) string {
	if doc.Metadata.Title == "" {
		return doc.Content
	}

	text := "# " + doc.Metadata.Title + "\n\n" + doc.Content
	if doc.Metadata.SourceURL != "" {
		text += "\n\nSource: " + doc.Metadata.SourceURL
	}

	return text
}

func (h *handlers) sdkDocumentation(ctx context.Context, args map[string]any) (any, error) {
	req, err := decode[docRequest](args)
	if err != nil {
		return nil, err
	}

	doc, err := h.deps.Docs.SDKDocumentation(ctx, req.Language, req.Feature)
	if err != nil {
		return nil, err
	}

	return documentText(doc), nil
}

func (h *handlers) chatDocumentation(ctx context.Context, args map[string]any) (any, error) {
	req, err := decode[docRequest](args)
	if err != nil {
		return nil, err
	}

	doc, err := h.deps.Docs.ChatSDKDocumentation(ctx, req.Language, req.Feature)
	if err != nil {
		return nil, err
	}

	return documentText(doc), nil
}

func (h *handlers) howTo(ctx context.Context, args map[string]any) (any, error) {
	req, err := decode[docRequest](args)
	if err != nil {
		return nil, err
	}

	doc, err := h.deps.Docs.HowTo(ctx, req.Slug)
	if err != nil {
		return nil, err
	}

	return documentText(doc), nil
}

type appsRequest struct {
	Operation string `json:"operation"`
	Data      struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

func (h *handlers) manageApps(ctx context.Context, args map[string]any) (any, error) {
	facade, err := h.admin()
	if err != nil {
		return nil, err
	}

	req, err := decode[appsRequest](args)
	if err != nil {
		return nil, err
	}

	switch req.Operation {
	case "create":
		return facade.CreateApp(ctx, req.Data.Name)
	case "update":
		return facade.UpdateApp(ctx, req.Data.ID, req.Data.Name)
	default:
		apps, err := facade.ListApps(ctx)
		if err != nil {
			return nil, err
		}

		return map[string]any{"apps": apps, "total": len(apps)}, nil
	}
}

type keysetsRequest struct {
	Operation string `json:"operation"`
	Data      struct {
		ID     string              `json:"id"`
		AppID  string              `json:"appId"`
		Name   string              `json:"name"`
		Type   models.KeysetType   `json:"type"`
		Config models.KeysetConfig `json:"config"`
	} `json:"data"`
}

func (h *handlers) manageKeysets(ctx context.Context, args map[string]any) (any, error) {
	facade, err := h.admin()
	if err != nil {
		return nil, err
	}

	req, err := decode[keysetsRequest](args)
	if err != nil {
		return nil, err
	}

	switch req.Operation {
	case "get":
		return facade.GetKeyset(ctx, req.Data.ID)
	case "create":
		return facade.CreateKeyset(ctx, models.NewKeyset{
			Name:   req.Data.Name,
			AppID:  req.Data.AppID,
			Type:   req.Data.Type,
			Config: req.Data.Config,
		})
	case "update":
		return facade.UpdateKeysetConfig(ctx, req.Data.ID, req.Data.Config)
	default:
		keysets, err := facade.ListKeysets(ctx, req.Data.AppID)
		if err != nil {
			return nil, err
		}

		return map[string]any{"keysets": keysets, "total": len(keysets)}, nil
	}
}

func (h *handlers) usageMetrics(ctx context.Context, args map[string]any) (any, error) {
	facade, err := h.admin()
	if err != nil {
		return nil, err
	}

	q, err := decode[models.UsageQuery](args)
	if err != nil {
		return nil, err
	}

	return facade.GetUsageMetrics(ctx, q)
}

func (h *handlers) appContext(ctx context.Context, args map[string]any) (any, error) {
	req, err := decode[pubsub.AppContextRequest](args)
	if err != nil {
		return nil, err
	}

	return h.deps.PubSub.AppContext(ctx, req)
}

func (h *handlers) sendMessage(ctx context.Context, args map[string]any) (any, error) {
	req, err := decode[pubsub.SendRequest](args)
	if err != nil {
		return nil, err
	}

	return h.deps.PubSub.Send(ctx, req)
}

func (h *handlers) presence(ctx context.Context, args map[string]any) (any, error) {
	req, err := decode[pubsub.PresenceRequest](args)
	if err != nil {
		return nil, err
	}

	return h.deps.PubSub.Presence(ctx, req)
}

func (h *handlers) subscribeAndReceive(ctx context.Context, args map[string]any) (any, error) {
	req, err := decode[pubsub.SubscribeRequest](args)
	if err != nil {
		return nil, err
	}

	return h.deps.PubSub.SubscribeAndReceive(ctx, req)
}

func (h *handlers) history(ctx context.Context, args map[string]any) (any, error) {
	req, err := decode[pubsub.HistoryRequest](args)
	if err != nil {
		return nil, err
	}

	return h.deps.PubSub.History(ctx, req)
}
