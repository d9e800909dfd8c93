package tools

import (
	"context"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
)

// Resource is a readable MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	Read        func(ctx context.Context) (string, error)
}

// RegisterResource adds res, replacing any resource with the same URI.
func (r *Registry) RegisterResource(res Resource) {
	if _, exists := r.resources[res.URI]; !exists {
		r.resOrder = append(r.resOrder, res.URI)
	}
	r.resources[res.URI] = &res
}

// Resources returns the registered resources in registration order.
func (r *Registry) Resources() []*Resource {
	out := make([]*Resource, 0, len(r.resOrder))
	for _, uri := range r.resOrder {
		out = append(out, r.resources[uri])
	}

	return out
}

// ReadResource reads the resource at uri.
func (r *Registry) ReadResource(ctx context.Context, uri string) (string, error) {
	res, ok := r.resources[uri]
	if !ok {
		return "", pnerrs.NewValidationError(
			pnerrs.ErrCodeInvalidFormat,
			pnerrs.Issue{Path: []string{"uri"}, Message: "unknown resource " + uri},
		)
	}

	return res.Read(ctx)
}

// Resource URIs.
const (
	ResourceSDKCatalog    = "pubnub://docs/sdk-catalog"
	ResourceHowToIndex    = "pubnub://docs/how-to"
	ResourceBestPractices = "pubnub://docs/best-practices"
	ResourceServerStatus  = "pubnub://server/status"
)

// Status is the non-secret server configuration reported by
// pubnub://server/status.
type Status struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Transport  string `json:"transport"`
	PubSubKeys string `json:"pubSubKeys"`
	AdminMode  string `json:"adminMode,omitempty"`
	Analytics  bool   `json:"analytics"`
}

// RegisterResources registers the documentation and status resources.
func RegisterResources(r *Registry, deps Deps, status Status) {
	r.RegisterResource(Resource{
		URI:         ResourceSDKCatalog,
		Name:        "sdk-catalog",
		Description: "Languages and features available in the SDK and Chat SDK documentation",
		MIMEType:    "application/json",
		Read: func(context.Context) (string, error) {
			return TextResult(deps.Docs.Catalog()).Text(), nil
		},
	})

	r.RegisterResource(Resource{
		URI:         ResourceHowToIndex,
		Name:        "how-to-index",
		Description: "Available how-to guides",
		MIMEType:    "application/json",
		Read: func(context.Context) (string, error) {
			return TextResult(deps.Docs.Catalog().HowTo).Text(), nil
		},
	})

	r.RegisterResource(Resource{
		URI:         ResourceBestPractices,
		Name:        "best-practices",
		Description: "PubNub best practices",
		MIMEType:    "text/markdown",
		Read: func(ctx context.Context) (string, error) {
			doc, err := deps.Docs.BestPractices(ctx)
			if err != nil {
				return "", err
			}

			return documentText(doc), nil
		},
	})

	r.RegisterResource(Resource{
		URI:         ResourceServerStatus,
		Name:        "server-status",
		Description: "Where keys come from and which admin API is in use",
		MIMEType:    "application/json",
		Read: func(context.Context) (string, error) {
			return TextResult(status).Text(), nil
		},
	})
}
