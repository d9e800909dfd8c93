// Package credentials decides where PubNub key material comes from.
//
// Pub/Sub keys come either from the PUBNUB_PUBLISH_KEY/PUBNUB_SUBSCRIBE_KEY
// environment pair or from tool arguments. Admin API access is either v2
// (PUBNUB_API_KEY) or v1 (PUBNUB_EMAIL + PUBNUB_PASSWORD). The environment
// is snapshotted once and treated as immutable for the process lifetime.
package credentials

import (
	"os"
	"strings"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
)

// Environment variable names.
const (
	EnvPublishKey   = "PUBNUB_PUBLISH_KEY"
	EnvSubscribeKey = "PUBNUB_SUBSCRIBE_KEY"
	EnvEmail        = "PUBNUB_EMAIL"
	EnvPassword     = "PUBNUB_PASSWORD"
	EnvAPIKey       = "PUBNUB_API_KEY"
)

// AdminMode selects the admin API generation.
type AdminMode string

const (
	// AdminV1 is the legacy email/password session API.
	AdminV1 AdminMode = "v1"
	// AdminV2 is the API-key based API.
	AdminV2 AdminMode = "v2"
)

// Pair is a publish/subscribe key pair.
type Pair struct {
	PublishKey   string `json:"publishKey"`
	SubscribeKey string `json:"subscribeKey"`
}

// Complete reports whether both keys are present.
func (p Pair) Complete() bool {
	return p.PublishKey != "" && p.SubscribeKey != ""
}

// Env is an immutable snapshot of the variables the resolver reads.
type Env map[string]string

// FromEnviron snapshots the process environment.
func FromEnviron() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}

	return env
}

// get returns the trimmed value, treating blank values as unset.
func (e Env) get(key string) string {
	return strings.TrimSpace(e[key])
}

// Resolver applies the credential precedence rules.
type Resolver struct {
	env Env
}

// NewResolver creates a resolver over env.
func NewResolver(env Env) *Resolver {
	if env == nil {
		env = Env{}
	}

	return &Resolver{env: env}
}

// HasPubSubEnvKeys reports whether both Pub/Sub variables are set.
// A single variable counts as absent.
func (r *Resolver) HasPubSubEnvKeys() bool {
	_, ok := r.PubSubEnvKeys()

	return ok
}

// PubSubEnvKeys returns the environment pair when both are set.
func (r *Resolver) PubSubEnvKeys() (Pair, bool) {
	p := Pair{
		PublishKey:   r.env.get(EnvPublishKey),
		SubscribeKey: r.env.get(EnvSubscribeKey),
	}
	if !p.Complete() {
		return Pair{}, false
	}

	return p, true
}

// ResolvePubSubKeys picks the key pair for a tool call. A complete
// environment pair always wins over arguments; otherwise both argument
// fields must be present. Partial arguments are never merged.
func (r *Resolver) ResolvePubSubKeys(args Pair) (Pair, error) {
	if env, ok := r.PubSubEnvKeys(); ok {
		return env, nil
	}

	args.PublishKey = strings.TrimSpace(args.PublishKey)
	args.SubscribeKey = strings.TrimSpace(args.SubscribeKey)
	if args.Complete() {
		return args, nil
	}

	return Pair{}, ErrMissingPubSubKeys()
}

// AdminMode returns v2 when PUBNUB_API_KEY is set, v1 when both email and
// password are set, and a configuration error otherwise.
func (r *Resolver) AdminMode() (AdminMode, error) {
	if r.env.get(EnvAPIKey) != "" {
		return AdminV2, nil
	}

	if r.env.get(EnvEmail) != "" && r.env.get(EnvPassword) != "" {
		return AdminV1, nil
	}

	return "", ErrMissingAdminCredentials()
}

// APIKey returns the admin v2 API key.
func (r *Resolver) APIKey() string {
	return r.env.get(EnvAPIKey)
}

// Login returns the admin v1 email and password.
func (r *Resolver) Login() (email, password string) {
	return r.env.get(EnvEmail), r.env.get(EnvPassword)
}

// ErrMissingPubSubKeys is returned when neither source supplies both keys.
func ErrMissingPubSubKeys() *pnerrs.ConfigurationError {
	return pnerrs.NewConfigurationError(
		pnerrs.ErrCodeMissingPubSubKeys,
		"PubNub publish and subscribe keys are required: either set both "+
			EnvPublishKey+" and "+EnvSubscribeKey+" in the server environment, "+
			"or pass both publishKey and subscribeKey as tool arguments",
		EnvPublishKey, EnvSubscribeKey,
	)
}

// ErrMissingAdminCredentials is returned by every admin operation when no
// admin credentials are configured.
func ErrMissingAdminCredentials() *pnerrs.ConfigurationError {
	return pnerrs.NewConfigurationError(
		pnerrs.ErrCodeMissingAdminCreds,
		"PubNub admin credentials are not configured: set "+EnvAPIKey+
			" (admin API v2), or set both "+EnvEmail+" and "+EnvPassword+
			" (admin API v1)",
		EnvAPIKey, EnvEmail, EnvPassword,
	)
}
