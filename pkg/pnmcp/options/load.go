package options

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/analytics"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
)

// LoadOptions points at optional configuration sources.
type LoadOptions struct {
	// ConfigFile is a YAML file of non-secret settings.
	ConfigFile string
	// EnvFile is a .env file; variables already in Environ win.
	EnvFile string
	// Environ is the process environment. Nil means os.Environ.
	Environ credentials.Env
}

// fileConfig is the YAML file shape.
type fileConfig struct {
	Transport        string `yaml:"transport"`
	Addr             string `yaml:"addr"`
	LogLevel         string `yaml:"logLevel"`
	AdminV1URL       string `yaml:"adminV1Url"`
	AdminV2URL       string `yaml:"adminV2Url"`
	DocsURL          string `yaml:"docsUrl"`
	HTTPTimeout      string `yaml:"httpTimeout"`
	DocsCacheTTL     string `yaml:"docsCacheTTL"`
	DisableAnalytics *bool  `yaml:"disableAnalytics"`
	UserID           string `yaml:"userId"`
}

// Defaults returns the options used when nothing is configured.
func Defaults() *ServerOptions {
	return &ServerOptions{
		Transport:    TransportStdio,
		Addr:         DefaultAddr,
		LogLevel:     DefaultLogLevel,
		HTTPTimeout:  DefaultHTTPTimeout,
		DocsCacheTTL: DefaultDocsCacheTTL,
		Env:          credentials.Env{},
	}
}

// Load builds options from defaults, the YAML file and the environment,
// in increasing precedence. The environment snapshot is taken here and
// never re-read.
func Load(lo LoadOptions) (*ServerOptions, error) {
	env := lo.Environ
	if env == nil {
		env = credentials.FromEnviron()
	}

	if lo.EnvFile != "" {
		fromFile, err := godotenv.Read(lo.EnvFile)
		if err != nil {
			return nil, errors.Wrapf(err, "read env file %s", lo.EnvFile)
		}
		merged := make(credentials.Env, len(env)+len(fromFile))
		for k, v := range fromFile {
			merged[k] = v
		}
		for k, v := range env {
			merged[k] = v
		}
		env = merged
	}

	opts := Defaults()
	opts.Env = env

	if lo.ConfigFile != "" {
		if err := opts.applyFile(lo.ConfigFile); err != nil {
			return nil, err
		}
	}

	opts.applyEnv(env)

	if opts.UserID == "" {
		opts.UserID = "pubnub-mcp-" + uuid.NewString()
	}

	return opts, opts.Validate()
}

func (o *ServerOptions) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}

	setString(&o.LogLevel, fc.LogLevel)
	setString(&o.Addr, fc.Addr)
	setString(&o.AdminV1URL, fc.AdminV1URL)
	setString(&o.AdminV2URL, fc.AdminV2URL)
	setString(&o.DocsURL, fc.DocsURL)
	setString(&o.UserID, fc.UserID)
	if fc.Transport != "" {
		o.Transport = Transport(fc.Transport)
	}
	if fc.DisableAnalytics != nil {
		o.DisableAnalytics = *fc.DisableAnalytics
	}

	for _, d := range []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{fc.HTTPTimeout, &o.HTTPTimeout, "httpTimeout"},
		{fc.DocsCacheTTL, &o.DocsCacheTTL, "docsCacheTTL"},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return errors.Wrapf(err, "config file %s: %s", path, d.name)
		}
		*d.dst = v
	}

	return nil
}

func (o *ServerOptions) applyEnv(env credentials.Env) {
	setString(&o.AdminV1URL, env[EnvAdminV1URL])
	setString(&o.AdminV2URL, env[EnvAdminV2URL])
	setString(&o.DocsURL, env[EnvDocsURL])
	setString(&o.UserID, env[EnvUserID])
	setString(&o.LogLevel, env[EnvLogLevel])
	if analytics.Disabled(env) {
		o.DisableAnalytics = true
	}
}

// Validate checks option values.
func (o *ServerOptions) Validate() error {
	if !o.Transport.Valid() {
		return pnerrs.NewConfigurationError(
			pnerrs.ErrCodeInvalidConfigOption,
			"unknown transport "+string(o.Transport)+": use stdio, http or sse",
		)
	}

	switch strings.ToLower(o.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return pnerrs.NewConfigurationError(
			pnerrs.ErrCodeInvalidConfigOption,
			"unknown log level "+o.LogLevel+": use debug, info, warn or error",
			EnvLogLevel,
		)
	}

	if o.Transport != TransportStdio && o.Addr == "" {
		return pnerrs.NewConfigurationError(
			pnerrs.ErrCodeInvalidConfigOption,
			"a listen address is required for the "+string(o.Transport)+" transport",
		)
	}

	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
