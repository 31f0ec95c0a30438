// config.go

// Environment variable loading and validation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/MGallo-Code/hermes/internal/oauth"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ProviderConfig holds one provider's client registration, read from
// <PROVIDER>_CLIENT_ID, <PROVIDER>_CLIENT_SECRET, <PROVIDER>_REDIRECT_URI.
// The endpoint fields are optional overrides of the production endpoints.
type ProviderConfig struct {
	ClientID     string `env:"CLIENT_ID,required,notEmpty" validate:"required"`
	ClientSecret string `env:"CLIENT_SECRET,required,notEmpty" validate:"required"`
	RedirectURI  string `env:"REDIRECT_URI,required,notEmpty" validate:"required,url"`

	AuthorizeURL string `env:"AUTHORIZE_URL" validate:"omitempty,url"`
	TokenURL     string `env:"TOKEN_URL" validate:"omitempty,url"`
	UserInfoURL  string `env:"USERINFO_URL" validate:"omitempty,url"`
}

// Config holds all env configuration vars for the relay.
type Config struct {
	Port     string     `env:"SERVER_PORT" envDefault:"5000"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// UpstreamTimeout bounds each outbound call to a provider.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	// RequestTimeout bounds a whole inbound request. Must exceed two upstream
	// calls so a callback answers before the router gives up on it.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s" validate:"gt=0"`

	Discord ProviderConfig `envPrefix:"DISCORD_"`
	Google  ProviderConfig `envPrefix:"GOOGLE_"`
	Spotify ProviderConfig `envPrefix:"SPOTIFY_"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrTimeoutBudget is returned when two sequential upstream calls can outlast
// the request timeout.
var ErrTimeoutBudget = errors.New("REQUEST_TIMEOUT must exceed twice UPSTREAM_TIMEOUT")

// LoadConfig reads environment variables and returns a validated Config.
// Missing provider credentials are an error: the relay must not start with
// empty client ids or secrets.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints; used by LoadConfig and for configs built in code.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.RequestTimeout <= 2*c.UpstreamTimeout {
		return fmt.Errorf("invalid configuration: %w (request %s, upstream %s)",
			ErrTimeoutBudget, c.RequestTimeout, c.UpstreamTimeout)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment.
// Existing variables win; missing files are skipped. Defaults to ".env".
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Registry builds the provider registry from the loaded credentials,
// in listing order: discord, google, spotify.
func (c *Config) Registry() (*oauth.Registry, error) {
	entries := []struct {
		id  oauth.ID
		cfg ProviderConfig
	}{
		{oauth.Discord, c.Discord},
		{oauth.Google, c.Google},
		{oauth.Spotify, c.Spotify},
	}

	providers := make([]*oauth.Provider, 0, len(entries))
	for _, e := range entries {
		p, err := oauth.NewProvider(e.id,
			oauth.Credentials{
				ClientID:     e.cfg.ClientID,
				ClientSecret: e.cfg.ClientSecret,
				RedirectURI:  e.cfg.RedirectURI,
			},
			oauth.Endpoints{
				AuthorizeURL: e.cfg.AuthorizeURL,
				TokenURL:     e.cfg.TokenURL,
				UserInfoURL:  e.cfg.UserInfoURL,
			},
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return oauth.NewRegistry(providers...), nil
}
