package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/panelkit/authfront/internal/crypto"
	"github.com/panelkit/authfront/internal/log"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// ProviderConfig describes one identity provider: endpoints, credentials,
// scopes and any provider-specific authorize-request parameters. Pure data,
// read-only after Load. EmailListURL is optional; when set, it names an
// endpoint listing the user's addresses for providers whose userinfo payload
// may omit the email (GitHub with a private email).
type ProviderConfig struct {
	Name         string
	ClientID     string
	ClientSecret Secret
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	EmailListURL string
	Scopes       []string
	ExtraParams  map[string]string
}

// Config is the process configuration, loaded once at startup.
type Config struct {
	Addr        string
	PanelAppURL string
	SigningKey  Secret
	SessionTTL  time.Duration
	StateTTL    time.Duration
	Providers   map[string]ProviderConfig
}

// authfrontEnv holds raw env values before provider assembly.
type authfrontEnv struct {
	Addr        string        `env:"AUTHFRONT_ADDR"        envDefault:":8000"`
	PanelAppURL string        `env:"PANEL_APP_URL"         envDefault:"http://localhost:5006"`
	SigningKey  string        `env:"AUTHFRONT_SIGNING_KEY"`
	SessionTTL  time.Duration `env:"AUTHFRONT_SESSION_TTL" envDefault:"24h"`
	StateTTL    time.Duration `env:"AUTHFRONT_STATE_TTL"   envDefault:"10m"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	AzureClientID      string `env:"AZURE_CLIENT_ID"`
	AzureClientSecret  string `env:"AZURE_CLIENT_SECRET"`
	AzureTenantID      string `env:"AZURE_TENANT_ID"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
}

// Load reads configuration from the environment. Providers missing credentials
// are excluded rather than failing startup, so a partially configured
// deployment still serves the providers it has credentials for.
func Load() (Config, error) {
	var raw authfrontEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	signingKey := raw.SigningKey
	if signingKey == "" {
		// No key configured: sessions don't outlive the process anyway, so a
		// per-boot random key is acceptable.
		key, err := crypto.GenerateSecureToken()
		if err != nil {
			return Config{}, fmt.Errorf("failed to generate signing key: %w", err)
		}
		signingKey = key
		log.LogWarnWithFields("config", "AUTHFRONT_SIGNING_KEY not set, generated per-boot key", nil)
	}

	return Config{
		Addr:        raw.Addr,
		PanelAppURL: raw.PanelAppURL,
		SigningKey:  Secret(signingKey),
		SessionTTL:  raw.SessionTTL,
		StateTTL:    raw.StateTTL,
		Providers:   buildProviders(raw),
	}, nil
}

func buildProviders(raw authfrontEnv) map[string]ProviderConfig {
	providers := make(map[string]ProviderConfig)

	if raw.GitHubClientID != "" && raw.GitHubClientSecret != "" {
		providers["github"] = ProviderConfig{
			Name:         "github",
			ClientID:     raw.GitHubClientID,
			ClientSecret: Secret(raw.GitHubClientSecret),
			AuthURL:      "https://github.com/login/oauth/authorize",
			TokenURL:     "https://github.com/login/oauth/access_token",
			UserInfoURL:  "https://api.github.com/user",
			EmailListURL: "https://api.github.com/user/emails",
			Scopes:       []string{"read:user", "user:email"},
		}
	}

	if raw.AzureClientID != "" && raw.AzureClientSecret != "" && raw.AzureTenantID != "" {
		providers["azure"] = ProviderConfig{
			Name:         "azure",
			ClientID:     raw.AzureClientID,
			ClientSecret: Secret(raw.AzureClientSecret),
			AuthURL:      fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/authorize", raw.AzureTenantID),
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", raw.AzureTenantID),
			UserInfoURL:  "https://graph.microsoft.com/v1.0/me?$select=displayName,mail,userPrincipalName,otherMails",
			Scopes:       []string{"openid", "profile", "email", "User.Read"},
		}
	}

	if raw.GoogleClientID != "" && raw.GoogleClientSecret != "" {
		providers["google"] = ProviderConfig{
			Name:         "google",
			ClientID:     raw.GoogleClientID,
			ClientSecret: Secret(raw.GoogleClientSecret),
			AuthURL:      "https://accounts.google.com/o/oauth2/auth",
			TokenURL:     "https://oauth2.googleapis.com/token",
			UserInfoURL:  "https://www.googleapis.com/oauth2/v1/userinfo",
			Scopes:       []string{"openid", "email", "profile"},
			ExtraParams:  map[string]string{"prompt": "select_account"},
		}
	}

	return providers
}
