package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/panelkit/authfront/internal/config"
	"github.com/panelkit/authfront/internal/ioutil"
	"github.com/panelkit/authfront/internal/log"
)

// Provider drives the OAuth2 authorization code flow for one identity
// provider. Providers differ only in configuration (endpoints, scopes,
// extra authorize parameters), never in code paths: adding a provider
// means adding a registry entry and a normalizer rule set.
type Provider struct {
	name         string
	config       oauth2.Config
	userInfoURL  string
	emailListURL string
	extraParams  []oauth2.AuthCodeOption
}

// NewProvider builds a provider from its static configuration.
func NewProvider(cfg config.ProviderConfig) *Provider {
	extra := make([]oauth2.AuthCodeOption, 0, len(cfg.ExtraParams))
	for k, v := range cfg.ExtraParams {
		extra = append(extra, oauth2.SetAuthURLParam(k, v))
	}

	return &Provider{
		name: cfg.Name,
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: string(cfg.ClientSecret),
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL:  cfg.UserInfoURL,
		emailListURL: cfg.EmailListURL,
		extraParams:  extra,
	}
}

// Name returns the provider key (e.g. "github").
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL generates the authorization URL. The redirect URI is derived
// from the incoming request host, so it is passed per call rather than fixed
// at construction.
func (p *Provider) AuthCodeURL(state, redirectURI string) string {
	opts := append([]oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("redirect_uri", redirectURI),
	}, p.extraParams...)
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange swaps an authorization code for tokens. The redirect URI must
// match the one sent in the authorize request.
func (p *Provider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
}

// FetchProfile retrieves the raw userinfo payload using the access token.
// The payload is kept as-is for traceability; field mapping happens in the
// profile normalizer.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (map[string]any, error) {
	client := p.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	// GitHub's API serves JSON only with an explicit Accept; harmless elsewhere.
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := ioutil.ReadLimited(resp.Body, 1024)
		return nil, fmt.Errorf("failed to get user info: status %d: %s", resp.StatusCode, body)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	if p.emailListURL != "" {
		if s, _ := raw["email"].(string); s == "" {
			if email := p.fetchListedEmail(ctx, client); email != "" {
				raw["email"] = email
			}
		}
	}

	return raw, nil
}

// fetchListedEmail asks the provider's address-listing endpoint for the
// primary verified email. Best-effort: any failure leaves the profile to the
// normalizer's sentinel handling.
func (p *Provider) fetchListedEmail(ctx context.Context, client *http.Client) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.emailListURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		log.LogDebug("Email listing fetch failed for %s: %v", p.name, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.LogDebug("Email listing fetch for %s returned status %d", p.name, resp.StatusCode)
		return ""
	}

	var entries []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return ""
	}

	for _, e := range entries {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range entries {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}
