package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/panelkit/authfront/internal/config"
)

// fakeIdentityProvider plays the provider side of the authorization code
// flow: /authorize redirects straight back with a code, /token accepts the
// code once, /user serves the profile for the issued access token.
type fakeIdentityProvider struct {
	server *httptest.Server

	mu       sync.Mutex
	codes    map[string]bool
	userInfo map[string]any
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	fp := &fakeIdentityProvider{
		codes: make(map[string]bool),
		userInfo: map[string]any{
			"login": "octocat",
			"name":  "The Octocat",
			"email": "octocat@github.com",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/authorize", fp.handleAuthorize)
	mux.HandleFunc("/token", fp.handleToken)
	mux.HandleFunc("/user", fp.handleUser)
	fp.server = httptest.NewServer(mux)
	return fp
}

func (fp *fakeIdentityProvider) Close() {
	fp.server.Close()
}

func (fp *fakeIdentityProvider) providerConfig(name string) config.ProviderConfig {
	return config.ProviderConfig{
		Name:         name,
		ClientID:     "integration-client-id",
		ClientSecret: "integration-client-secret",
		AuthURL:      fp.server.URL + "/authorize",
		TokenURL:     fp.server.URL + "/token",
		UserInfoURL:  fp.server.URL + "/user",
		Scopes:       []string{"read:user", "user:email"},
	}
}

// handleAuthorize skips the login screen a real provider would show and
// immediately redirects back with a fresh single-use code.
func (fp *fakeIdentityProvider) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirectURI := q.Get("redirect_uri")
	state := q.Get("state")
	if redirectURI == "" || state == "" || q.Get("client_id") != "integration-client-id" {
		http.Error(w, "invalid authorize request", http.StatusBadRequest)
		return
	}

	code := "code-" + state[:8]
	fp.mu.Lock()
	fp.codes[code] = true
	fp.mu.Unlock()

	callback, err := url.Parse(redirectURI)
	if err != nil {
		http.Error(w, "bad redirect_uri", http.StatusBadRequest)
		return
	}
	cq := callback.Query()
	cq.Set("code", code)
	cq.Set("state", state)
	callback.RawQuery = cq.Encode()

	http.Redirect(w, r, callback.String(), http.StatusFound)
}

func (fp *fakeIdentityProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	code := r.Form.Get("code")
	fp.mu.Lock()
	valid := fp.codes[code]
	delete(fp.codes, code)
	fp.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !valid {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}

	_, _ = w.Write([]byte(`{"access_token":"integration-access-token","token_type":"bearer"}`))
}

func (fp *fakeIdentityProvider) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer integration-access-token" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
		return
	}

	fp.mu.Lock()
	info := fp.userInfo
	fp.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}
