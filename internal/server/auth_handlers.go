package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/panelkit/authfront/internal/cookie"
	"github.com/panelkit/authfront/internal/crypto"
	"github.com/panelkit/authfront/internal/idp"
	jsonwriter "github.com/panelkit/authfront/internal/json"
	"github.com/panelkit/authfront/internal/log"
	"github.com/panelkit/authfront/internal/profile"
	"github.com/panelkit/authfront/internal/session"
	"github.com/panelkit/authfront/internal/state"
)

// exchangeTimeout bounds the two outbound provider calls so a hung
// provider cannot hold a handler indefinitely.
const exchangeTimeout = 30 * time.Second

// sessionCookiePayload is what the HMAC-signed session cookie wraps: only
// the opaque token. Profile data never travels in the cookie.
type sessionCookiePayload struct {
	Token string `json:"token"`
}

// AuthHandlers provides the login-flow HTTP handlers with dependency injection.
type AuthHandlers struct {
	registry    *idp.Registry
	states      *state.Store
	sessions    *session.Store
	cookieToken crypto.TokenSigner
	panelAppURL string
	sessionTTL  time.Duration
}

// NewAuthHandlers creates the handlers. panelAppURL is where successful
// logins and logouts redirect the browser.
func NewAuthHandlers(
	registry *idp.Registry,
	states *state.Store,
	sessions *session.Store,
	signingKey []byte,
	panelAppURL string,
	sessionTTL time.Duration,
) *AuthHandlers {
	return &AuthHandlers{
		registry:    registry,
		states:      states,
		sessions:    sessions,
		cookieToken: crypto.NewTokenSigner(signingKey, sessionTTL),
		panelAppURL: panelAppURL,
		sessionTTL:  sessionTTL,
	}
}

// callbackURL derives the redirect URI from the live request so the same
// deployment works behind any hostname. TLS terminates at the reverse
// proxy, so the forwarded proto wins over the local connection state.
func callbackURL(r *http.Request, provider string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s/auth/callback/%s", scheme, r.Host, provider)
}

// LoginHandler handles GET /login/{provider}: issues anti-forgery state and
// redirects to the provider's authorize URL. No token exchange happens here.
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")

	provider, ok := h.registry.Get(name)
	if !ok {
		log.LogWarnWithFields("auth", "Login requested for unknown provider", map[string]any{
			"provider": name,
			"error":    ErrUnknownProvider.Error(),
		})
		countLogin(providerUnknown, loginResultUnknownProvider)
		jsonwriter.WriteBadRequest(w, "Invalid provider")
		return
	}

	stateValue, err := h.states.Issue(name)
	if err != nil {
		log.LogError("Failed to issue login state: %v", err)
		jsonwriter.WriteInternalServerError(w, "Failed to start login")
		return
	}

	authURL := provider.AuthCodeURL(stateValue, callbackURL(r, name))

	log.LogDebugWithFields("auth", "Redirecting to provider", map[string]any{
		"provider": name,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// CallbackHandler handles GET /auth/callback/{provider}: validates state,
// exchanges the code, fetches and normalizes the profile, creates the
// session and redirects to the panel app. Any step failure aborts the flow
// without creating a partial session; nothing is retried because
// authorization codes are single-use.
func (h *AuthHandlers) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")

	provider, ok := h.registry.Get(name)
	if !ok {
		countLogin(providerUnknown, loginResultUnknownProvider)
		jsonwriter.WriteBadRequest(w, "Invalid provider")
		return
	}

	query := r.URL.Query()

	if errMsg := query.Get("error"); errMsg != "" {
		log.LogErrorWithFields("auth", "Provider returned OAuth error", map[string]any{
			"provider":          name,
			"error":             errMsg,
			"error_description": query.Get("error_description"),
		})
		countLogin(name, loginResultError)
		jsonwriter.WriteBadRequest(w, fmt.Sprintf("Authentication failed: %s", errMsg))
		return
	}

	stateValue := query.Get("state")
	code := query.Get("code")
	if stateValue == "" || code == "" {
		countLogin(name, loginResultError)
		jsonwriter.WriteBadRequest(w, "Invalid callback parameters")
		return
	}

	// State is consumed on first sight regardless of what happens next, so
	// a replayed callback can never reach the exchange.
	record, ok := h.states.Consume(stateValue)
	if !ok || record.Provider != name {
		log.LogWarnWithFields("auth", "State validation failed", map[string]any{
			"provider": name,
			"error":    ErrInvalidState.Error(),
		})
		countLogin(name, loginResultInvalidState)
		jsonwriter.WriteBadRequest(w, "Invalid state parameter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()

	token, err := provider.Exchange(ctx, code, callbackURL(r, name))
	if err != nil {
		// The wrapped error may carry the provider's response body; it never
		// contains our client secret.
		log.LogErrorWithFields("auth", "Code exchange failed", map[string]any{
			"provider": name,
			"error":    fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err).Error(),
		})
		countLogin(name, loginResultExchangeFailed)
		jsonwriter.WriteBadGateway(w, "Token exchange failed")
		return
	}

	raw, err := provider.FetchProfile(ctx, token)
	if err != nil {
		log.LogErrorWithFields("auth", "Profile fetch failed", map[string]any{
			"provider": name,
			"error":    fmt.Errorf("%w: %v", ErrProfileFetchFailed, err).Error(),
		})
		countLogin(name, loginResultProfileFailed)
		jsonwriter.WriteBadGateway(w, "Profile fetch failed")
		return
	}

	userProfile := profile.Normalize(name, raw)

	sessionToken, err := h.sessions.Create(userProfile)
	if err != nil {
		log.LogError("Failed to create session: %v", err)
		countLogin(name, loginResultError)
		jsonwriter.WriteInternalServerError(w, "Failed to create session")
		return
	}

	signed, err := h.cookieToken.Sign(sessionCookiePayload{Token: sessionToken})
	if err != nil {
		h.sessions.Invalidate(sessionToken)
		log.LogError("Failed to sign session cookie: %v", err)
		countLogin(name, loginResultError)
		jsonwriter.WriteInternalServerError(w, "Failed to create session")
		return
	}

	cookie.SetSession(w, signed, h.sessionTTL)
	countLogin(name, loginResultSuccess)

	log.LogInfoWithFields("auth", "User authenticated", map[string]any{
		"provider": name,
		"email":    userProfile.Email,
	})

	http.Redirect(w, r, h.panelAppURL, http.StatusFound)
}

// readSession resolves the current request's session, if any.
func (h *AuthHandlers) readSession(r *http.Request) (profile.UserProfile, string, bool) {
	value, err := cookie.GetSession(r)
	if err != nil {
		return profile.UserProfile{}, "", false
	}

	var payload sessionCookiePayload
	if err := h.cookieToken.Verify(value, &payload); err != nil {
		log.LogDebug("Invalid session cookie: %v", err)
		return profile.UserProfile{}, "", false
	}

	userProfile, ok := h.sessions.Read(payload.Token)
	return userProfile, payload.Token, ok
}

// UserHandler handles GET /user: returns the canonical profile for the
// current session, or 401 when there is none. "No session" is an expected
// state, not a fault.
func (h *AuthHandlers) UserHandler(w http.ResponseWriter, r *http.Request) {
	userProfile, _, ok := h.readSession(r)
	if !ok {
		jsonwriter.WriteUnauthorized(w, "Not authenticated")
		return
	}

	_ = jsonwriter.Write(w, userProfile)
}

// LogoutHandler handles GET /logout: invalidates the session server-side,
// clears the cookie and redirects to the panel app. Idempotent.
func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if _, token, ok := h.readSession(r); ok {
		h.sessions.Invalidate(token)
	}

	cookie.ClearSession(w)
	http.Redirect(w, r, h.panelAppURL, http.StatusFound)
}
