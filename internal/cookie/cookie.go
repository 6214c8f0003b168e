package cookie

import (
	"net/http"
	"time"

	"github.com/panelkit/authfront/internal/envutil"
	"github.com/panelkit/authfront/internal/log"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "authfront_session"

// SetSession sets the session cookie with appropriate security settings.
// SameSite must stay at Lax so the cookie survives the provider redirect.
func SetSession(w http.ResponseWriter, value string, maxAge time.Duration) {
	secure := !envutil.IsDev()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})

	log.LogDebugWithFields("cookie", "Session cookie set", map[string]any{
		"maxAge":   maxAge.String(),
		"secure":   secure,
		"sameSite": "Lax",
	})
}

// ClearSession removes the session cookie by setting MaxAge to -1
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// GetSession retrieves the session cookie value
func GetSession(r *http.Request) (string, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}
