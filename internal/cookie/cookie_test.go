package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSetSession(t *testing.T) {
	w := httptest.NewRecorder()
	SetSession(w, "signed-token", time.Hour)

	c := setCookie(t, w)
	assert.Equal(t, SessionCookie, c.Name)
	assert.Equal(t, "signed-token", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestSetSessionDevModeDisablesSecure(t *testing.T) {
	t.Setenv("AUTHFRONT_ENV", "development")

	w := httptest.NewRecorder()
	SetSession(w, "signed-token", time.Hour)

	assert.False(t, setCookie(t, w).Secure)
}

func TestSetSessionSecureByDefault(t *testing.T) {
	t.Setenv("AUTHFRONT_ENV", "")

	w := httptest.NewRecorder()
	SetSession(w, "signed-token", time.Hour)

	assert.True(t, setCookie(t, w).Secure)
}

func TestClearSession(t *testing.T) {
	w := httptest.NewRecorder()
	ClearSession(w)

	c := setCookie(t, w)
	assert.Equal(t, SessionCookie, c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}

func TestGetSession(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/user", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "signed-token"})

	value, err := GetSession(r)
	require.NoError(t, err)
	assert.Equal(t, "signed-token", value)
}

func TestGetSessionMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/user", nil)

	_, err := GetSession(r)
	assert.ErrorIs(t, err, http.ErrNoCookie)
}
