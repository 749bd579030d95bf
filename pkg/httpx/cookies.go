package httpx

import (
	"net/http"
	"time"
)

// Cookie names for the token pair set on login and refresh.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAuthCookies installs both token cookies. All auth cookies are HttpOnly,
// Secure, and SameSite=Strict.
func SetAuthCookies(w http.ResponseWriter, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, authCookie(AccessTokenCookie, accessToken, accessTTL))
	http.SetCookie(w, authCookie(RefreshTokenCookie, refreshToken, refreshTTL))
}

// ClearAuthCookies expires both token cookies.
func ClearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, authCookie(AccessTokenCookie, "", -time.Second))
	http.SetCookie(w, authCookie(RefreshTokenCookie, "", -time.Second))
}

func authCookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}
