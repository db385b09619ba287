package vrchat

import (
	"net/http"
	"net/url"
	"time"
)

// AuthCookieName is the cookie the upstream sets on successful authentication.
// Its value doubles as the authToken query parameter for realtime connections.
const AuthCookieName = "auth"

// Session is an authenticated handle for one account. The transport credential
// lives in the cookie jar shared by every request the session sends.
type Session struct {
	Username        string
	DisplayName     string
	AuthenticatedAt time.Time

	client *http.Client
	apiURL *url.URL
}

// Do sends an upstream request with the session's credentials. The fixed
// identifying User-Agent always wins over whatever the caller set.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)
	return s.client.Do(req)
}

// Jar exposes the session's cookie jar so a WebSocket dialer can present the
// same cookies as HTTP calls.
func (s *Session) Jar() http.CookieJar {
	return s.client.Jar
}

// AuthToken returns the value of the upstream auth cookie, or "" when the
// session never received one.
func (s *Session) AuthToken() string {
	for _, cookie := range s.client.Jar.Cookies(s.apiURL) {
		if cookie.Name == AuthCookieName {
			return cookie.Value
		}
	}
	return ""
}
