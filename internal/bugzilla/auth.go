package bugzilla

import "net/http"

// AuthFunc mutates an outgoing request to carry credentials.
type AuthFunc func(*http.Request)

// NewAPIKeyAuth returns an AuthFunc that sets the X-BUGZILLA-API-KEY header.
func NewAPIKeyAuth(key string) AuthFunc {
	return func(r *http.Request) {
		r.Header.Set("X-BUGZILLA-API-KEY", key)
	}
}

// NewLoginAuth returns an AuthFunc that adds login and password query
// parameters, the Bugzilla REST equivalent of username/password auth.
func NewLoginAuth(login, password string) AuthFunc {
	return func(r *http.Request) {
		q := r.URL.Query()
		q.Set("login", login)
		q.Set("password", password)
		r.URL.RawQuery = q.Encode()
	}
}

// NewAnonymousAuth returns an AuthFunc that leaves the request untouched.
func NewAnonymousAuth() AuthFunc {
	return func(*http.Request) {}
}

// ResolveAuth returns the appropriate AuthFunc based on provided
// credentials. API key wins over username/password; with neither set the
// client operates anonymously, which public Bugzilla instances allow for
// read access.
func ResolveAuth(apiKey, username, password string) (auth AuthFunc, method string) {
	switch {
	case apiKey != "":
		return NewAPIKeyAuth(apiKey), "api-key"
	case username != "" && password != "":
		return NewLoginAuth(username, password), "login"
	default:
		return NewAnonymousAuth(), "anonymous"
	}
}
