package bugzilla

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func newTestClient(t *testing.T, srv *httptest.Server, maxRetries int) *Client {
	t.Helper()
	c := NewClient(mustParseURL(t, srv.URL), NewAnonymousAuth(), false, 2*time.Second, maxRetries)
	c.Client = srv.Client()
	c.retryWait = time.Millisecond
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("creates a new client with given parameters", func(t *testing.T) {
		t.Parallel()

		base := mustParseURL(t, "https://bugzilla.example.com")
		client := NewClient(base, NewAnonymousAuth(), true, 2*time.Second, 3)

		assert.Equal(t, base, client.BaseURL)
		assert.NotNil(t, client.Client)
		assert.NotNil(t, client.auth)
		assert.Equal(t, 2*time.Second, client.Client.Timeout)
	})

	t.Run("treats negative retries as zero", func(t *testing.T) {
		t.Parallel()

		client := NewClient(mustParseURL(t, "https://bugzilla.example.com"), NewAnonymousAuth(), false, time.Second, -1)
		assert.Zero(t, client.maxRetries)
	})
}

func TestGetBug(t *testing.T) {
	t.Parallel()

	t.Run("fetches and decodes a bug", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/bug/42", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Write([]byte(`{"bugs":[{"id":42,"product":"SUSEConnect","status":"NEW","creator_detail":{"email":"r@suse.com"}}]}`)) // nolint:errcheck
		}))
		defer srv.Close()

		bug, err := newTestClient(t, srv, 0).GetBug(context.Background(), 42)
		require.NoError(t, err)

		assert.Equal(t, 42, bug.ID)
		assert.Equal(t, "SUSEConnect", bug.Product)
		require.NotNil(t, bug.CreatorDetail)
		assert.Equal(t, "r@suse.com", bug.CreatorDetail.Email)
	})

	t.Run("errors on an empty bug list", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"bugs":[]}`)) // nolint:errcheck
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv, 0).GetBug(context.Background(), 42)
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("errors on undecodable payload", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`)) // nolint:errcheck
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv, 0).GetBug(context.Background(), 42)
		assert.ErrorContains(t, err, "decode bug response")
	})
}

func TestSearchBugs(t *testing.T) {
	t.Parallel()

	t.Run("forwards canonical parameters", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/bug", r.URL.Path)
			assert.Equal(t, "NEW", r.URL.Query().Get("status"))
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
			w.Write([]byte(`{"bugs":[{"id":1},{"id":2}]}`)) // nolint:errcheck
		}))
		defer srv.Close()

		params := url.Values{}
		params.Set("status", "NEW")
		params.Set("limit", "20")

		bugs, err := newTestClient(t, srv, 0).SearchBugs(context.Background(), params)
		require.NoError(t, err)
		assert.Len(t, bugs, 2)
	})
}

func TestMetadataCalls(t *testing.T) {
	t.Parallel()

	t.Run("lists accessible product names", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/product", r.URL.Path)
			assert.Equal(t, "accessible", r.URL.Query().Get("type"))
			assert.Equal(t, "name", r.URL.Query().Get("include_fields"))
			w.Write([]byte(`{"products":[{"name":"SUSEConnect"},{"name":"openSUSE"}]}`)) // nolint:errcheck
		}))
		defer srv.Close()

		products, err := newTestClient(t, srv, 0).Products(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []Product{{Name: "SUSEConnect"}, {Name: "openSUSE"}}, products)
	})

	t.Run("lists bug fields with values", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/field/bug", r.URL.Path)
			w.Write([]byte(`{"fields":[{"name":"bug_status","values":[{"name":"NEW"}]}]}`)) // nolint:errcheck
		}))
		defer srv.Close()

		fields, err := newTestClient(t, srv, 0).BugFields(context.Background())
		require.NoError(t, err)
		require.Len(t, fields, 1)
		assert.Equal(t, "bug_status", fields[0].Name)
		assert.Equal(t, []FieldValue{{Name: "NEW"}}, fields[0].Values)
	})

	t.Run("passes the timezone response through unvalidated", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/timezone", r.URL.Path)
			w.Write([]byte(`{"timezone":"UTC","extra":true}`)) // nolint:errcheck
		}))
		defer srv.Close()

		raw, err := newTestClient(t, srv, 0).Timezone(context.Background())
		require.NoError(t, err)
		assert.JSONEq(t, `{"timezone":"UTC","extra":true}`, string(raw))
	})
}

func TestDoRequestRetries(t *testing.T) {
	t.Parallel()

	t.Run("retries 5xx responses within the budget", func(t *testing.T) {
		t.Parallel()

		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{"bugs":[{"id":7}]}`)) // nolint:errcheck
		}))
		defer srv.Close()

		bug, err := newTestClient(t, srv, 3).GetBug(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, 7, bug.ID)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up once the budget is exhausted", func(t *testing.T) {
		t.Parallel()

		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv, 2).GetBug(context.Background(), 7)
		require.Error(t, err)
		assert.Equal(t, 3, calls) // initial attempt plus two retries
	})

	t.Run("never retries 4xx responses", func(t *testing.T) {
		t.Parallel()

		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":true,"message":"Bug #7 does not exist."}`)) // nolint:errcheck
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv, 5).GetBug(context.Background(), 7)
		require.Error(t, err)
		assert.ErrorContains(t, err, "does not exist")
		assert.Equal(t, 1, calls)
	})
}

func TestWebURL(t *testing.T) {
	t.Parallel()

	t.Run("builds the browser link from the base URL", func(t *testing.T) {
		t.Parallel()

		client := NewClient(mustParseURL(t, "https://bugzilla.example.com"), NewAnonymousAuth(), false, time.Second, 0)
		assert.Equal(t, "https://bugzilla.example.com/show_bug.cgi?id=42", client.WebURL(42))
	})
}
