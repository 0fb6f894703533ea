package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/internal/transport"
)

func TestDo(t *testing.T) {
	t.Run("form body and query parameters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "1", r.URL.Query().Get("page"))
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "keygen", r.PostForm.Get("type"))

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}))
		t.Cleanup(server.Close)

		client := transport.New(transport.Config{})
		result, err := client.Do(context.Background(), &transport.Request{
			Method: http.MethodPost,
			URL:    server.URL,
			Query:  url.Values{"page": {"1"}},
			Form:   url.Values{"type": {"keygen"}},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, []byte("ok"), result.Body)
		assert.Positive(t, result.Elapsed)
	})

	t.Run("non-2xx does not raise", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "missing", http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		client := transport.New(transport.Config{})
		result, err := client.Do(context.Background(), &transport.Request{
			Method: http.MethodGet,
			URL:    server.URL,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
		assert.Equal(t, "Not Found", result.Reason)
		require.Error(t, result.Err())
	})

	t.Run("connection failure is a TransportError", func(t *testing.T) {
		client := transport.New(transport.Config{Timeout: time.Second})
		_, err := client.Do(context.Background(), &transport.Request{
			Method: http.MethodGet,
			URL:    "http://127.0.0.1:1", // nothing listens here
		})
		require.Error(t, err)

		var terr *panw.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Contains(t, terr.Op, "GET http://127.0.0.1:1")
	})

	t.Run("TLS verification failure is a TransportError", func(t *testing.T) {
		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		t.Cleanup(server.Close)

		client := transport.New(transport.Config{Timeout: time.Second})
		_, err := client.Do(context.Background(), &transport.Request{
			Method: http.MethodGet,
			URL:    server.URL,
		})

		var terr *panw.TransportError
		require.ErrorAs(t, err, &terr)
	})

	t.Run("InsecureSkipVerify tolerates self-signed certificates", func(t *testing.T) {
		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(server.Close)

		client := transport.New(transport.Config{InsecureSkipVerify: true})
		result, err := client.Do(context.Background(), &transport.Request{
			Method: http.MethodGet,
			URL:    server.URL,
		})
		require.NoError(t, err)
		assert.True(t, result.OK())
	})

	t.Run("JSON body and custom headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "Splunk sk-1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusCreated)
		}))
		t.Cleanup(server.Close)

		header := make(http.Header)
		header.Set("Authorization", "Splunk sk-1")

		client := transport.New(transport.Config{})
		result, err := client.Do(context.Background(), &transport.Request{
			Method:   http.MethodPost,
			URL:      server.URL,
			Header:   header,
			JSONBody: map[string]any{"query": "test"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.StatusCode)
	})
}
