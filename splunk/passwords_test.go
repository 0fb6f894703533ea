package splunk_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/splunk"
)

const passwordsBody = `{
	"entry": [
		{"content": {"username": "admin", "clear_password": "fw-secret", "realm": "firewall"}},
		{"content": {"username": "wildfire_api_key", "clear_password": "wf-key", "realm": "wildfire"}},
		{"content": {"username": "ops", "clear_password": "fw-secret-2", "realm": "firewall"}}
	]
}`

func TestCredentials(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/servicesNS/nobody/panw/storage/passwords", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("output_mode"))
		assert.Equal(t, "0", r.URL.Query().Get("count"))
		assert.Equal(t, "Splunk session-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(passwordsBody))
	})

	creds, err := client.Credentials(context.Background())
	require.NoError(t, err)
	require.Len(t, creds, 3)
	assert.Equal(t, splunk.Credential{Username: "admin", Password: "fw-secret", Realm: "firewall"}, creds[0])
}

func TestCredential(t *testing.T) {
	serve := func(t *testing.T) *splunk.Client {
		return setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(passwordsBody))
		})
	}

	t.Run("by realm and username", func(t *testing.T) {
		cred, err := serve(t).Credential(context.Background(), "firewall", "ops")
		require.NoError(t, err)
		assert.Equal(t, "fw-secret-2", cred.Password)
	})

	t.Run("empty username matches first in realm", func(t *testing.T) {
		cred, err := serve(t).Credential(context.Background(), "firewall", "")
		require.NoError(t, err)
		assert.Equal(t, "admin", cred.Username)
	})

	t.Run("miss yields CredentialNotFoundError", func(t *testing.T) {
		_, err := serve(t).Credential(context.Background(), "autofocus", "")

		var nferr *panw.CredentialNotFoundError
		require.ErrorAs(t, err, &nferr)
		assert.Equal(t, "autofocus", nferr.Realm)
	})

	t.Run("empty realm rejected", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := client.Credential(context.Background(), "", "admin")

		var verr *panw.ValidationError
		require.ErrorAs(t, err, &verr)
	})
}
