package license_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/license"
)

func setupTestServer(t *testing.T, handler http.HandlerFunc) *license.Client {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	client, err := license.NewClient(
		license.WithHostname(strings.TrimPrefix(server.URL, "https://")),
		license.WithAPIKey("lic-key"),
		license.WithHTTPClient(server.Client()),
		license.WithPanrcPaths(filepath.Join(t.TempDir(), "absent")),
	)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("error without key", func(t *testing.T) {
		t.Setenv(license.EnvAPIKey, "")
		_, err := license.NewClient(license.WithPanrcPaths(filepath.Join(t.TempDir(), "absent")))
		require.ErrorIs(t, err, panw.ErrNoAPIKey)
	})
}

func TestActivate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/license/activate", r.URL.Path)
			assert.Equal(t, "lic-key", r.Header.Get("apikey"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "I7115398", r.PostForm.Get("authcode"))
			assert.Equal(t, "420039f0-3b38-4fbd-a95e-e1abf4d3a912", r.PostForm.Get("uuid"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"lictype": "SUB", "serialnum": "007200006142", "feature": "Threat Prevention", "expiration": "2027-08-28", "key": "lookup-key-contents"},
				{"lictype": "SUB", "serialnum": "007200006142", "feature": "WildFire", "expiration": "2027-08-28", "key": "wf-key-contents"}
			]`))
		})

		licenses, err := client.Activate(context.Background(), &license.ActivateRequest{
			AuthCode: "I7115398",
			UUID:     "420039f0-3b38-4fbd-a95e-e1abf4d3a912",
			CPUID:    "ESX:57060500FFFB8B1F",
		})
		require.NoError(t, err)
		require.Len(t, licenses, 2)
		assert.Equal(t, "007200006142", licenses[0].Serial)
		assert.Equal(t, "WildFire", licenses[1].Feature)
	})

	t.Run("serial number alone retrieves keys", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "007200006142", r.PostForm.Get("serialnumber"))
			assert.Empty(t, r.PostForm.Get("authcode"))
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := client.Activate(context.Background(), &license.ActivateRequest{
			SerialNumber: "007200006142",
		})
		require.NoError(t, err)
	})

	t.Run("no authcode or serial rejected", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := client.Activate(context.Background(), &license.ActivateRequest{})

		var verr *panw.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("API error message surfaces", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message": "Invalid Auth Code"}`))
		})

		_, err := client.Activate(context.Background(), &license.ActivateRequest{AuthCode: "bogus"})
		var status *panw.StatusError
		require.ErrorAs(t, err, &status)
		assert.Equal(t, "Invalid Auth Code", status.Message)
	})
}

func TestDeactivate(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/license/deactivate", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "opaque-device-token", r.PostForm.Get("encryptedtoken"))
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	result, err := client.Deactivate(context.Background(), "opaque-device-token")
	require.NoError(t, err)
	assert.True(t, result.OK())
}

func TestGet(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/license/get", r.URL.Path)
		_, _ = w.Write([]byte(`[{"lictype": "SUB", "partid": "PAN-VM-50-TP", "authcode": "I7115398"}]`))
	})

	licenses, err := client.Get(context.Background(), "I7115398")
	require.NoError(t, err)
	require.Len(t, licenses, 1)
	assert.Equal(t, "PAN-VM-50-TP", licenses[0].PartID)
}
