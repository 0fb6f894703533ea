package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-panw/ingest"
)

func TestInsideSplunk(t *testing.T) {
	t.Setenv(ingest.EnvSplunkHome, "")
	t.Setenv(ingest.EnvSplunkServerName, "")
	assert.False(t, ingest.InsideSplunk())

	t.Setenv(ingest.EnvSplunkHome, "/opt/splunk")
	assert.False(t, ingest.InsideSplunk(), "both variables are required")

	t.Setenv(ingest.EnvSplunkServerName, "idx-1")
	assert.True(t, ingest.InsideSplunk())
}

func TestReadSessionKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare key", "abc123\n", "abc123"},
		{"prefixed", "sessionKey=abc123\n", "abc123"},
		{"no trailing newline", "abc123", "abc123"},
		{"surrounding whitespace", "  abc123  \n", "abc123"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ingest.ReadSessionKey(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}
