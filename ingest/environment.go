package ingest

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Environment variables set by splunkd for its child processes.
const (
	EnvSplunkHome       = "SPLUNK_HOME"
	EnvSplunkServerName = "SPLUNK_SERVER_NAME"
)

// InsideSplunk reports whether the process was launched by splunkd, as
// opposed to being run from a shell. Scripted inputs receive their session
// key on stdin only in the former case.
func InsideSplunk() bool {
	return os.Getenv(EnvSplunkHome) != "" && os.Getenv(EnvSplunkServerName) != ""
}

// ReadSessionKey reads the session key splunkd writes to a scripted
// input's stdin (a single line, optionally prefixed "sessionKey=").
func ReadSessionKey(r io.Reader) (string, error) {
	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "sessionKey=")
	return line, nil
}
