package panw

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNoHostname = errors.New("panw: no hostname configured")
	ErrNoAPIKey   = errors.New("panw: no API key configured")
)

// TransportError indicates the underlying HTTP request could not complete:
// connection refused, timeout, or TLS verification failure. The HTTP status
// line was never received; compare with StatusError, which means the server
// answered with a non-2xx status.
type TransportError struct {
	Op  string // operation being performed, e.g. "POST https://..."
	Err error  // underlying cause
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("panw: transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError indicates the server answered with a status outside 200-299,
// or a PAN-OS response envelope with status="error". Message carries the
// vendor-supplied message field when one was present in the payload.
type StatusError struct {
	StatusCode int    // HTTP status code
	Reason     string // HTTP reason phrase
	Message    string // vendor message, if any
	Code       string // vendor error code, e.g. PAN-OS code attribute
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("panw: API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("panw: API error %d: %s", e.StatusCode, e.Reason)
}

// ConfigError indicates a client could not be constructed or an operation
// could not be attempted because required configuration (hostname, API key,
// credentials) could not be resolved.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("panw: configuration error: %s", e.Message)
}

// ValidationError indicates malformed caller-supplied parameters, detected
// before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("panw: validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("panw: validation error: %s", e.Message)
}

// DeviceNotSetError indicates a configuration node was asked to perform a
// device operation while detached from any firewall or Panorama root.
type DeviceNotSetError struct {
	Node string // name or kind of the node that was queried
}

func (e *DeviceNotSetError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("panw: node %q is not attached to a device", e.Node)
	}
	return "panw: node is not attached to a device"
}

// CredentialNotFoundError indicates no credential in the store matched the
// requested realm and username.
type CredentialNotFoundError struct {
	Realm    string
	Username string
}

func (e *CredentialNotFoundError) Error() string {
	if e.Username != "" {
		return fmt.Sprintf("panw: no credential for user %q in realm %q", e.Username, e.Realm)
	}
	return fmt.Sprintf("panw: no credential in realm %q", e.Realm)
}
