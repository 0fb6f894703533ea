package panw

import (
	"encoding/json"
	"encoding/xml"
	"mime"
	"net/http"
	"strings"
	"time"
)

// APIResult captures the outcome of a single vendor API call. It is
// populated once by the transport and never mutated afterwards.
//
// A non-2xx status does not make the call an error by itself: the result is
// returned as-is and only an explicit Err call turns the status into a
// StatusError. This lets callers inspect vendor error payloads before
// deciding how to fail.
type APIResult struct {
	StatusCode int
	Reason     string      // HTTP reason phrase, e.g. "Not Found"
	Header     http.Header // response headers, case-insensitive keys
	Body       []byte      // raw response body
	Elapsed    time.Duration
}

// OK reports whether the status code is in the 200-299 range.
func (r *APIResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Err returns a StatusError when the status code is outside 200-299, nil
// otherwise. The vendor message is extracted from the body on a best-effort
// basis (JSON "message"/"msg" field or PAN-OS <msg> element).
func (r *APIResult) Err() error {
	if r.OK() {
		return nil
	}
	return &StatusError{
		StatusCode: r.StatusCode,
		Reason:     r.Reason,
		Message:    r.vendorMessage(),
	}
}

// ContentType returns the media type of the response body, without
// parameters, e.g. "application/json".
func (r *APIResult) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}

// JSON unmarshals the body as JSON into v.
func (r *APIResult) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// XML unmarshals the body as XML into v.
func (r *APIResult) XML(v any) error {
	return xml.Unmarshal(r.Body, v)
}

// Map decodes a JSON object body into a generic map.
func (r *APIResult) Map() (map[string]any, error) {
	m := make(map[string]any)
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode unmarshals the body into v, choosing JSON or XML by the response
// Content-Type. Bodies with an unrecognized content type are tried as JSON.
func (r *APIResult) Decode(v any) error {
	ct := r.ContentType()
	if strings.Contains(ct, "xml") {
		return r.XML(v)
	}
	return r.JSON(v)
}

// vendorMessage extracts a human-readable error message from the body.
func (r *APIResult) vendorMessage() string {
	if len(r.Body) == 0 {
		return ""
	}
	ct := r.ContentType()
	if strings.Contains(ct, "xml") {
		var env struct {
			Msg struct {
				Line []string `xml:"line"`
				Text string   `xml:",chardata"`
			} `xml:"msg"`
		}
		if xml.Unmarshal(r.Body, &env) == nil {
			if len(env.Msg.Line) > 0 {
				return strings.Join(env.Msg.Line, "; ")
			}
			return strings.TrimSpace(env.Msg.Text)
		}
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if json.Unmarshal(r.Body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Msg
	}
	return ""
}
