package xmlapi

import (
	"encoding/xml"
	"strings"

	"github.com/tphakala/go-panw"
)

// Response is the parsed PAN-OS XML API response envelope,
// <response status="..." code="...">.
type Response struct {
	Status string
	Code   string
	Msg    string

	// Result holds the inner XML of the <result> element.
	Result Result

	// Raw is the underlying HTTP result.
	Raw *panw.APIResult
}

// Result wraps the raw inner XML of a <result> element.
type Result struct {
	Inner []byte
}

// Unmarshal decodes the result into v. The target's root element is
// <result>, so v should either be tagged accordingly or select nested
// elements with path tags like `xml:"system>hostname"`.
func (r Result) Unmarshal(v any) error {
	wrapped := make([]byte, 0, len(r.Inner)+len("<result></result>"))
	wrapped = append(wrapped, "<result>"...)
	wrapped = append(wrapped, r.Inner...)
	wrapped = append(wrapped, "</result>"...)
	return xml.Unmarshal(wrapped, v)
}

// envelope mirrors the wire form of the response.
type envelope struct {
	XMLName xml.Name `xml:"response"`
	Status  string   `xml:"status,attr"`
	Code    string   `xml:"code,attr"`
	Msg     struct {
		Lines []string `xml:"line"`
		Text  string   `xml:",chardata"`
	} `xml:"msg"`
	Result struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"result"`
}

// parseResponse maps an HTTP result onto the XML envelope. Both a non-2xx
// HTTP status and a status="error" envelope on HTTP 200 become a
// StatusError; PAN-OS reports most API failures the latter way.
func parseResponse(result *panw.APIResult) (*Response, error) {
	if !result.OK() {
		return nil, result.Err()
	}

	var env envelope
	if err := xml.Unmarshal(result.Body, &env); err != nil {
		return nil, &panw.StatusError{
			StatusCode: result.StatusCode,
			Reason:     result.Reason,
			Message:    "malformed XML API response: " + err.Error(),
		}
	}

	msg := strings.Join(env.Msg.Lines, "; ")
	if msg == "" {
		msg = strings.TrimSpace(env.Msg.Text)
	}

	resp := &Response{
		Status: env.Status,
		Code:   env.Code,
		Msg:    msg,
		Result: Result{Inner: env.Result.Inner},
		Raw:    result,
	}

	if env.Status != "success" {
		return nil, &panw.StatusError{
			StatusCode: result.StatusCode,
			Reason:     result.Reason,
			Message:    msg,
			Code:       env.Code,
		}
	}

	return resp, nil
}
