package wildfire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/tphakala/go-panw"
	"github.com/tphakala/go-panw/internal/transport"
)

// Verdict is a WildFire analysis verdict code.
type Verdict int

// Verdict codes as documented for the get/verdict endpoint. Negative codes
// are meta-states, not analysis outcomes.
const (
	VerdictBenign      Verdict = 0
	VerdictMalware     Verdict = 1
	VerdictGrayware    Verdict = 2
	VerdictPhishing    Verdict = 4
	VerdictPending     Verdict = -100
	VerdictError       Verdict = -101
	VerdictNotFound    Verdict = -102
	VerdictInvalidHash Verdict = -103
)

func (v Verdict) String() string {
	switch v {
	case VerdictBenign:
		return "benign"
	case VerdictMalware:
		return "malware"
	case VerdictGrayware:
		return "grayware"
	case VerdictPhishing:
		return "phishing"
	case VerdictPending:
		return "pending"
	case VerdictError:
		return "error"
	case VerdictNotFound:
		return "not found"
	case VerdictInvalidHash:
		return "invalid hash"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// VerdictInfo is the analysis verdict for one sample hash.
type VerdictInfo struct {
	SHA256  string  `xml:"sha256"`
	Verdict Verdict `xml:"verdict"`
	MD5     string  `xml:"md5"`
}

// SubmitResult describes an accepted sample or link submission.
type SubmitResult struct {
	URL      string `xml:"upload-file-info>url"`
	SHA256   string `xml:"upload-file-info>sha256"`
	MD5      string `xml:"upload-file-info>md5"`
	Size     string `xml:"upload-file-info>size"`
	FileType string `xml:"upload-file-info>filetype"`
}

// SubmitFile submits a sample for analysis. filename is advisory and may be
// empty.
func (c *Client) SubmitFile(ctx context.Context, filename string, content io.Reader) (*SubmitResult, error) {
	if content == nil {
		return nil, &panw.ValidationError{Field: "content", Message: "cannot be nil"}
	}
	if filename == "" {
		filename = "sample"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("apikey", c.apiKey); err != nil {
		return nil, fmt.Errorf("wildfire: building submission: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("wildfire: building submission: %w", err)
	}
	if _, err := io.Copy(fw, content); err != nil {
		return nil, fmt.Errorf("wildfire: reading sample: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("wildfire: building submission: %w", err)
	}

	result, err := c.transport.Do(ctx, &transport.Request{
		Method:      http.MethodPost,
		URL:         c.url("/publicapi/submit/file"),
		Body:        &buf,
		ContentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	var parsed struct {
		SubmitResult
	}
	if err := result.XML(&parsed); err != nil {
		return nil, fmt.Errorf("wildfire: parsing submit response: %w", err)
	}
	return &parsed.SubmitResult, nil
}

// SubmitURL submits a web link for analysis.
func (c *Client) SubmitURL(ctx context.Context, link string) (*SubmitResult, error) {
	if link == "" {
		return nil, &panw.ValidationError{Field: "link", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("link", link)

	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.url("/publicapi/submit/link"),
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	var parsed struct {
		URL    string `xml:"submit-link-info>url"`
		SHA256 string `xml:"submit-link-info>sha256"`
		MD5    string `xml:"submit-link-info>md5"`
	}
	if err := result.XML(&parsed); err != nil {
		return nil, fmt.Errorf("wildfire: parsing submit response: %w", err)
	}
	return &SubmitResult{URL: parsed.URL, SHA256: parsed.SHA256, MD5: parsed.MD5}, nil
}

// GetVerdict returns the analysis verdict for a single sample hash (MD5 or
// SHA-256).
func (c *Client) GetVerdict(ctx context.Context, hash string) (*VerdictInfo, error) {
	if hash == "" {
		return nil, &panw.ValidationError{Field: "hash", Message: "cannot be empty"}
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("hash", hash)

	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.url("/publicapi/get/verdict"),
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	var parsed struct {
		Info VerdictInfo `xml:"get-verdict-info"`
	}
	if err := result.XML(&parsed); err != nil {
		return nil, fmt.Errorf("wildfire: parsing verdict response: %w", err)
	}
	return &parsed.Info, nil
}

// GetVerdicts returns verdicts for up to 500 hashes in one call. The hash
// list is uploaded as a newline-separated file, per the API contract.
func (c *Client) GetVerdicts(ctx context.Context, hashes []string) ([]VerdictInfo, error) {
	if len(hashes) == 0 {
		return nil, &panw.ValidationError{Field: "hashes", Message: "cannot be empty"}
	}
	if len(hashes) > 500 {
		return nil, &panw.ValidationError{Field: "hashes", Message: "at most 500 hashes per request"}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("apikey", c.apiKey); err != nil {
		return nil, fmt.Errorf("wildfire: building request: %w", err)
	}
	fw, err := mw.CreateFormFile("file", "hashes")
	if err != nil {
		return nil, fmt.Errorf("wildfire: building request: %w", err)
	}
	if _, err := io.WriteString(fw, strings.Join(hashes, "\n")); err != nil {
		return nil, fmt.Errorf("wildfire: building request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("wildfire: building request: %w", err)
	}

	result, err := c.transport.Do(ctx, &transport.Request{
		Method:      http.MethodPost,
		URL:         c.url("/publicapi/get/verdicts"),
		Body:        &buf,
		ContentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	var parsed struct {
		Infos []VerdictInfo `xml:"get-verdict-info"`
	}
	if err := result.XML(&parsed); err != nil {
		return nil, fmt.Errorf("wildfire: parsing verdicts response: %w", err)
	}
	return parsed.Infos, nil
}

// ReportFormat selects the analysis report encoding.
type ReportFormat string

const (
	ReportXML ReportFormat = "xml"
	ReportPDF ReportFormat = "pdf"
)

// GetReport fetches the analysis report for a sample hash. XML reports are
// returned as raw bytes for the caller to decode; PDF reports are binary.
func (c *Client) GetReport(ctx context.Context, hash string, format ReportFormat) ([]byte, error) {
	if hash == "" {
		return nil, &panw.ValidationError{Field: "hash", Message: "cannot be empty"}
	}
	if format == "" {
		format = ReportXML
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("hash", hash)
	form.Set("format", string(format))

	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.url("/publicapi/get/report"),
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.Body, nil
}

// GetSample downloads the original sample file for a hash.
func (c *Client) GetSample(ctx context.Context, hash string) ([]byte, error) {
	return c.fetchBinary(ctx, "/publicapi/get/sample", url.Values{
		"apikey": {c.apiKey},
		"hash":   {hash},
	}, hash)
}

// GetPCAP downloads the packet capture recorded during analysis on the
// given platform.
func (c *Client) GetPCAP(ctx context.Context, hash, platform string) ([]byte, error) {
	form := url.Values{
		"apikey": {c.apiKey},
		"hash":   {hash},
	}
	if platform != "" {
		form.Set("platform", platform)
	}
	return c.fetchBinary(ctx, "/publicapi/get/pcap", form, hash)
}

// TestFile downloads a harmless sample guaranteed to return a malware
// verdict, for end-to-end pipeline testing.
func (c *Client) TestFile(ctx context.Context) ([]byte, error) {
	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    c.url("/publicapi/test/file"),
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.Body, nil
}

func (c *Client) fetchBinary(ctx context.Context, path string, form url.Values, hash string) ([]byte, error) {
	if hash == "" {
		return nil, &panw.ValidationError{Field: "hash", Message: "cannot be empty"}
	}

	result, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.url(path),
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.Body, nil
}
