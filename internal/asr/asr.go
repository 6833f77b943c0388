// Package asr uploads audio to a remote speech-to-text HTTP endpoint, as an
// alternative engine to the local whisper subprocess.
package asr

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/jsonpath"
)

// Options configures the remote engine client.
type Options struct {
	Endpoint string
	Token    string
	Model    string
	Language string
	Prompt   string

	// TextPath selects the transcription text inside the JSON response
	// ("result.segments[0].text"). Empty falls back to a top-level "text".
	TextPath string

	// ExtraJSON is an optional JSON object of additional form fields.
	ExtraJSON string

	MaxRetry       int
	RetryBaseDelay float64 // seconds, doubled per attempt
	RequestTimeout int     // seconds
	VerifySSL      bool
	EnableHTTP2    bool
}

// RetryExhaustedError means every upload attempt failed.
type RetryExhaustedError struct {
	Attempts int
	MaxRetry int
	LastBody []byte
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("upload failed after %d of %d attempts", e.Attempts, e.MaxRetry)
}

// Client performs transcription uploads.
type Client struct {
	opts       Options
	httpClient *http.Client
	extra      map[string]any
	log        *zap.SugaredLogger
}

// New builds a client. A nil httpClient gets a transport honoring the
// SSL-verification and HTTP/2 options.
func New(opts Options, httpClient *http.Client, log *zap.SugaredLogger) (*Client, error) {
	c := &Client{opts: opts, httpClient: httpClient, log: log}
	if opts.ExtraJSON != "" {
		c.extra = make(map[string]any)
		if err := json.Unmarshal([]byte(opts.ExtraJSON), &c.extra); err != nil {
			return nil, fmt.Errorf("invalid extra-config JSON: %w", err)
		}
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(opts)
	}
	return c, nil
}

func newHTTPClient(opts Options) *http.Client {
	tr := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !opts.VerifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if opts.EnableHTTP2 {
		_ = http2.ConfigureTransport(tr)
	}
	return &http.Client{
		Transport: tr,
		Timeout:   time.Duration(opts.RequestTimeout) * time.Second,
	}
}

// Transcribe uploads the audio file and returns the extracted text plus the
// raw response body. Failed attempts back off exponentially from the base
// delay until MaxRetry is reached.
func (c *Client) Transcribe(ctx context.Context, filePath string) (string, []byte, error) {
	if c.opts.Endpoint == "" {
		return "", nil, fmt.Errorf("remote endpoint is empty")
	}

	attempts := 0
	delay := c.opts.RetryBaseDelay
	var lastBody []byte

	for {
		attempts++
		ok, body := c.upload(ctx, filePath)
		lastBody = body
		if ok {
			return jsonpath.ExtractText(body, c.opts.TextPath), body, nil
		}
		c.log.Debugw("upload attempt failed", "attempt", attempts, "response", previewBody(body))
		if attempts >= c.opts.MaxRetry {
			return "", lastBody, &RetryExhaustedError{
				Attempts: attempts,
				MaxRetry: c.opts.MaxRetry,
				LastBody: lastBody,
			}
		}
		select {
		case <-ctx.Done():
			return "", lastBody, ctx.Err()
		case <-time.After(time.Duration(delay * float64(time.Second))):
		}
		delay *= 2
	}
}

func (c *Client) upload(ctx context.Context, filePath string) (bool, []byte) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, []byte(fmt.Sprintf("open file error: %v", err))
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return false, []byte(fmt.Sprintf("create form file error: %v", err))
	}
	if _, err := io.Copy(part, f); err != nil {
		return false, []byte(fmt.Sprintf("copy file error: %v", err))
	}
	for k, v := range c.formFields() {
		_ = writer.WriteField(k, v)
	}
	_ = writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, body)
	if err != nil {
		return false, []byte(fmt.Sprintf("new request error: %v", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, []byte(fmt.Sprintf("request error: %v", err))
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	c.log.Debugw("upload request finished", "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return false, respBody
	}
	return true, respBody
}

func (c *Client) formFields() map[string]string {
	fields := make(map[string]string)
	if c.opts.Model != "" {
		fields["model"] = c.opts.Model
	}
	if c.opts.Language != "" {
		fields["language"] = c.opts.Language
	}
	if c.opts.Prompt != "" {
		fields["prompt"] = c.opts.Prompt
	}
	for k, v := range c.extra {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case bool, float64, int:
			fields[k] = fmt.Sprintf("%v", val)
		default:
			if b, err := json.Marshal(val); err == nil {
				fields[k] = string(b)
			} else {
				fields[k] = fmt.Sprintf("%v", val)
			}
		}
	}
	return fields
}

// previewBody keeps response logging bounded and printable.
func previewBody(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	const maxText = 1000
	const maxBin = 256

	if utf8.Valid(b) {
		s := string(b)
		if len(s) > maxText {
			return fmt.Sprintf("%s... (truncated, total %d bytes)", s[:maxText], len(b))
		}
		return s
	}
	if len(b) > maxBin {
		return fmt.Sprintf("<binary %d bytes, prefix hex: %s...>", len(b), hex.EncodeToString(b[:maxBin]))
	}
	return fmt.Sprintf("<binary %d bytes, hex: %s>", len(b), hex.EncodeToString(b))
}
