package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// UpstreamClient calls the configured lookup services.
type UpstreamClient struct {
	http *http.Client
}

func NewUpstreamClient(timeout time.Duration) *UpstreamClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &UpstreamClient{http: &http.Client{Timeout: timeout}}
}

// Invoke substitutes the query into the template's "{}" placeholder and GETs
// the result. Every failure mode comes back as an {"error": ...} payload
// instead of a Go error, so callers deliver it like any other response.
func (c *UpstreamClient) Invoke(ctx context.Context, template, query string) ([]byte, bool) {
	target := strings.Replace(template, "{}", url.QueryEscape(query), 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ErrorPayload(err.Error()), true
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return ErrorPayload("Request timeout"), true
		}
		return ErrorPayload(err.Error()), true
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorPayload(fmt.Sprintf("HTTP %d", resp.StatusCode)), true
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorPayload(err.Error()), true
	}
	if !gjson.ValidBytes(body) {
		return ErrorPayload("Invalid JSON response"), true
	}
	return body, false
}

// ErrorPayload builds the {"error": <message>} document used for every
// upstream failure mode.
func ErrorPayload(message string) []byte {
	payload, err := sjson.SetBytes([]byte(`{}`), "error", message)
	if err != nil {
		return []byte(`{"error":"upstream failure"}`)
	}
	return payload
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
