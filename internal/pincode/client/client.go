// Package client talks to the public postal pincode API
// (https://api.postalpincode.in/pincode/<code>).
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"pincheck/internal/pincode/models"
	"pincheck/pkg/domain"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// DefaultBaseURL is the public endpoint the pincode is appended to.
const DefaultBaseURL = "https://api.postalpincode.in/pincode/"

// statusSuccess is the upstream Status value for a found pincode.
const statusSuccess = "Success"

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 1 << 20

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs one GET per lookup. It never retries and keeps no state
// between calls, so a single Client is safe for concurrent use.
type Client struct {
	baseURL   string
	client    HTTPDoer
	sanitizer *bluemonday.Policy
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// New creates a client for baseURL. A zero timeout leaves the transport default in place.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
		sanitizer: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint pincodes are appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// postalRecord is one element of the upstream response array.
type postalRecord struct {
	Message    string             `json:"Message"`
	Status     string             `json:"Status"`
	PostOffice []postOfficeRecord `json:"PostOffice"`
}

type postOfficeRecord struct {
	Name           string `json:"Name"`
	BranchType     string `json:"BranchType"`
	DeliveryStatus string `json:"DeliveryStatus"`
	District       string `json:"District"`
	State          string `json:"State"`
}

// Lookup fetches the post offices for pin.
//
// Success and upstream rejections are returned as results. A non-nil error is
// always a *TransportError and means no upstream answer could be read.
func (c *Client) Lookup(ctx context.Context, pin domain.Pincode) (models.LookupResult, error) {
	url := c.baseURL + pin.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.LookupResult{}, newTransportError(ErrorInternal, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return models.LookupResult{}, newTransportError(ErrorTimeout, "request timeout", err)
		}
		return models.LookupResult{}, newTransportError(ErrorUpstreamOutage, "failed to execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.LookupResult{}, newTransportError(ErrorBadData, "failed to read response body", err)
	}

	record, err := decodeFirst(body)
	if err != nil {
		return models.LookupResult{}, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return models.NewAPIError(pin.String(), c.clean(record.Message)), nil
	}

	if record.Status != statusSuccess {
		msg := fmt.Sprintf("%s for this pincode: %s", c.clean(record.Message), pin)
		return models.NewAPIError(pin.String(), msg), nil
	}

	offices := make([]models.PostOffice, 0, len(record.PostOffice))
	for _, po := range record.PostOffice {
		offices = append(offices, models.PostOffice{
			Name:           c.clean(po.Name),
			DeliveryStatus: po.DeliveryStatus,
			BranchType:     c.clean(po.BranchType),
			District:       c.clean(po.District),
			State:          c.clean(po.State),
		})
	}
	return models.NewSuccess(pin.String(), offices), nil
}

// decodeFirst parses the response array and returns its first element. An
// element that is null or carries no Status is not an upstream answer.
func decodeFirst(body []byte) (postalRecord, error) {
	var records []*postalRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return postalRecord{}, newTransportError(ErrorBadData, "failed to parse response", err)
	}
	if len(records) == 0 {
		return postalRecord{}, newTransportError(ErrorContractMismatch, "empty response array", nil)
	}
	first := records[0]
	if first == nil || first.Status == "" {
		return postalRecord{}, newTransportError(ErrorContractMismatch, "response record missing status", nil)
	}
	return *first, nil
}

// clean strips markup from upstream text and returns plain text; escaping is
// left to the renderer.
func (c *Client) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(s)))
}

// Health checks that the upstream answers at all. Any response below 500 counts.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return newTransportError(ErrorUpstreamOutage, "health check failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode >= http.StatusInternalServerError {
		return newTransportError(ErrorUpstreamOutage, fmt.Sprintf("unhealthy status: %d", resp.StatusCode), nil)
	}
	return nil
}
