package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"pincheck/internal/pincode/handler"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	WidgetID         string

	stop func()
}

// NewTestContext targets BASE_URL when set and an in-process server otherwise.
func NewTestContext() *TestContext {
	tc := &TestContext{
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		tc.BaseURL = strings.TrimSuffix(baseURL, "/")
		tc.stop = func() {}
		return tc
	}
	tc.BaseURL, tc.stop = startInProcess()
	return tc
}

// Close releases the in-process server, if any.
func (tc *TestContext) Close() {
	if tc.stop != nil {
		tc.stop()
	}
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

// POSTForm posts url-encoded form values and stores the response
func (tc *TestContext) POSTForm(path string, form url.Values, headers map[string]string) error {
	h := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range headers {
		h[k] = v
	}
	return tc.do(http.MethodPost, path, strings.NewReader(form.Encode()), h)
}

// POSTJSON posts a raw JSON body and stores the response
func (tc *TestContext) POSTJSON(path, body string) error {
	return tc.do(http.MethodPost, path, strings.NewReader(body), map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// widgetCookie returns the widget id set by the last response.
func (tc *TestContext) widgetCookie() string {
	if tc.LastResponse == nil {
		return ""
	}
	for _, c := range tc.LastResponse.Cookies() {
		if c.Name == handler.DefaultCookieName {
			return c.Value
		}
	}
	return ""
}

// GetResponseField extracts a top-level field from the JSON response
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}
