package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const ewmaAlpha = 0.2

// Response is a completed exchange with the Results API. Body is the raw
// payload, never parsed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Upstream is the Results API at a fixed base URL.
type Upstream struct {
	baseURL string
	client  *http.Client

	mutex            sync.Mutex
	isHealthy        bool
	ewmaResponseTime time.Duration
	hasEWMA          bool
}

// New creates an Upstream for baseURL using client. A nil client means a
// zero http.Client, i.e. Go's default transport and no timeout.
// The upstream starts in a healthy state.
func New(baseURL string, client *http.Client) *Upstream {
	if client == nil {
		client = &http.Client{}
	}

	return &Upstream{
		baseURL:   baseURL,
		client:    client,
		isHealthy: true,
	}
}

// BaseURL returns the base URL exactly as configured.
func (u *Upstream) BaseURL() string {
	return u.baseURL
}

// SummaryURL returns the summary endpoint for experimentID. The identifier is
// concatenated as-is, without escaping.
func (u *Upstream) SummaryURL(experimentID string) string {
	return u.baseURL + "/v1/experiments/" + experimentID + "/summary"
}

// HealthURL returns the probe endpoint for path.
func (u *Upstream) HealthURL(path string) string {
	return u.baseURL + path
}

// Summary issues one GET to the summary endpoint for experimentID and returns
// whatever the Results API answered, whatever the status code. Only transport
// failures are returned as errors.
func (u *Upstream) Summary(ctx context.Context, experimentID string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.SummaryURL(experimentID), nil)
	if err != nil {
		return nil, fmt.Errorf("build summary request: %w", err)
	}

	start := time.Now()
	res, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get summary %q: %w", experimentID, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read summary %q: %w", experimentID, err)
	}
	u.RecordResponse(time.Since(start))

	return &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}

// IsHealthy returns true if the last probe succeeded.
func (u *Upstream) IsHealthy() bool {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.isHealthy
}

// SetHealthy updates the health status.
// Returns true if the status changed, false if it was already in that state.
func (u *Upstream) SetHealthy(healthy bool) (changed bool) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if u.isHealthy == healthy {
		return false
	}

	u.isHealthy = healthy
	return true
}

// RecordResponse folds duration into the exponentially weighted moving
// average (EWMA) response time.
func (u *Upstream) RecordResponse(duration time.Duration) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if !u.hasEWMA {
		u.ewmaResponseTime = duration
		u.hasEWMA = true
		return
	}
	//ewma = (1 - α) * ewma + α * latest
	u.ewmaResponseTime = time.Duration((1-ewmaAlpha)*float64(u.ewmaResponseTime) + ewmaAlpha*float64(duration))
}

// EWMATime returns the moving average response time, or 0 before the first
// completed exchange.
func (u *Upstream) EWMATime() time.Duration {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if !u.hasEWMA {
		return 0
	}

	return u.ewmaResponseTime
}
