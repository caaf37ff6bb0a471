package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxSamples = 1000

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	responseTimes []time.Duration
	statusCodes   map[int]int64
	upstreamCalls int64
	failures      int64
	healthy       bool
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64            `json:"total_requests"`
	Uptime        time.Duration    `json:"uptime"`
	Routes        map[string]int64 `json:"routes"`
	Upstream      UpstreamMetrics  `json:"upstream"`
}

type UpstreamMetrics struct {
	URL         string        `json:"url"`
	Healthy     bool          `json:"healthy"`
	Requests    int64         `json:"requests"`
	Failures    int64         `json:"failures"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func (m *Metrics) IncrementRequests(route string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests[route]++
}

func (m *Metrics) RecordResponse(duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.upstreamCalls++
	m.recordDuration(duration)
	m.statusCodes[statusCode]++
}

// RecordFailure counts a transport failure. Its duration is kept out of the
// latency samples, which describe completed exchanges only.
func (m *Metrics) RecordFailure(duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.upstreamCalls++
	m.failures++
}

func (m *Metrics) UpdateHealthStatus(healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.healthy = healthy
}

// recordDuration keeps the most recent maxSamples durations. Callers hold the lock.
func (m *Metrics) recordDuration(duration time.Duration) {
	m.responseTimes = append(m.responseTimes, duration)

	if len(m.responseTimes) > maxSamples {
		m.responseTimes = m.responseTimes[1:]
	}
}

func (m *Metrics) Snapshot(upstreamURL string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime: time.Since(m.startTime),
		Routes: make(map[string]int64, len(m.requests)),
		Upstream: UpstreamMetrics{
			URL:         upstreamURL,
			Healthy:     m.healthy,
			Requests:    m.upstreamCalls,
			Failures:    m.failures,
			StatusCodes: make(map[int]int64, len(m.statusCodes)),
		},
	}

	for route, n := range m.requests {
		snap.Routes[route] = n
		snap.TotalRequests += n
	}

	for code, n := range m.statusCodes {
		snap.Upstream.StatusCodes[code] = n
	}

	if len(m.responseTimes) > 0 {
		sorted := make([]time.Duration, len(m.responseTimes))
		copy(sorted, m.responseTimes)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i] < sorted[j]
		})

		snap.Upstream.AvgResponse = average(sorted)
		snap.Upstream.P50Response = percentile(sorted, 0.50)
		snap.Upstream.P95Response = percentile(sorted, 0.95)
		snap.Upstream.P99Response = percentile(sorted, 0.99)
	}

	return snap
}

// NewMetrics returns empty metrics. The upstream is assumed healthy until a
// probe says otherwise.
func NewMetrics() *Metrics {
	return &Metrics{
		requests:    make(map[string]int64),
		statusCodes: make(map[int]int64),
		healthy:     true,
		startTime:   time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
