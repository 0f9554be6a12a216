package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-memory counters for the staffing API. Request totals
// are keyed by path, method and status; error totals by path, method and
// domain error code.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	durationSum  map[string]time.Duration
	errorCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		durationSum:  make(map[string]time.Duration),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments the request counter and accumulates latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := requestKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.durationSum[key] += duration
}

// RecordError increments the error counter for a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RequestTotal reports how many requests matched the key.
func (m *Metrics) RequestTotal(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount[requestKey(path, method, status)]
}

// ErrorTotal reports how many errors of a code were recorded for the key.
func (m *Metrics) ErrorTotal(path, method, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorCount[path+"|"+method+"|"+code]
}

func requestKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
