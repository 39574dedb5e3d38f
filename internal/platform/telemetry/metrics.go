// Package telemetry records HTTP server metrics and serves them in the
// Prometheus text exposition format.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// defaultDurationBuckets are upper bounds in seconds.
var defaultDurationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// ---------------------------------------------------------------------------
// Histogram
// ---------------------------------------------------------------------------

// histogram keeps non-cumulative bucket counts; cumulative counts are
// computed at export time.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits
	mu           sync.Mutex
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

// Observe records a single value.
func (h *histogram) Observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			return
		}
	}
}

func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	raw := make([]int64, len(h.bucketCounts))
	copy(raw, h.bucketCounts)
	h.mu.Unlock()

	var running int64
	for i, c := range raw {
		running += c
		raw[i] = running
	}
	return raw
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		next := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(next)) {
			return
		}
	}
}

// LabelsKey builds the key a request is recorded under.
func LabelsKey(method, route, statusCode string) string {
	return method + "|" + route + "|" + statusCode
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// Metrics holds the process-wide HTTP metrics.
type Metrics struct {
	mu        sync.RWMutex
	durations map[string]*histogram
	created   map[string]*int64
	active    int64
	started   time.Time
	version   string
}

// NewMetrics creates an empty metrics registry. version is exported as a
// label on clinic_build_info.
func NewMetrics(version string) *Metrics {
	return &Metrics{
		durations: make(map[string]*histogram),
		created:   make(map[string]*int64),
		started:   time.Now(),
		version:   version,
	}
}

func (m *Metrics) histogramFor(key string) *histogram {
	m.mu.RLock()
	h, ok := m.durations[key]
	m.mu.RUnlock()
	if ok {
		return h
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok = m.durations[key]; !ok {
		h = newHistogram(defaultDurationBuckets)
		m.durations[key] = h
	}
	return h
}

func (m *Metrics) incCreated(resource string) {
	m.mu.RLock()
	p, ok := m.created[resource]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		if p, ok = m.created[resource]; !ok {
			p = new(int64)
			m.created[resource] = p
		}
		m.mu.Unlock()
	}
	atomic.AddInt64(p, 1)
}

// Requests returns how many requests were recorded under the labels.
func (m *Metrics) Requests(method, route, statusCode string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.durations[LabelsKey(method, route, statusCode)]; ok {
		return h.Count()
	}
	return 0
}

// Created returns how many records of a resource were created over HTTP.
func (m *Metrics) Created(resource string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.created[resource]; ok {
		return atomic.LoadInt64(p)
	}
	return 0
}

// Active returns the number of in-flight requests.
func (m *Metrics) Active() int64 {
	return atomic.LoadInt64(&m.active)
}

// Middleware records the duration of every request by method, route pattern
// and status. Successful POSTs under /api/ also count a created record.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.active, 1)
			defer atomic.AddInt64(&m.active, -1)
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			m.histogramFor(LabelsKey(req.Method, route, strconv.Itoa(status))).
				Observe(time.Since(start).Seconds())

			if req.Method == http.MethodPost && status == http.StatusCreated {
				if res := resourceOf(route); res != "" {
					m.incCreated(res)
				}
			}
			return err
		}
	}
}

// resourceOf returns the last static segment of an /api/ route pattern,
// e.g. "payments" for /api/payments.
func resourceOf(route string) string {
	if !strings.HasPrefix(route, "/api/") {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(route, "/api/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" && !strings.HasPrefix(parts[i], ":") {
			return parts[i]
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Exposition
// ---------------------------------------------------------------------------

// Handler serves the metrics in Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		b.WriteString("# HELP clinic_build_info Build information.\n")
		b.WriteString("# TYPE clinic_build_info gauge\n")
		fmt.Fprintf(&b, "clinic_build_info{version=%q} 1\n\n", m.version)

		b.WriteString("# HELP process_uptime_seconds Seconds since the server started.\n")
		b.WriteString("# TYPE process_uptime_seconds gauge\n")
		fmt.Fprintf(&b, "process_uptime_seconds %g\n\n", time.Since(m.started).Seconds())

		b.WriteString("# HELP http_server_active_requests Number of in-flight HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n\n", m.Active())

		m.mu.RLock()
		durations := make(map[string]*histogram, len(m.durations))
		for k, v := range m.durations {
			durations[k] = v
		}
		created := make(map[string]int64, len(m.created))
		for k, p := range m.created {
			created[k] = atomic.LoadInt64(p)
		}
		m.mu.RUnlock()

		const durName = "http_server_request_duration_seconds"
		fmt.Fprintf(&b, "# HELP %s Duration of HTTP requests in seconds.\n", durName)
		fmt.Fprintf(&b, "# TYPE %s histogram\n", durName)
		for _, key := range sortedKeys(durations) {
			parts := strings.SplitN(key, "|", 3)
			labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", parts[0], parts[1], parts[2])
			writeHistogram(&b, durName, labels, durations[key])
		}
		b.WriteByte('\n')

		b.WriteString("# HELP clinic_records_created_total Records created over the API by resource.\n")
		b.WriteString("# TYPE clinic_records_created_total counter\n")
		for _, res := range sortedKeys(created) {
			fmt.Fprintf(&b, "clinic_records_created_total{resource=%q} %d\n", res, created[res])
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/plain; version=0.0.4; charset=utf-8")
		return c.String(http.StatusOK, b.String())
	}
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum := h.cumulativeBuckets()
	for i, boundary := range h.boundaries {
		fmt.Fprintf(b, "%s_bucket{%s,le=\"%g\"} %d\n", name, labels, boundary, cum[i])
	}
	total := h.Count()
	fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, total)
	fmt.Fprintf(b, "%s_sum{%s} %g\n", name, labels, h.Sum())
	fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, total)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
