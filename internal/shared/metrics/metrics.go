package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	runStartedTotal      atomic.Uint64
	runCompletedTotal    atomic.Uint64
	runFailedTotal       atomic.Uint64
	classifyRequestTotal atomic.Uint64

	runJobsReceivedTotal      atomic.Uint64
	runJobsCompletedTotal     atomic.Uint64
	runJobsFailedTotal        atomic.Uint64
	runJobsDeletedUnrecovered atomic.Uint64

	runDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 300000})

	classifyTypeMu     sync.Mutex
	classifyTypeCounts = map[string]uint64{}
)

// IncRunStarted increments the started counter.
func IncRunStarted() {
	runStartedTotal.Add(1)
}

// IncRunCompleted increments the completed counter.
func IncRunCompleted() {
	runCompletedTotal.Add(1)
}

// IncRunFailed increments the failed counter.
func IncRunFailed() {
	runFailedTotal.Add(1)
}

// IncClassifyRequest increments the classify request counter.
func IncClassifyRequest() {
	classifyRequestTotal.Add(1)
}

// IncClassifyQueryType counts classifications per resolved query type.
func IncClassifyQueryType(queryType string) {
	if queryType == "" {
		return
	}
	classifyTypeMu.Lock()
	classifyTypeCounts[queryType]++
	classifyTypeMu.Unlock()
}

// IncRunJobsReceived increments the worker job counter.
func IncRunJobsReceived() {
	runJobsReceivedTotal.Add(1)
}

// IncRunJobsCompleted increments the worker completed-job counter.
func IncRunJobsCompleted() {
	runJobsCompletedTotal.Add(1)
}

// IncRunJobsFailed increments the worker failed-job counter.
func IncRunJobsFailed() {
	runJobsFailedTotal.Add(1)
}

// IncRunJobsDeletedUnrecoverable counts malformed jobs dropped from the queue.
func IncRunJobsDeletedUnrecoverable() {
	runJobsDeletedUnrecovered.Add(1)
}

// ObserveRunDurationMs records a run duration in milliseconds.
func ObserveRunDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	runDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "run_started_total", "Total runs started", runStartedTotal.Load())
	writeCounter(&buf, "run_completed_total", "Total runs completed", runCompletedTotal.Load())
	writeCounter(&buf, "run_failed_total", "Total runs failed", runFailedTotal.Load())
	writeCounter(&buf, "classify_requests_total", "Total classify requests", classifyRequestTotal.Load())
	writeLabeledCounter(&buf, "classify_query_type_total", "Total classifications per query type", "query_type", snapshotClassifyTypes())
	writeCounter(&buf, "run_jobs_received_total", "Total queue jobs received by the worker", runJobsReceivedTotal.Load())
	writeCounter(&buf, "run_jobs_completed_total", "Total queue jobs completed by the worker", runJobsCompletedTotal.Load())
	writeCounter(&buf, "run_jobs_failed_total", "Total queue jobs that failed in the worker", runJobsFailedTotal.Load())
	writeCounter(&buf, "run_jobs_deleted_unrecoverable_total", "Total malformed queue jobs deleted", runJobsDeletedUnrecovered.Load())
	writeHistogram(&buf, "run_duration_ms", "Run duration in milliseconds", runDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	// counts are per-bucket; rendering accumulates them into the
	// cumulative form the exposition format expects.
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func snapshotClassifyTypes() map[string]uint64 {
	classifyTypeMu.Lock()
	defer classifyTypeMu.Unlock()
	out := make(map[string]uint64, len(classifyTypeCounts))
	for k, v := range classifyTypeCounts {
		out[k] = v
	}
	return out
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
