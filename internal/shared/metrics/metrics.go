package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	scrapeRecordsTotal       atomic.Uint64
	normalizationFailedTotal atomic.Uint64
	cacheHitsTotal           atomic.Uint64
	cacheMissesTotal         atomic.Uint64
	generationAttemptsTotal  atomic.Uint64
	generationFailedTotal    atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// AddScrapeRecords adds to the scraped-record counter.
func AddScrapeRecords(n int) {
	if n > 0 {
		scrapeRecordsTotal.Add(uint64(n))
	}
}

// IncNormalizationFailed increments the normalization-failure counter.
func IncNormalizationFailed() {
	normalizationFailedTotal.Add(1)
}

// IncCacheHit increments the analysis cache-hit counter.
func IncCacheHit() {
	cacheHitsTotal.Add(1)
}

// IncCacheMiss increments the analysis cache-miss counter.
func IncCacheMiss() {
	cacheMissesTotal.Add(1)
}

// IncGenerationAttempt increments the generation-attempt counter.
func IncGenerationAttempt() {
	generationAttemptsTotal.Add(1)
}

// IncGenerationFailed increments the generation-failure counter.
func IncGenerationFailed() {
	generationFailedTotal.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
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
	writeCounter(&buf, "scrape_records_total", "Total raw plan records scraped", scrapeRecordsTotal.Load())
	writeCounter(&buf, "normalization_failed_total", "Total plan records that failed normalization", normalizationFailedTotal.Load())
	writeCounter(&buf, "analysis_cache_hits_total", "Total analysis cache hits", cacheHitsTotal.Load())
	writeCounter(&buf, "analysis_cache_misses_total", "Total analysis cache misses", cacheMissesTotal.Load())
	writeCounter(&buf, "generation_attempts_total", "Total LLM generation attempts", generationAttemptsTotal.Load())
	writeCounter(&buf, "generation_failed_total", "Total LLM generations that failed", generationFailedTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis generation duration in milliseconds", analysisDuration.Snapshot())
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
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
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
