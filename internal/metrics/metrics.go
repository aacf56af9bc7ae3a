package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginAttempts counts login attempts by result (success, invalid, ratelimited).
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// AccountsLocked is the number of usernames currently in login cooldown.
	AccountsLocked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_locked",
			Help: "Number of usernames currently locked out of login",
		},
	)

	// TestsGraded counts graded test submissions by subject.
	TestsGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tests_graded_total",
			Help: "Total number of graded test submissions by subject",
		},
		[]string{"subject"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, LoginAttempts, AccountsLocked, TestsGraded)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /quiz/subjects/Tarih/topics/X/tests/2 -> .../tests/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLogin counts one login attempt. result is "success", "invalid" or "ratelimited".
func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

// SetAccountsLocked updates the locked-usernames gauge (fed by the limiter sweep).
func SetAccountsLocked(n int) {
	AccountsLocked.Set(float64(n))
}

// RecordGradedTest counts one graded submission for a subject.
func RecordGradedTest(subject string) {
	TestsGraded.WithLabelValues(subject).Inc()
}
