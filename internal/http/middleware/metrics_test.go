package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RequestCountersAndInflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	// Listing returns a body, so the size histogram observes a value.
	r.GET("/shifts", func(c *gin.Context) {
		c.String(http.StatusOK, "[]")
	})
	// Commands answer 204 with no body; size stays -1 and the size
	// histogram is skipped for them.
	r.POST("/shifts/:id/request", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Metrics are process-global, so diff against the current values.
	baseList := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/shifts", "200"))
	baseCmd := testutil.ToFloat64(httpReqs.WithLabelValues("POST", "/shifts/:id/request", "204"))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/rosters", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shifts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /shifts -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/shifts/s1/request", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("POST /shifts/s1/request -> %d", w.Code)
	}

	// No route match: the label falls back to the raw URL path.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rosters", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /rosters -> %d", w.Code)
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/shifts", "200")); got != baseList+1 {
		t.Fatalf("listing counter = %v, want %v", got, baseList+1)
	}
	// The command route counts under its pattern, keeping shift ids out of
	// the label set.
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("POST", "/shifts/:id/request", "204")); got != baseCmd+1 {
		t.Fatalf("command counter = %v, want %v", got, baseCmd+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/rosters", "404")); got != baseMiss+1 {
		t.Fatalf("miss counter = %v, want %v", got, baseMiss+1)
	}

	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v after completion, want 0", inFlight)
	}
}
