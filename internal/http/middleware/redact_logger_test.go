package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_ScrubsWorkerPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	buf := captureLogger(t)

	// Upstream request-id middleware writes the response header.
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-resp")
		c.Set("actorRole", "scheduler")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-API-Key"}}))

	r.GET("/workers/:id/commitments", func(c *gin.Context) {
		c.String(http.StatusOK, "[]")
	})

	// Query smuggles worker contact details and a worker UUID; all of it
	// must be scrubbed. RawQuery is redacted as-is, no parsing needed.
	q := "email=nurse.lee+oncall@example.com&phone=+1-555-123-4567&worker=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/workers/w-123/commitments?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-API-Key", "shhh")
	// A header carrying PII gets pattern-scrubbed, not wholesale-masked.
	req.Header.Set("X-On-Call-Contact", "reach nurse.lee@example.com or 555-123-4567, badge 123e4567-e89b-12d3-a456-426614174000")
	// Request-side request id loses to the response header.
	req.Header.Set("X-Request-ID", "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info log, got: %s", logs)
	}
	// The route pattern keeps the worker id out of the path field.
	if !strings.Contains(logs, `"path":"/workers/:id/commitments"`) {
		t.Fatalf("expected route pattern path, got: %s", logs)
	}
	if !strings.Contains(logs, `"request_id":"rid-resp"`) {
		t.Fatalf("expected request_id from response header, got: %s", logs)
	}
	if !strings.Contains(logs, `"actor_role":"scheduler"`) {
		t.Fatalf("expected actor_role field, got: %s", logs)
	}
	if strings.Contains(logs, "nurse.lee") || strings.Contains(logs, "555-123-4567") || strings.Contains(logs, "123e4567") {
		t.Fatalf("PII leaked into log: %s", logs)
	}
	if !strings.Contains(logs, `[REDACTED:email]`) || !strings.Contains(logs, `[REDACTED:phone]`) || !strings.Contains(logs, `[REDACTED:id]`) {
		t.Fatalf("expected typed redactions in query, got: %s", logs)
	}
	for _, h := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if !strings.Contains(logs, `"`+h+`":"[REDACTED]"`) {
			t.Fatalf("%s must be fully masked: %s", h, logs)
		}
	}
	if !strings.Contains(logs, `"X-On-Call-Contact":"reach [REDACTED:email] or [REDACTED:phone], badge [REDACTED:id]"`) {
		t.Fatalf("expected scrubbed contact header, got: %s", logs)
	}
}

func TestRedactingLogger_SeverityAndRequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	buf := captureLogger(t)

	// No response-side X-Request-ID and no resolved actor this time.
	r.Use(RedactingLogger(RedactOptions{}))

	r.GET("/shifts/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/shifts/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	reqWarn := httptest.NewRequest(http.MethodGet, "/shifts/missing", nil)
	reqWarn.Header.Set("X-Request-ID", "rid-warn")
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, reqWarn)

	reqErr := httptest.NewRequest(http.MethodGet, "/shifts/boom", nil)
	reqErr.Header.Set("X-Request-ID", "rid-err")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, reqErr)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log missing or no request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log missing or no request_id fallback: %s", logs)
	}
	if strings.Contains(logs, `"actor_role"`) {
		t.Fatalf("actor_role should be absent without auth: %s", logs)
	}
}
