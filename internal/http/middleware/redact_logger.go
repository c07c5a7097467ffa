// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger for the staffing
// API. Requests routinely carry worker identifiers, and clients sometimes
// put contact details where they do not belong (a worker email in a query
// filter, a phone number in a custom header), so the logger scrubs request
// metadata before anything reaches the log stream.
//
//	r := gin.New()
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-API-Key"},
//	}))
//
// Bodies are never logged. Scrubbing narrows, but does not remove, the risk
// of PII reaching logs; clients should still keep worker contact data out of
// query strings and headers.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
type RedactOptions struct {
	// MaskHeaders lists extra header names whose values are replaced with
	// "[REDACTED]" wholesale. Case-insensitive, merged with the built-in
	// set (Authorization, Cookie, Set-Cookie).
	MaskHeaders []string
}

// scrubber applies pattern-based PII redaction to free-form strings.
type scrubber struct {
	uuid  *regexp.Regexp
	email *regexp.Regexp
	phone *regexp.Regexp
}

func newScrubber() scrubber {
	return scrubber{
		// Worker and shift ids are UUIDs; scrub them so a log line cannot
		// be joined back to an individual's schedule.
		uuid:  regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`),
		email: regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`),
		// Digits-only, e.g. "+1 212-555-1212" or "(212) 555-1212"; hex is
		// excluded so UUID fragments never match.
		phone: regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`),
	}
}

// scrub replaces PII occurrences with typed placeholders. UUIDs go first so
// the looser phone pattern never claims their digit runs.
func (s scrubber) scrub(v string) string {
	if v == "" {
		return v
	}
	v = s.uuid.ReplaceAllString(v, "[REDACTED:id]")
	v = s.email.ReplaceAllString(v, "[REDACTED:email]")
	v = s.phone.ReplaceAllString(v, "[REDACTED:phone]")
	return v
}

// RedactingLogger returns a Gin middleware that writes one structured log
// line per request: method, route, scrubbed query and headers, status,
// response size, latency, and the correlation id. Severity follows the
// status code (info, warn for 4xx, error for 5xx). The actor role travels
// along when the auth middleware resolved one; the actor id does not, it is
// PII like any other worker identifier.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	sc := newScrubber()

	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		// Prefer the route pattern ("/shifts/:id") so path values with
		// embedded ids need no scrubbing of their own.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := sc.scrub(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = sc.scrub(strings.Join(vv, ", "))
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		if role := c.GetString("actorRole"); role != "" {
			ev = ev.Str("actor_role", role)
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
