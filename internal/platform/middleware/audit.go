package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const apiPrefix = "/api/"

// Audit emits one "record_access" log line per /api/ request after the
// handler has run: which record family was touched, how, and for which
// patient when the path names one.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strings.HasPrefix(req.URL.Path, apiPrefix) {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}

			logger.Info().
				Str("type", "record_access").
				Str("request_id", requestIDFrom(c)).
				Str("resource", resourceOf(req.URL.Path)).
				Str("action", actionOf(req.Method, req.URL.Path)).
				Str("patient_id", patientIDOf(c)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Int("status", status).
				Msg("record_access")

			return err
		}
	}
}

// resourceOf returns the first segment after /api/, e.g. "lab-tests".
// Child lists under a visit (/api/visits/7/payments) report the child.
func resourceOf(path string) string {
	segs := strings.Split(strings.Trim(strings.TrimPrefix(path, apiPrefix), "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return "unknown"
	}
	if segs[0] == "visits" && len(segs) == 3 && segs[1] != "code" {
		return segs[2]
	}
	return segs[0]
}

func actionOf(method, path string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	if strings.HasPrefix(path, apiPrefix+"patients") && !strings.HasPrefix(path, apiPrefix+"patients/") {
		return "search"
	}
	return "read"
}

// patientIDOf finds a numeric patient id in /api/patients/:id. Other
// routes name a visit or child record, not a patient.
func patientIDOf(c echo.Context) string {
	rest, ok := strings.CutPrefix(c.Request().URL.Path, apiPrefix+"patients/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	if isNumeric(id) {
		return id
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
