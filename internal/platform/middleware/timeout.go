package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on the request context. When the handler
// has not returned by then the client gets 504; the handler keeps running
// until it notices the cancelled context, but on a context and response of
// its own, so nothing it does afterwards reaches the client or the pooled
// echo.Context of a later request.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			buf := newBufferedWriter(c.Response().Header())
			hc := detach(c, c.Request().WithContext(ctx), buf)

			done := make(chan error, 1)
			panicked := make(chan interface{}, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						panicked <- r
					}
				}()
				done <- next(hc)
			}()

			select {
			case err := <-done:
				if werr := buf.flushTo(c.Response()); werr != nil {
					return werr
				}
				return err
			case r := <-panicked:
				// Re-raised here so Recovery sees it.
				panic(r)
			case <-ctx.Done():
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					// Client went away.
					return ctx.Err()
				}
				return echo.NewHTTPError(http.StatusGatewayTimeout, "Request processing exceeded the allowed time limit")
			}
		}
	}
}

// detach copies what downstream handlers read from c into a context that
// echo never returns to its pool.
func detach(c echo.Context, req *http.Request, w http.ResponseWriter) echo.Context {
	hc := c.Echo().NewContext(req, w)
	hc.SetPath(c.Path())
	hc.SetParamNames(append([]string(nil), c.ParamNames()...)...)
	hc.SetParamValues(c.ParamValues()...)
	if rid, ok := c.Get("request_id").(string); ok {
		hc.Set("request_id", rid)
	}
	return hc
}

// bufferedWriter holds a handler's response until the timeout middleware
// decides whether it may be sent.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter(base http.Header) *bufferedWriter {
	return &bufferedWriter{header: base.Clone()}
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}

// flushTo copies headers even when nothing was written, so an error the
// handler returns is rendered with them (Retry-After, CORS).
func (w *bufferedWriter) flushTo(res *echo.Response) error {
	dst := res.Header()
	for k, v := range w.header {
		dst[k] = v
	}
	if w.status == 0 {
		return nil
	}
	res.WriteHeader(w.status)
	_, err := res.Write(w.body.Bytes())
	return err
}
