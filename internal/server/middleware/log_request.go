package middleware

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/swipe-preview/pkg/ctxval"
)

// maxLoggedBody caps the bytes of a request or response body put on the
// access log line.
const maxLoggedBody = 4 << 10

// AccessLogConfig configures AccessLog.
type AccessLogConfig struct {
	Logger  Logger
	Skipper Skipper
	// SkipResponseBody leaves the response body off the line, for routes
	// that relay large upstream payloads.
	SkipResponseBody func(c echo.Context) bool
}

type accessFieldsKey struct{}

type accessFields struct {
	mu sync.Mutex
	kv []any
}

// AddLogField puts key/value on the access log line of the request carried
// by ctx. Outside AccessLog it does nothing.
func AddLogField(ctx context.Context, key string, value any) {
	f, ok := ctxval.Get[accessFieldsKey, *accessFields](ctx, accessFieldsKey{})
	if !ok {
		return
	}
	f.mu.Lock()
	f.kv = append(f.kv, key, value)
	f.mu.Unlock()
}

// AccessLog writes one line per request once the handler returns: 5xx at
// error level, 4xx at warn, the rest at info. JSON bodies are included up
// to maxLoggedBody bytes.
func AccessLog(config AccessLogConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		panic("AccessLog requires a Logger")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.SkipResponseBody == nil {
		config.SkipResponseBody = DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			start := time.Now()
			fields := &accessFields{}
			ctx := ctxval.Wrap(c.Request().Context())
			ctxval.Set(ctx, accessFieldsKey{}, fields)
			c.SetRequest(c.Request().WithContext(ctx))

			req := c.Request()
			var reqBody []byte
			if isJSON(req.Header.Get(echo.HeaderContentType)) && req.Body != nil {
				reqBody, _ = io.ReadAll(req.Body)
				req.Body = io.NopCloser(bytes.NewReader(reqBody))
			}

			res := c.Response()
			var resBuf *bytes.Buffer
			if !config.SkipResponseBody(c) {
				resBuf = &bytes.Buffer{}
				res.Writer = &bodyDumpWriter{
					Writer:         io.MultiWriter(res.Writer, resBuf),
					ResponseWriter: res.Writer,
				}
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			args := []any{
				"status", res.Status,
				"method", req.Method,
				"uri", req.RequestURI,
				"route", c.Path(),
				"latency_ms", time.Since(start).Milliseconds(),
				"real_ip", c.RealIP(),
				"request_id", GetRequestID(c),
			}
			fields.mu.Lock()
			args = append(args, fields.kv...)
			fields.mu.Unlock()
			if body := loggedBody(reqBody); body != nil {
				args = append(args, "request_body", body)
			}
			if resBuf != nil && isJSON(res.Header().Get(echo.HeaderContentType)) {
				if body := loggedBody(resBuf.Bytes()); body != nil {
					args = append(args, "response_body", body)
				}
			}

			switch {
			case res.Status >= http.StatusInternalServerError:
				if err != nil {
					args = append(args, "error", err.Error())
				}
				config.Logger.Errorw("request", args...)
			case res.Status >= http.StatusBadRequest:
				config.Logger.Warnw("request", args...)
			default:
				config.Logger.Infow("request", args...)
			}
			return err
		}
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, echo.MIMEApplicationJSON)
}

// loggedBody returns b as raw JSON, or as a truncated string when it is too
// long or not valid JSON.
func loggedBody(b []byte) any {
	switch {
	case len(b) == 0:
		return nil
	case len(b) > maxLoggedBody:
		return string(b[:maxLoggedBody]) + "..."
	case !json.Valid(b):
		return string(b)
	}
	return json.RawMessage(b)
}

type bodyDumpWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *bodyDumpWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyDumpWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *bodyDumpWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}
