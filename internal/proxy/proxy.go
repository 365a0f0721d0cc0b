// Package proxy forwards browser calls under a local prefix to the inference
// host with the API key attached server side.
package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
)

// Proxy is the reverse proxy middleware together with the prefix it serves.
type Proxy struct {
	Prefix  string
	Handler echo.MiddlewareFunc
}

// New builds a proxy that rewrites <prefix>/* to <target>/*. Any client
// Authorization header is replaced by the configured key.
func New(cfg *config.Config) (*Proxy, error) {
	target, err := url.Parse(cfg.Fal.ProxyTarget)
	if err != nil {
		return nil, fmt.Errorf("parse proxy target: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy target %q must be an absolute url", cfg.Fal.ProxyTarget)
	}

	prefix := "/" + strings.Trim(cfg.Fal.ProxyPrefix, "/")
	handler := middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{Name: "fal", URL: target}}),
		Rewrite: map[string]string{
			prefix + "/*": "/$1",
		},
		Transport: &keyTransport{key: cfg.Fal.Key, base: http.DefaultTransport},
		ModifyResponse: func(resp *http.Response) error {
			log.Debugw(resp.Request.Context(), "proxied request",
				"path", resp.Request.URL.Path, "status", resp.StatusCode)
			return nil
		},
	})
	return &Proxy{Prefix: prefix, Handler: handler}, nil
}

// Mount registers the proxy for every method under the prefix.
func (p *Proxy) Mount(e *echo.Echo) {
	e.Any(p.Prefix+"/*", echo.NotFoundHandler, p.Handler)
}

// keyTransport sets the credential and makes the outbound Host match the
// target host.
type keyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *keyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Del("Authorization")
	if t.key != "" {
		out.Header.Set("Authorization", "Key "+t.key)
	}
	out.Host = out.URL.Host
	return t.base.RoundTrip(out)
}
