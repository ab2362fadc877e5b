// cmd/relay/proxy.go
package main

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"

	"quotation-relay/internal/common/config"
	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/intercept"
)

type route struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

// newProxy builds the reverse proxy in front of the observed application.
// In transport mode every upstream round trip goes through the intercepting
// RoundTripper; in handler mode the whole router is wrapped by the
// intercepting middleware instead.
func newProxy(cfg config.ProxyConfig, observer *intercept.Observer, log logger.Logger) (http.Handler, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Mode == config.ProxyModeTransport {
		transport = intercept.NewTransport(http.DefaultTransport, observer)
	}

	fallback, err := reverseProxy(cfg.Upstream, transport, log)
	if err != nil {
		return nil, err
	}

	routes := make([]route, 0, len(cfg.Routes))
	for _, r := range cfg.Routes {
		p, err := reverseProxy(r.Upstream, transport, log)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route{prefix: r.Prefix, proxy: p})
	}
	// Longest prefix first.
	sort.SliceStable(routes, func(i, j int) bool {
		return len(routes[i].prefix) > len(routes[j].prefix)
	})

	var router http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, rt := range routes {
			if strings.HasPrefix(r.URL.Path, rt.prefix) {
				rt.proxy.ServeHTTP(w, r)
				return
			}
		}
		fallback.ServeHTTP(w, r)
	})

	if cfg.Mode == config.ProxyModeHandler {
		router = intercept.NewMiddleware(observer).Wrap(router)
	}
	return router, nil
}

func reverseProxy(rawURL string, transport http.RoundTripper, log logger.Logger) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", rawURL)
	}

	p := httputil.NewSingleHostReverseProxy(target)
	director := p.Director
	p.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	p.Transport = transport
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("upstream request failed", map[string]interface{}{
			"upstream": target.Host,
			"path":     r.URL.Path,
			"error":    err.Error(),
		})
		w.WriteHeader(http.StatusBadGateway)
	}
	return p, nil
}
