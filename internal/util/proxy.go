package util

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/http/httpproxy"
)

// ProxyFunc is the signature http.Transport expects for proxy selection
type ProxyFunc func(*http.Request) (*url.URL, error)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) ProxyFunc {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	cfg := &httpproxy.Config{
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    noProxy,
	}
	proxyForURL := cfg.ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return proxyForURL(req.URL)
	}
}

// ProxyRotator hands out proxies from a pool in round-robin order, moving to
// the next proxy after every N requests
type ProxyRotator struct {
	proxies []*url.URL
	every   int
	noProxy ProxyFunc

	mu    sync.Mutex
	count int
	index int
}

// NewProxyRotator parses the proxy pool. rotateEvery <= 0 rotates on every
// request. Hosts matched by noProxy bypass the pool.
func NewProxyRotator(proxies []string, rotateEvery int, noProxy string) (*ProxyRotator, error) {
	if len(proxies) == 0 {
		return nil, fmt.Errorf("proxy pool is empty")
	}
	if rotateEvery <= 0 {
		rotateEvery = 1
	}

	parsed := make([]*url.URL, 0, len(proxies))
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", p)
		}
		parsed = append(parsed, u)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("proxy pool is empty")
	}

	r := &ProxyRotator{proxies: parsed, every: rotateEvery}
	if noProxy != "" {
		// a sentinel proxy lets httpproxy evaluate the NO_PROXY rules for us
		cfg := &httpproxy.Config{HTTPProxy: "http://bypass.invalid", HTTPSProxy: "http://bypass.invalid", NoProxy: noProxy}
		fn := cfg.ProxyFunc()
		r.noProxy = func(req *http.Request) (*url.URL, error) { return fn(req.URL) }
	}
	return r, nil
}

// Proxy selects the proxy for req
func (r *ProxyRotator) Proxy(req *http.Request) (*url.URL, error) {
	if r.noProxy != nil {
		if u, err := r.noProxy(req); err == nil && u == nil {
			return nil, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count >= r.every {
		r.count = 0
		r.index = (r.index + 1) % len(r.proxies)
	}
	r.count++
	return r.proxies[r.index], nil
}

// Len returns the pool size
func (r *ProxyRotator) Len() int {
	return len(r.proxies)
}
