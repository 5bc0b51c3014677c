package proxy

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

// Pool rotates outbound API connections across a fixed list of HTTP proxies.
type Pool struct {
	mu      sync.Mutex
	proxies []*url.URL
	next    int
}

// NewPool creates a pool from raw proxy URLs. A missing scheme defaults to http.
func NewPool(rawURLs ...string) (*Pool, error) {
	p := &Pool{}
	if err := p.Add(rawURLs...); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads proxies from a file, expecting one URL per line.
// Lines starting with '#' or empty lines are ignored.
func (p *Pool) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var urls []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("proxy: read %s: %w", path, err)
	}

	return p.Add(urls...)
}

// Add parses raw URL strings and adds them to the pool.
func (p *Pool) Add(rawURLs ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, raw := range rawURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("proxy: %q has no host", raw)
		}
		p.proxies = append(p.proxies, u)
	}
	return nil
}

// Len reports how many proxies are configured.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// Next returns the next proxy in round-robin order, or nil for an empty pool.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return nil
	}
	u := p.proxies[p.next]
	p.next = (p.next + 1) % len(p.proxies)
	return u
}

// ProxyFunc returns a function suitable for http.Transport.Proxy. A nil or
// empty pool defers to the HTTP_PROXY/HTTPS_PROXY environment.
func (p *Pool) ProxyFunc() func(*http.Request) (*url.URL, error) {
	if p.Len() == 0 {
		return http.ProxyFromEnvironment
	}
	return func(*http.Request) (*url.URL, error) {
		return p.Next(), nil
	}
}
