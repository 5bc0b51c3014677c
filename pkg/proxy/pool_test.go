package proxy

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestPool_AddAndNext(t *testing.T) {
	p, err := NewPool("http://proxy1:8080", "proxy2:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Len() != 2 {
		t.Fatalf("expected 2 proxies, got %d", p.Len())
	}

	want := []string{"http://proxy1:8080", "http://proxy2:8080", "http://proxy1:8080"}
	for i, w := range want {
		if got := p.Next(); got == nil || got.String() != w {
			t.Errorf("call %d: expected %s, got %v", i, w, got)
		}
	}
}

func TestPool_InvalidURL(t *testing.T) {
	if _, err := NewPool("http://"); err == nil {
		t.Error("expected error for proxy without host")
	}
	if _, err := NewPool("http://bad host:80"); err == nil {
		t.Error("expected error for unparsable proxy")
	}
}

func TestPool_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.txt")
	content := `
# corporate egress
http://10.0.0.1:3128

10.0.0.2:3128
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write proxy file: %v", err)
	}

	p, _ := NewPool()
	if err := p.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("expected 2 proxies, got %d", p.Len())
	}
	if got := p.Next().Host; got != "10.0.0.1:3128" {
		t.Errorf("expected first proxy 10.0.0.1:3128, got %s", got)
	}

	if err := p.LoadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPool_ProxyFunc(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://api.yelp.com/v3/businesses/search", nil)

	p, _ := NewPool("proxy1:8080", "proxy2:8080")
	fn := p.ProxyFunc()
	first, _ := fn(req)
	second, _ := fn(req)
	if first.Host != "proxy1:8080" || second.Host != "proxy2:8080" {
		t.Errorf("expected rotation across proxies, got %v then %v", first, second)
	}
}

func TestPool_Empty(t *testing.T) {
	var nilPool *Pool
	if nilPool.Len() != 0 {
		t.Error("nil pool should be empty")
	}
	if nilPool.ProxyFunc() == nil {
		t.Error("nil pool should fall back to the environment proxy")
	}

	p, _ := NewPool()
	if p.Next() != nil {
		t.Error("expected nil from empty pool")
	}
}
