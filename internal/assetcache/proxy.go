package assetcache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"
)

// apiPrefix marks requests bound for the remote record store. They are
// cross-origin from the deployment's point of view and must pass
// through untouched: never cached, never served stale.
const apiPrefix = "/api/"

// ProxyConfig configures the cache-first proxy.
type ProxyConfig struct {
	ListenAddr string
	Origin     *url.URL // the deployed same-origin site
	APIBase    *url.URL // optional; requests under /api/ forward here
}

// Proxy serves the deployment's static assets cache-first and passes
// API traffic straight through.
type Proxy struct {
	config ProxyConfig
	store  *Store
	http   *http.Server
	client *http.Client
	api    *httputil.ReverseProxy
}

// NewProxy creates a proxy over the given store.
func NewProxy(cfg ProxyConfig, store *Store) *Proxy {
	p := &Proxy{
		config: cfg,
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	if cfg.APIBase != nil {
		p.api = httputil.NewSingleHostReverseProxy(cfg.APIBase)
	}
	p.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      p.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return p
}

func (p *Proxy) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", p.handle)
	return mux
}

// Install pre-warms the asset manifest and activates the live
// generation, purging superseded ones.
func (p *Proxy) Install(ctx context.Context, assets []string) error {
	for _, path := range assets {
		body, contentType, err := p.fetchOrigin(ctx, path)
		if err != nil {
			return fmt.Errorf("warm %s: %w", path, err)
		}
		if err := p.store.Put(path, contentType, body); err != nil {
			return err
		}
		slog.Debug("cache: warmed", "path", path, "bytes", len(body))
	}

	purged, err := p.store.Activate()
	if err != nil {
		return err
	}
	if purged > 0 {
		slog.Info("cache: purged old generations", "entries", purged)
	}
	return nil
}

// Start begins listening (non-blocking).
func (p *Proxy) Start() error {
	ln, err := net.Listen("tcp", p.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		if err := p.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("cache proxy", "err", err)
		}
	}()
	slog.Info("cache proxy listening", "addr", ln.Addr().String(), "generation", p.store.Generation())
	return nil
}

// Shutdown stops the proxy gracefully.
func (p *Proxy) Shutdown(ctx context.Context) error {
	return p.http.Shutdown(ctx)
}

// Handler exposes the proxy's handler for tests.
func (p *Proxy) Handler() http.Handler {
	return p.routes()
}

func (p *Proxy) handle(w http.ResponseWriter, r *http.Request) {
	// API traffic is cross-origin: pass through, never cache.
	if strings.HasPrefix(r.URL.Path, apiPrefix) {
		if p.api == nil {
			http.Error(w, "api base not configured", http.StatusBadGateway)
			return
		}
		p.api.ServeHTTP(w, r)
		return
	}

	path := r.URL.Path

	// Cache first: a stored copy wins over the network.
	entry, ok, err := p.store.Get(path)
	if err != nil {
		slog.Warn("cache: lookup failed", "path", path, "err", err)
	}
	if ok {
		serveEntry(w, entry)
		return
	}

	body, contentType, err := p.fetchOrigin(r.Context(), path)
	if err != nil {
		// Nothing cached and the network is gone: the request fails,
		// no synthetic fallback.
		slog.Warn("cache: origin fetch failed", "path", path, "err", err)
		http.Error(w, "origin unreachable", http.StatusBadGateway)
		return
	}

	if err := p.store.Put(path, contentType, body); err != nil {
		slog.Warn("cache: store failed", "path", path, "err", err)
	}
	serveEntry(w, Entry{ContentType: contentType, Body: body})
}

func serveEntry(w http.ResponseWriter, e Entry) {
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	w.Write(e.Body)
}

// fetchOrigin fetches one same-origin path from the live deployment.
func (p *Proxy) fetchOrigin(ctx context.Context, path string) ([]byte, string, error) {
	target := *p.config.Origin
	target.Path = strings.TrimRight(target.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("origin returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read origin response: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
