package webapi

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type WebUIConfig struct {
	Mode        string
	DevProxyURL string
	DistDir     string
}

// NewWebUIHandler serves the browser UI. "dist" serves a built SPA bundle,
// "dev" proxies to a running dev server, "builtin" serves the embedded
// fallback page.
func NewWebUIHandler(cfg WebUIConfig) (http.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "dist":
		dist := cfg.DistDir
		if dist == "" {
			return nil, fmt.Errorf("webui dist mode requires a dist dir")
		}
		return newSPAHandler(dist), nil
	case "dev":
		proxyURL := cfg.DevProxyURL
		if proxyURL == "" {
			proxyURL = "http://127.0.0.1:15173"
		}
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid dev proxy url: %w", err)
		}
		proxy := httputil.NewSingleHostReverseProxy(u)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, e error) {
			http.Error(w, "webui dev server unavailable", http.StatusBadGateway)
		}
		return proxy, nil
	default:
		return http.HandlerFunc(serveBuiltinPage), nil
	}
}

type spaHandler struct {
	dist string
}

func newSPAHandler(dist string) http.Handler {
	return &spaHandler{dist: dist}
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clean := filepath.Clean("/" + r.URL.Path)
	indexPath := filepath.Join(h.dist, "index.html")
	if clean == "/" {
		http.ServeFile(w, r, indexPath)
		return
	}
	candidate := filepath.Join(h.dist, strings.TrimPrefix(clean, "/"))
	if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
		http.ServeFile(w, r, candidate)
		return
	}
	http.ServeFile(w, r, indexPath)
}

func serveBuiltinPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(builtinPage))
}

const builtinPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>taskchat</title></head>
<body>
<h1>taskchat</h1>
<p>The API is up. Endpoints: <code>/api/tasks</code>, <code>/api/tasks/count</code>, <code>/api/ai</code>, <code>/ws</code>, <code>/healthz</code>.</p>
<p>Use the <code>taskchat chat</code> client or point a web frontend at this server.</p>
</body>
</html>
`
