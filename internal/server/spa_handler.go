package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SPAMiddleware serves the frontend from webDir for every request that is
// not an API, health or metrics call. Unknown paths such as /twitter or
// /youtube/accounts/x get index.html so the client router can take over.
func SPAMiddleware(next http.Handler, webDir string) http.Handler {
	indexPath := filepath.Join(webDir, "index.html")
	files := http.FileServer(http.Dir(webDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") ||
			r.URL.Path == "/healthz" ||
			r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if r.URL.Path == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		// path.Clean on a rooted path cannot climb above webDir.
		name := filepath.Join(webDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err != nil || info.IsDir() {
			http.ServeFile(w, r, indexPath)
			return
		}

		files.ServeHTTP(w, r)
	})
}
