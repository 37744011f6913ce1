package http

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"

	apierrors "twstock/internal/errors"
	"twstock/internal/files"
	"twstock/internal/middleware"
)

// noCacheExts are the frontend asset types served uncached in debug mode.
var noCacheExts = map[string]bool{".js": true, ".css": true, ".html": true}

// ServeMainApp serves index.html from webDir.
func ServeMainApp(webDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexPath := filepath.Join(webDir, "index.html")
		if _, err := os.Stat(indexPath); err != nil {
			apierrors.ProblemFromStatus(http.StatusNotFound, "Main application page not found", "").Write(w)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeFile(w, r, indexPath)
	}
}

// ServeFavicon serves favicon.ico from webDir, or an empty JSON object when
// there is none so browsers stop asking.
func ServeFavicon(webDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iconPath := filepath.Join(webDir, "favicon.ico")
		if _, err := os.Stat(iconPath); err != nil {
			render.JSON(w, r, map[string]any{})
			return
		}
		http.ServeFile(w, r, iconPath)
	}
}

// StaticFiles serves webDir under prefix. A directory request serves its
// index.html. In debug mode frontend assets are sent with no-cache headers.
func StaticFiles(prefix, webDir string, debug bool) http.Handler {
	fsrv := http.StripPrefix(prefix, http.FileServer(http.Dir(webDir)))
	if !debug {
		return fsrv
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if noCacheExts[path.Ext(r.URL.Path)] {
			middleware.NoCache(fsrv).ServeHTTP(w, r)
			return
		}
		fsrv.ServeHTTP(w, r)
	})
}

// DataFiles serves the raw table files of dataDir under prefix, read-only.
// Only table files are served and directories are never listed.
func DataFiles(prefix, dataDir string) http.Handler {
	fsrv := http.StripPrefix(prefix, http.FileServer(tableOnlyFS{http.Dir(dataDir)}))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			apierrors.ProblemFromStatus(http.StatusMethodNotAllowed, "data files are read-only", "").Write(w)
			return
		}
		if path.Ext(r.URL.Path) != files.TableExt {
			apierrors.ProblemFromStatus(http.StatusNotFound, "The requested resource was not found", "").Write(w)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		fsrv.ServeHTTP(w, r)
	})
}

// tableOnlyFS hides everything but regular table files.
type tableOnlyFS struct {
	fs http.FileSystem
}

func (t tableOnlyFS) Open(name string) (http.File, error) {
	if !strings.HasSuffix(name, files.TableExt) {
		return nil, fs.ErrNotExist
	}
	f, err := t.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, errors.Join(fs.ErrNotExist, errors.New(name+" is not a regular file"))
	}
	return f, nil
}
