package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestServeMainApp(t *testing.T) {
	dir := t.TempDir()

	w := get(ServeMainApp(dir), "/")
	assert.Equal(t, http.StatusNotFound, w.Code)

	writeFile(t, filepath.Join(dir, "index.html"), "<html>台股</html>")
	w = get(ServeMainApp(dir), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "台股")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestServeFavicon(t *testing.T) {
	dir := t.TempDir()

	w := get(ServeFavicon(dir), "/favicon.ico")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	writeFile(t, filepath.Join(dir, "favicon.ico"), "ico")
	w = get(ServeFavicon(dir), "/favicon.ico")
	assert.Equal(t, "ico", w.Body.String())
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "js", "app.js"), "console.log(1)")

	w := get(StaticFiles("/static", dir, false), "/static/js/app.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Cache-Control"))

	w = get(StaticFiles("/static", dir, true), "/static/js/app.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestDataFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stock", "2330.csv"), "Date,Close\n20240102,590\n")
	writeFile(t, filepath.Join(dir, "stock", "notes.txt"), "secret")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stock", "dir.csv"), 0755))
	h := DataFiles("/data", dir)

	w := get(h, "/data/stock/2330.csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Date,Close\n20240102,590\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	assert.Equal(t, http.StatusNotFound, get(h, "/data/stock/notes.txt").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/data/stock/").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/data/stock/dir.csv").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/data/stock/missing.csv").Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/data/stock/2330.csv", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
