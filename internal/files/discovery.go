package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// TableExt is the extension of table files.
const TableExt = ".csv"

// maxIDLen keeps id+TableExt within common file name limits.
const maxIDLen = 255 - len(TableExt)

// ValidID reports whether id can name a table file. Any UTF-8 text is
// accepted, 台積電 included, except empty or overlong ids, ids with path
// separators, volume colons or control characters, parent references, and
// leading dots.
func ValidID(id string) bool {
	if id == "" || len(id) > maxIDLen || !utf8.ValidString(id) {
		return false
	}
	if strings.HasPrefix(id, ".") || strings.Contains(id, "..") {
		return false
	}
	if strings.ContainsAny(id, `/\:`) || strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return false
	}
	return filepath.Base(id) == id
}

// TablePath returns the path of the table file for id inside dir.
func TablePath(dir, id string) string {
	return filepath.Join(dir, id+TableExt)
}

// FileInfo represents information about a discovered file
type FileInfo struct {
	ID      string    `json:"id"`
	Path    string    `json:"-"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// passed to its methods are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindCSVFiles finds all table files in dir, sorted by identifier. A missing
// directory holds no files.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), TableExt) {
			continue
		}
		id := name[:len(name)-len(TableExt)]
		if !ValidID(id) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			ID:      id,
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ID < files[j].ID
	})

	return files, nil
}

// ListIDs returns the identifiers of the table files in dir in ascending
// order.
func (d *Discovery) ListIDs(dir string) ([]string, error) {
	files, err := d.FindCSVFiles(dir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return ids, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
