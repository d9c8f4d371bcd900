// Package uploads stores user-supplied images in the public uploads tree.
//
// Files live under <root>/<kind>s/ and are addressed by the root-relative
// URL the HTTP layer serves them at, e.g. /uploads/authors/author-1700000000000-42.jpg.
// That URL is what gets persisted on the owning record.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// URLPrefix is the path the uploads tree is served under.
const URLPrefix = "/uploads"

// Kind names the owner type of an upload. It determines the subdirectory
// and the filename prefix.
type Kind string

const (
	KindAuthor Kind = "author"
	KindBook   Kind = "book"
)

func (k Kind) dir() string {
	return string(k) + "s"
}

// ErrOutsideStore is returned for URLs that do not point into the store.
var ErrOutsideStore = errors.New("path is outside the uploads store")

// File is a stored upload.
type File struct {
	URL     string
	ModTime time.Time
}

// Store handles files under a single uploads root.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore creates the uploads root and one subdirectory per kind.
func NewStore(root string) (*Store, error) {
	for _, kind := range []Kind{KindAuthor, KindBook} {
		if err := os.MkdirAll(filepath.Join(root, kind.dir()), 0755); err != nil {
			return nil, fmt.Errorf("create uploads dir: %w", err)
		}
	}
	return &Store{root: root, now: time.Now}, nil
}

// Root returns the uploads directory on disk.
func (s *Store) Root() string {
	return s.root
}

// Save writes the uploaded file under a fresh unique name and returns its URL.
func (s *Store) Save(kind Kind, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := s.filename(kind, file.Filename)
	dir := filepath.Join(s.root, kind.dir())

	// Write to a temp file in the same directory, then rename into place
	tmpFile, err := os.CreateTemp(dir, ".upload_tmp_")
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(URLPrefix, kind.dir(), name), nil
}

// Remove deletes the file behind a stored URL. A file that is already gone
// is not an error.
func (s *Store) Remove(url string) error {
	p, err := s.Path(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Path maps a stored URL to its location on disk.
func (s *Store) Path(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrOutsideStore, url)
	}
	rel = path.Clean(rel)
	dir, name := path.Split(rel)
	if name == "" || strings.HasPrefix(name, ".") || !isKindDir(strings.TrimSuffix(dir, "/")) {
		return "", fmt.Errorf("%w: %q", ErrOutsideStore, url)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// List returns the files stored for kind.
func (s *Store) List(kind Kind) ([]File, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, kind.dir()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			URL:     path.Join(URLPrefix, kind.dir(), entry.Name()),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// filename builds <kind>-<unix millis>-<random><ext>.
func (s *Store) filename(kind Kind, original string) string {
	return fmt.Sprintf("%s-%d-%d%s", kind, s.now().UnixMilli(), rand.IntN(1_000_000_001), extension(original))
}

// extension keeps the client's extension only if it is short and plain.
func extension(original string) string {
	ext := filepath.Ext(filepath.Base(original))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}

func isKindDir(dir string) bool {
	return dir == KindAuthor.dir() || dir == KindBook.dir()
}
