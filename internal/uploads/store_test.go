package uploads

import (
	"bytes"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func TestNewStore_CreatesKindDirs(t *testing.T) {
	store := newTestStore(t)

	for _, dir := range []string{"authors", "books"} {
		info, err := os.Stat(filepath.Join(store.Root(), dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestStore_Save(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }

	url, err := store.Save(KindAuthor, fileHeader(t, "portrait.JPG", []byte("jpeg bytes")))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^/uploads/authors/author-1700000000123-\d+\.JPG$`), url)

	p, err := store.Path(url)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestStore_Save_UniqueNames(t *testing.T) {
	store := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		url, err := store.Save(KindBook, fileHeader(t, "cover.png", []byte("png")))
		require.NoError(t, err)
		assert.False(t, seen[url], "duplicate name %s", url)
		seen[url] = true
	}
}

func TestStore_Save_DropsSuspiciousExtension(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(KindBook, fileHeader(t, "cover.p/ng", []byte("x")))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^/uploads/books/book-\d+-\d+$`), url)
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(KindBook, fileHeader(t, "cover.png", []byte("png")))
	require.NoError(t, err)

	require.NoError(t, store.Remove(url))
	p, _ := store.Path(url)
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	assert.NoError(t, store.Remove(url))
}

func TestStore_Path_RejectsOutsideURLs(t *testing.T) {
	store := newTestStore(t)

	for _, url := range []string{
		"",
		"/etc/passwd",
		"/uploads/../catalog.db",
		"/uploads/authors/../../catalog.db",
		"/uploads/other/file.jpg",
		"/uploads/authors/",
		"/uploads/authors/.upload_tmp_123",
		"https://example.com/uploads/authors/a.jpg",
	} {
		_, err := store.Path(url)
		assert.True(t, errors.Is(err, ErrOutsideStore), "expected rejection for %q", url)
	}
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Save(KindAuthor, fileHeader(t, "a.jpg", []byte("a")))
	require.NoError(t, err)
	_, err = store.Save(KindBook, fileHeader(t, "b.jpg", []byte("b")))
	require.NoError(t, err)

	files, err := store.List(KindAuthor)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, a, files[0].URL)
	assert.False(t, files[0].ModTime.IsZero())
}
