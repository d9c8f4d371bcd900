// Package catalog holds the business operations on authors and books.
//
// Controllers decode requests into the command structs below and call a
// service; the service validates, stores any upload, makes exactly one
// repository call and then discards uploads that no row references anymore.
package catalog

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/uploads"
)

const CodeUploadFailed = "UPLOAD_FAILED"

// AuthorStore is the persistence surface the author service needs.
type AuthorStore interface {
	List(ctx context.Context) ([]entities.Author, error)
	Get(ctx context.Context, id string) (*entities.Author, error)
	Create(ctx context.Context, author *entities.Author) error
	// Update leaves the stored photo alone when keepPhoto is set and
	// returns the upload URLs the write left unreferenced.
	Update(ctx context.Context, author *entities.Author, keepPhoto bool) ([]string, error)
	Delete(ctx context.Context, id string) ([]string, error)
}

// BookStore is the persistence surface the book service needs.
type BookStore interface {
	List(ctx context.Context) ([]entities.Book, error)
	Get(ctx context.Context, id string) (*entities.Book, error)
	Create(ctx context.Context, book *entities.Book) error
	Update(ctx context.Context, book *entities.Book, keepCover bool) ([]string, error)
	Delete(ctx context.Context, id string) ([]string, error)
}

// AssetStore persists uploaded files and returns their public URL.
type AssetStore interface {
	Save(kind uploads.Kind, file *multipart.FileHeader) (string, error)
}

// AssetDiscarder removes uploads that are no longer referenced. Failures
// are the discarder's to log; callers never see them.
type AssetDiscarder interface {
	Discard(ctx context.Context, urls ...string)
}

// AssetRemover deletes a single stored upload.
type AssetRemover interface {
	Remove(url string) error
}

// SyncDiscarder removes files inline. It is used when the task queue is
// disabled.
type SyncDiscarder struct {
	Remover AssetRemover
}

func (d SyncDiscarder) Discard(_ context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := d.Remover.Remove(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to discard upload")
		}
	}
}

// hasFile reports whether a multipart field actually carried a file.
func hasFile(file *multipart.FileHeader) bool {
	return file != nil && file.Size > 0
}

// saveUpload stores file if present. It returns nil when there is nothing
// to store.
func saveUpload(assets AssetStore, kind uploads.Kind, file *multipart.FileHeader) (*string, error) {
	if !hasFile(file) {
		return nil, nil
	}
	url, err := assets.Save(kind, file)
	if err != nil {
		return nil, apperr.New(http.StatusInternalServerError, CodeUploadFailed, "Failed to store upload").Wrap(err)
	}
	return &url, nil
}

func urls(p *string) []string {
	if p == nil {
		return nil
	}
	return []string{*p}
}

// detach keeps request values but drops cancellation, so cleanup that runs
// after a commit is not cut short by the client going away.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
