package catalog

import (
	"context"
	"mime/multipart"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/uploads"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// BookCommand is the decoded body of a book create or update, whichever
// media type it arrived in.
type BookCommand struct {
	Title            string                `json:"title" validate:"required,max=512"`
	ISBN             string                `json:"isbn" validate:"required,max=32"`
	PublishedYear    int                   `json:"publishedYear" validate:"required"`
	Description      *string               `json:"description" validate:"omitempty,max=20000"`
	AuthorID         string                `json:"authorId" validate:"required"`
	Cover            *multipart.FileHeader `json:"-"`
	KeepCurrentCover bool                  `json:"keepCurrentCover"`
}

type BookService struct {
	store   BookStore
	assets  AssetStore
	discard AssetDiscarder
}

func NewBookService(store BookStore, assets AssetStore, discard AssetDiscarder) *BookService {
	return &BookService{store: store, assets: assets, discard: discard}
}

func (s *BookService) List(ctx context.Context) ([]entities.Book, error) {
	return s.store.List(ctx)
}

func (s *BookService) Get(ctx context.Context, id string) (*entities.Book, error) {
	return s.store.Get(ctx, id)
}

func (s *BookService) Create(ctx context.Context, cmd BookCommand) (*entities.Book, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	cover, err := saveUpload(s.assets, uploads.KindBook, cmd.Cover)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:         cmd.Title,
		ISBN:          cmd.ISBN,
		PublishedYear: cmd.PublishedYear,
		Description:   cmd.Description,
		AuthorID:      cmd.AuthorID,
		CoverImage:    cover,
	}
	if err := s.store.Create(ctx, book); err != nil {
		s.discard.Discard(detach(ctx), urls(cover)...)
		return nil, err
	}
	return book, nil
}

func (s *BookService) Update(ctx context.Context, id string, cmd BookCommand) (*entities.Book, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	uploaded, err := saveUpload(s.assets, uploads.KindBook, cmd.Cover)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		ID:            id,
		Title:         cmd.Title,
		ISBN:          cmd.ISBN,
		PublishedYear: cmd.PublishedYear,
		Description:   cmd.Description,
		AuthorID:      cmd.AuthorID,
		CoverImage:    uploaded,
	}
	stale, err := s.store.Update(ctx, book, cmd.KeepCurrentCover && uploaded == nil)
	if err != nil {
		s.discard.Discard(detach(ctx), urls(uploaded)...)
		return nil, err
	}

	s.discard.Discard(detach(ctx), stale...)
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	assets, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.discard.Discard(detach(ctx), assets...)
	return nil
}
