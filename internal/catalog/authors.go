package catalog

import (
	"context"
	"mime/multipart"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/uploads"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// AuthorCommand is the decoded body of an author create or update.
type AuthorCommand struct {
	Name             string                `json:"name" validate:"required,max=255"`
	Email            string                `json:"email" validate:"required,email,max=255"`
	Bio              *string               `json:"bio" validate:"omitempty,max=10000"`
	Photo            *multipart.FileHeader `json:"-"`
	KeepCurrentPhoto bool                  `json:"keepCurrentPhoto"`
}

type AuthorService struct {
	store   AuthorStore
	assets  AssetStore
	discard AssetDiscarder
}

func NewAuthorService(store AuthorStore, assets AssetStore, discard AssetDiscarder) *AuthorService {
	return &AuthorService{store: store, assets: assets, discard: discard}
}

func (s *AuthorService) List(ctx context.Context) ([]entities.Author, error) {
	return s.store.List(ctx)
}

func (s *AuthorService) Get(ctx context.Context, id string) (*entities.Author, error) {
	return s.store.Get(ctx, id)
}

func (s *AuthorService) Create(ctx context.Context, cmd AuthorCommand) (*entities.Author, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	photo, err := saveUpload(s.assets, uploads.KindAuthor, cmd.Photo)
	if err != nil {
		return nil, err
	}

	author := &entities.Author{
		Name:  cmd.Name,
		Email: cmd.Email,
		Bio:   cmd.Bio,
		Photo: photo,
	}
	if err := s.store.Create(ctx, author); err != nil {
		s.discard.Discard(detach(ctx), urls(photo)...)
		return nil, err
	}
	return author, nil
}

func (s *AuthorService) Update(ctx context.Context, id string, cmd AuthorCommand) (*entities.Author, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	uploaded, err := saveUpload(s.assets, uploads.KindAuthor, cmd.Photo)
	if err != nil {
		return nil, err
	}

	author := &entities.Author{
		ID:    id,
		Name:  cmd.Name,
		Email: cmd.Email,
		Bio:   cmd.Bio,
		Photo: uploaded,
	}
	stale, err := s.store.Update(ctx, author, cmd.KeepCurrentPhoto && uploaded == nil)
	if err != nil {
		s.discard.Discard(detach(ctx), urls(uploaded)...)
		return nil, err
	}

	s.discard.Discard(detach(ctx), stale...)
	return author, nil
}

// Delete removes the author together with their books and discards every
// upload those rows owned.
func (s *AuthorService) Delete(ctx context.Context, id string) error {
	assets, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.discard.Discard(detach(ctx), assets...)
	return nil
}
