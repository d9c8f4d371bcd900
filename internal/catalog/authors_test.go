package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type mockAuthorStore struct {
	authors   map[string]*entities.Author
	createErr error
	updateErr error
	deleted   []string
	assets    []string
	updated   *entities.Author
}

func newMockAuthorStore(authors ...*entities.Author) *mockAuthorStore {
	m := &mockAuthorStore{authors: map[string]*entities.Author{}}
	for _, a := range authors {
		m.authors[a.ID] = a
	}
	return m
}

func (m *mockAuthorStore) List(ctx context.Context) ([]entities.Author, error) {
	var out []entities.Author
	for _, a := range m.authors {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAuthorStore) Get(ctx context.Context, id string) (*entities.Author, error) {
	a, ok := m.authors[id]
	if !ok {
		return nil, apperr.NotFound("Author")
	}
	copied := *a
	return &copied, nil
}

func (m *mockAuthorStore) Create(ctx context.Context, author *entities.Author) error {
	if m.createErr != nil {
		return m.createErr
	}
	author.ID = "new-id"
	m.authors[author.ID] = author
	return nil
}

func (m *mockAuthorStore) Update(ctx context.Context, author *entities.Author, keepPhoto bool) ([]string, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	current, ok := m.authors[author.ID]
	if !ok {
		return nil, apperr.NotFound("Author")
	}
	var stale []string
	if keepPhoto {
		author.Photo = current.Photo
	} else {
		stale = database.ReplacedAsset(current.Photo, author.Photo)
	}
	m.updated = author
	m.authors[author.ID] = author
	return stale, nil
}

func (m *mockAuthorStore) Delete(ctx context.Context, id string) ([]string, error) {
	if _, ok := m.authors[id]; !ok {
		return nil, apperr.NotFound("Author")
	}
	delete(m.authors, id)
	m.deleted = append(m.deleted, id)
	return m.assets, nil
}

func TestAuthorService_Create_ValidatesBeforeAnything(t *testing.T) {
	store := newMockAuthorStore()
	assets := &mockAssetStore{}
	svc := NewAuthorService(store, assets, &recordingDiscarder{})

	_, err := svc.Create(context.Background(), AuthorCommand{Photo: upload("a.jpg")})

	var tagged *apperr.Error
	require.True(t, errors.As(err, &tagged))
	assert.Equal(t, apperr.KindValidation, tagged.Kind)
	require.Len(t, tagged.Issues, 2)
	assert.Equal(t, []string{"name"}, tagged.Issues[0].Path)
	assert.Equal(t, []string{"email"}, tagged.Issues[1].Path)
	assert.Empty(t, assets.saved, "no upload stored when validation fails")
	assert.Empty(t, store.authors)
}

func TestAuthorService_Create_WithPhoto(t *testing.T) {
	store := newMockAuthorStore()
	assets := &mockAssetStore{}
	svc := NewAuthorService(store, assets, &recordingDiscarder{})

	author, err := svc.Create(context.Background(), AuthorCommand{
		Name:  "Ann",
		Email: "ann@example.com",
		Photo: upload("ann.jpg"),
	})

	require.NoError(t, err)
	require.NotNil(t, author.Photo)
	assert.Equal(t, assets.saved[0], *author.Photo)
}

func TestAuthorService_Create_DiscardsUploadOnFailure(t *testing.T) {
	store := newMockAuthorStore()
	store.createErr = apperr.Persistence(apperr.UniqueViolation, nil).OnField("email")
	assets := &mockAssetStore{}
	discard := &recordingDiscarder{}
	svc := NewAuthorService(store, assets, discard)

	_, err := svc.Create(context.Background(), AuthorCommand{Name: "Ann", Email: "ann@example.com", Photo: upload("ann.jpg")})

	assert.Equal(t, apperr.CodeDuplicate, apperr.Resolve(err).Code)
	assert.Equal(t, assets.saved, discard.discarded)
}

func TestAuthorService_Update_KeepCurrentPhoto(t *testing.T) {
	store := newMockAuthorStore(&entities.Author{ID: "a1", Name: "Ann", Email: "ann@example.com", Photo: strPtr("/uploads/authors/old.jpg")})
	discard := &recordingDiscarder{}
	svc := NewAuthorService(store, &mockAssetStore{}, discard)

	author, err := svc.Update(context.Background(), "a1", AuthorCommand{Name: "Ann B", Email: "ann@example.com", KeepCurrentPhoto: true})

	require.NoError(t, err)
	require.NotNil(t, author.Photo)
	assert.Equal(t, "/uploads/authors/old.jpg", *author.Photo)
	assert.Empty(t, discard.discarded)
}

func TestAuthorService_Update_NewPhotoReplacesOld(t *testing.T) {
	store := newMockAuthorStore(&entities.Author{ID: "a1", Name: "Ann", Email: "ann@example.com", Photo: strPtr("/uploads/authors/old.jpg")})
	assets := &mockAssetStore{}
	discard := &recordingDiscarder{}
	svc := NewAuthorService(store, assets, discard)

	author, err := svc.Update(context.Background(), "a1", AuthorCommand{Name: "Ann", Email: "ann@example.com", Photo: upload("new.jpg"), KeepCurrentPhoto: true})

	require.NoError(t, err)
	assert.Equal(t, assets.saved[0], *author.Photo)
	assert.Equal(t, []string{"/uploads/authors/old.jpg"}, discard.discarded)
}

func TestAuthorService_Update_ClearsPhoto(t *testing.T) {
	store := newMockAuthorStore(&entities.Author{ID: "a1", Name: "Ann", Email: "ann@example.com", Photo: strPtr("/uploads/authors/old.jpg")})
	discard := &recordingDiscarder{}
	svc := NewAuthorService(store, &mockAssetStore{}, discard)

	author, err := svc.Update(context.Background(), "a1", AuthorCommand{Name: "Ann", Email: "ann@example.com"})

	require.NoError(t, err)
	assert.Nil(t, author.Photo)
	assert.Equal(t, []string{"/uploads/authors/old.jpg"}, discard.discarded)
}

func TestAuthorService_Update_NotFoundStoresNothing(t *testing.T) {
	assets := &mockAssetStore{}
	svc := NewAuthorService(newMockAuthorStore(), assets, &recordingDiscarder{})

	_, err := svc.Update(context.Background(), "missing", AuthorCommand{Name: "Ann", Email: "ann@example.com", Photo: upload("x.jpg")})

	assert.Equal(t, apperr.CodeNotFound, apperr.Resolve(err).Code)
	assert.Empty(t, assets.saved)
}

func TestAuthorService_Update_FailureKeepsOldPhoto(t *testing.T) {
	store := newMockAuthorStore(&entities.Author{ID: "a1", Name: "Ann", Email: "ann@example.com", Photo: strPtr("/uploads/authors/old.jpg")})
	store.updateErr = apperr.Persistence(apperr.UniqueViolation, nil).OnField("email")
	assets := &mockAssetStore{}
	discard := &recordingDiscarder{}
	svc := NewAuthorService(store, assets, discard)

	_, err := svc.Update(context.Background(), "a1", AuthorCommand{Name: "Ann", Email: "taken@example.com", Photo: upload("new.jpg")})

	require.Error(t, err)
	assert.Equal(t, assets.saved, discard.discarded, "only the fresh upload is discarded")
}

func TestAuthorService_Delete(t *testing.T) {
	store := newMockAuthorStore(&entities.Author{ID: "a1"})
	store.assets = []string{"/uploads/authors/a.jpg", "/uploads/books/b.png"}
	discard := &recordingDiscarder{}
	svc := NewAuthorService(store, &mockAssetStore{}, discard)

	require.NoError(t, svc.Delete(context.Background(), "a1"))
	assert.Equal(t, []string{"a1"}, store.deleted)
	assert.Equal(t, store.assets, discard.discarded)

	err := svc.Delete(context.Background(), "a1")
	assert.Equal(t, "Author not found", apperr.Resolve(err).Message)
}
