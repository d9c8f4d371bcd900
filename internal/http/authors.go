package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// authorResponse is an author with its books always rendered as an array.
type authorResponse struct {
	entities.Author
	Books []entities.Book `json:"books"`
}

func newAuthorResponse(author entities.Author) authorResponse {
	books := author.Books
	if books == nil {
		books = []entities.Book{}
	}
	return authorResponse{Author: author, Books: books}
}

type AuthorsController struct {
	service AuthorService
}

func NewAuthorsController(service AuthorService) *AuthorsController {
	return &AuthorsController{service: service}
}

func (ac *AuthorsController) List(c *gin.Context) {
	authors, err := ac.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]authorResponse, 0, len(authors))
	for _, author := range authors {
		out = append(out, newAuthorResponse(author))
	}
	respondSuccess(c, out, "")
}

func (ac *AuthorsController) Get(c *gin.Context) {
	author, err := ac.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, newAuthorResponse(*author), "")
}

func (ac *AuthorsController) Create(c *gin.Context) {
	cmd, err := decodeAuthor(c, false)
	if err != nil {
		respondError(c, err)
		return
	}

	author, err := ac.service.Create(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, newAuthorResponse(*author))
}

func (ac *AuthorsController) Update(c *gin.Context) {
	cmd, err := decodeAuthor(c, true)
	if err != nil {
		respondError(c, err)
		return
	}

	author, err := ac.service.Update(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, newAuthorResponse(*author), "")
}

func (ac *AuthorsController) Delete(c *gin.Context) {
	if err := ac.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, nil, "Author deleted successfully")
}
