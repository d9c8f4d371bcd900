package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type BooksController struct {
	service BookService
}

func NewBooksController(service BookService) *BooksController {
	return &BooksController{service: service}
}

// List returns every book with a summary of its author.
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]entities.BookListing, 0, len(books))
	for _, book := range books {
		out = append(out, book.Listing())
	}
	respondSuccess(c, out, "")
}

func (bc *BooksController) Get(c *gin.Context) {
	book, err := bc.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, book, "")
}

func (bc *BooksController) Create(c *gin.Context) {
	cmd, err := decodeBook(c, false)
	if err != nil {
		respondError(c, err)
		return
	}

	book, err := bc.service.Create(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, book)
}

func (bc *BooksController) Update(c *gin.Context) {
	cmd, err := decodeBook(c, true)
	if err != nil {
		respondError(c, err)
		return
	}

	book, err := bc.service.Update(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, book, "")
}

func (bc *BooksController) Delete(c *gin.Context) {
	if err := bc.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, nil, "Book deleted successfully")
}
