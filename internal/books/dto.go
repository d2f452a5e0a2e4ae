package books

import (
	"time"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookDTO is the catalog payload returned to clients.
type BookDTO struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Genre           string          `json:"genre"`
	ISBN            *string         `json:"isbn,omitempty"`
	Publisher       *string         `json:"publisher,omitempty"`
	PublishedYear   *int            `json:"published_year,omitempty"`
	Description     *string         `json:"description,omitempty"`
	CoverURL        *string         `json:"cover_url,omitempty"`
	Rating          decimal.Decimal `json:"rating"`
	TotalCopies     int             `json:"total_copies"`
	AvailableCopies int             `json:"available_copies"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewBookDTO(book *models.Book) BookDTO {
	return BookDTO{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		Genre:           book.Genre,
		ISBN:            book.ISBN,
		Publisher:       book.Publisher,
		PublishedYear:   book.PublishedYear,
		Description:     book.Description,
		CoverURL:        book.CoverURL,
		Rating:          book.Rating.Round(2),
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
		IsActive:        book.IsActive,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

// CreateBookInput carries a new catalog entry. All copies start available.
type CreateBookInput struct {
	Title         string
	Author        string
	Genre         string
	ISBN          *string
	Publisher     *string
	PublishedYear *int
	Description   *string
	CoverURL      *string
	TotalCopies   int
}

// UpdateBookInput is a partial update; nil fields are left untouched.
type UpdateBookInput struct {
	Title         *string
	Author        *string
	Genre         *string
	ISBN          *string
	Publisher     *string
	PublishedYear *int
	Description   *string
	CoverURL      *string
	TotalCopies   *int
	IsActive      *bool
}

// ListBooksInput filters the catalog listing.
type ListBooksInput struct {
	Query           string
	Genre           string
	AvailableOnly   bool
	IncludeInactive bool
	Cursor          string
	Limit           int
}
