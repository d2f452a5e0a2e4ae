package books

import (
	"context"
	"strings"

	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/db/models"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog reads and admin edits.
type Service interface {
	ListBooks(ctx context.Context, input ListBooksInput) (pagination.Page[BookDTO], error)
	GetBook(ctx context.Context, id uuid.UUID) (*BookDTO, error)
	ListGenres(ctx context.Context) ([]string, error)
	CreateBook(ctx context.Context, input CreateBookInput) (*BookDTO, error)
	UpdateBook(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*BookDTO, error)
	DeactivateBook(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds a book service with the required dependencies.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book repo is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListBooks(ctx context.Context, input ListBooksInput) (pagination.Page[BookDTO], error) {
	cursor, err := pagination.ParseCursor(strings.TrimSpace(input.Cursor))
	if err != nil {
		return pagination.Page[BookDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, input, cursor)
	if err != nil {
		return pagination.Page[BookDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	dtos := make([]BookDTO, len(rows))
	for i := range rows {
		dtos[i] = NewBookDTO(&rows[i])
	}
	return pagination.BuildPage(dtos, input.Limit, func(b BookDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: b.CreatedAt, ID: b.ID}
	}), nil
}

func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*BookDTO, error) {
	book, err := s.load(ctx, s.repo.FindByID, id)
	if err != nil {
		return nil, err
	}
	dto := NewBookDTO(book)
	return &dto, nil
}

func (s *service) ListGenres(ctx context.Context) ([]string, error) {
	genres, err := s.repo.Genres(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list genres")
	}
	return genres, nil
}

func (s *service) CreateBook(ctx context.Context, input CreateBookInput) (*BookDTO, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	genre := strings.TrimSpace(input.Genre)
	if title == "" || author == "" || genre == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title, author and genre are required")
	}
	if input.TotalCopies < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_copies must not be negative")
	}

	book := &models.Book{
		Title:           title,
		Author:          author,
		Genre:           genre,
		ISBN:            trimmedOrNil(input.ISBN),
		Publisher:       input.Publisher,
		PublishedYear:   input.PublishedYear,
		Description:     input.Description,
		CoverURL:        input.CoverURL,
		Rating:          decimal.Zero,
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a book with this isbn already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create book")
	}
	dto := NewBookDTO(book)
	return &dto, nil
}

// UpdateBook applies a partial edit under the book's row lock and writes only
// the columns the input names. A new total_copies re-derives available_copies
// from the copies on loan at write time; other edits never touch the counters,
// so an approve or return committing alongside is not overwritten.
func (s *service) UpdateBook(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*BookDTO, error) {
	if input.TotalCopies != nil && *input.TotalCopies < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_copies must not be negative")
	}
	fields, err := changedFields(input)
	if err != nil {
		return nil, err
	}

	var updated *models.Book
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, txRepo.FindForUpdate, id); err != nil {
			return err
		}
		if total := input.TotalCopies; total != nil {
			borrowed, err := txRepo.CountBorrowed(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count borrowed copies")
			}
			if int64(*total) < borrowed {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "total_copies cannot be below the %d copies currently borrowed", borrowed).
					WithDetails(map[string]any{"borrowed_copies": borrowed})
			}
			fields["total_copies"] = *total
			fields["available_copies"] = availableAfterResize(id, *total)
		}
		if err := txRepo.UpdateFields(ctx, id, fields); err != nil {
			switch {
			case db.IsUniqueViolation(err, ""):
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a book with this isbn already exists")
			case db.IsCheckViolation(err):
				return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "copy counts changed while updating; retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
		}
		book, err := s.load(ctx, txRepo.FindByID, id)
		if err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
	}
	dto := NewBookDTO(updated)
	return &dto, nil
}

// DeactivateBook hides the book from the catalog; loan history stays intact.
func (s *service) DeactivateBook(ctx context.Context, id uuid.UUID) error {
	inactive := false
	_, err := s.UpdateBook(ctx, id, UpdateBookInput{IsActive: &inactive})
	return err
}

func (s *service) load(ctx context.Context, find func(context.Context, uuid.UUID) (*models.Book, error), id uuid.UUID) (*models.Book, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	book, err := find(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return book, nil
}

// changedFields maps the non-nil descriptive fields of input to their columns.
// Copy counts are handled by UpdateBook.
func changedFields(input UpdateBookInput) (map[string]any, error) {
	fields := map[string]any{}
	required := []struct {
		column string
		value  *string
	}{
		{"title", input.Title},
		{"author", input.Author},
		{"genre", input.Genre},
	}
	for _, f := range required {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s cannot be empty", f.column)
		}
		fields[f.column] = v
	}
	if input.ISBN != nil {
		fields["isbn"] = trimmedOrNil(input.ISBN)
	}
	if input.Publisher != nil {
		fields["publisher"] = input.Publisher
	}
	if input.PublishedYear != nil {
		fields["published_year"] = input.PublishedYear
	}
	if input.Description != nil {
		fields["description"] = input.Description
	}
	if input.CoverURL != nil {
		fields["cover_url"] = input.CoverURL
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	return fields, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
