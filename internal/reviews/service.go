package reviews

import (
	"context"
	"strings"

	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/db/models"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type returnChecker interface {
	HasReturned(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
}

// Service manages book reviews. Only readers who returned a book may review it,
// and every write refreshes the book's average rating.
type Service interface {
	ListForBook(ctx context.Context, bookID uuid.UUID, cursor string, limit int) (pagination.Page[ReviewDTO], error)
	CanReview(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	Create(ctx context.Context, userID, bookID uuid.UUID, input ReviewInput) (*ReviewDTO, error)
	Update(ctx context.Context, reviewID uuid.UUID, actor Actor, input ReviewInput) (*ReviewDTO, error)
	Delete(ctx context.Context, reviewID uuid.UUID, actor Actor) error
}

type service struct {
	repo    *Repository
	books   *books.Repository
	returns returnChecker
	tx      txRunner
	logg    *logger.Logger
}

func NewService(repo *Repository, bookRepo *books.Repository, returns returnChecker, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	if bookRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book repo is required")
	}
	if returns == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrow history is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, books: bookRepo, returns: returns, tx: tx, logg: logg}, nil
}

func (s *service) ListForBook(ctx context.Context, bookID uuid.UUID, cursor string, limit int) (pagination.Page[ReviewDTO], error) {
	if bookID == uuid.Nil {
		return pagination.Page[ReviewDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	parsed, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return pagination.Page[ReviewDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByBook(ctx, bookID, parsed, limit)
	if err != nil {
		return pagination.Page[ReviewDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	dtos := make([]ReviewDTO, len(rows))
	for i := range rows {
		dtos[i] = NewReviewDTO(&rows[i])
	}
	return pagination.BuildPage(dtos, limit, func(r ReviewDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	}), nil
}

func (s *service) CanReview(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	ok, err := s.returns.HasReturned(ctx, userID, bookID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check borrow history")
	}
	return ok, nil
}

func (s *service) Create(ctx context.Context, userID, bookID uuid.UUID, input ReviewInput) (*ReviewDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	allowed, err := s.CanReview(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only review books you have borrowed and returned")
	}

	review := &models.Review{
		UserID:  userID,
		BookID:  bookID,
		Rating:  input.Rating,
		Comment: normalizeComment(input.Comment),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, review); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "you have already reviewed this book")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}
		return s.refreshRating(ctx, tx, bookID)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, review.ID)
}

func (s *service) Update(ctx context.Context, reviewID uuid.UUID, actor Actor, input ReviewInput) (*ReviewDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author can edit a review")
	}

	review.Rating = input.Rating
	review.Comment = normalizeComment(input.Comment)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
		}
		return s.refreshRating(ctx, tx, review.BookID)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, review.ID)
}

// Delete removes a review. Authors may delete their own; admins may moderate any.
func (s *service) Delete(ctx context.Context, reviewID uuid.UUID, actor Actor) error {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	if !actor.Admin && review.UserID != actor.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author can delete a review")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, review.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return s.refreshRating(ctx, tx, review.BookID)
	})
	if err != nil {
		return err
	}

	if actor.Admin && review.UserID != actor.ID {
		logCtx := s.logg.WithFields(s.logg.WithBookID(ctx, review.BookID.String()), map[string]any{
			"review_id": review.ID.String(),
			"admin_id":  actor.ID.String(),
		})
		s.logg.Info(logCtx, "review removed by admin")
	}
	return nil
}

func (s *service) refreshRating(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	avg, err := s.repo.WithTx(tx).AverageRating(ctx, bookID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average rating")
	}
	if err := s.books.WithTx(tx).UpdateRating(ctx, bookID, avg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book rating")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*ReviewDTO, error) {
	review, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewReviewDTO(review)
	return &dto, nil
}

func validateInput(input ReviewInput) error {
	if input.Rating < MinRating || input.Rating > MaxRating {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "rating must be between %d and %d", MinRating, MaxRating).
			WithDetails(map[string]any{"rating": input.Rating})
	}
	return nil
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
