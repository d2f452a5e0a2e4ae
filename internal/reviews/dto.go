package reviews

import (
	"time"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	BookID       uuid.UUID `json:"book_id"`
	UserID       uuid.UUID `json:"user_id"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewReviewDTO(r *models.Review) ReviewDTO {
	dto := ReviewDTO{
		ID:        r.ID,
		BookID:    r.BookID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		dto.ReviewerName = r.User.Name
	}
	return dto
}

// ReviewInput carries the editable fields of a review.
type ReviewInput struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// Actor identifies the caller of a mutating review operation.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}
