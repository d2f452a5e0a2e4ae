package controllers

import (
	"net/http"
	"strings"

	"github.com/campusshelf/library-backend/api/responses"
	"github.com/campusshelf/library-backend/api/validators"
	"github.com/campusshelf/library-backend/internal/books"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/logger"
)

type createBookBody struct {
	Title         string  `json:"title" validate:"required,max=300"`
	Author        string  `json:"author" validate:"required,max=200"`
	Genre         string  `json:"genre" validate:"required,max=100"`
	ISBN          *string `json:"isbn" validate:"omitempty,max=20"`
	Publisher     *string `json:"publisher" validate:"omitempty,max=200"`
	PublishedYear *int    `json:"published_year" validate:"omitempty,gte=0,lte=9999"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	CoverURL      *string `json:"cover_url" validate:"omitempty,url"`
	TotalCopies   int     `json:"total_copies" validate:"gte=0"`
}

type updateBookBody struct {
	Title         *string `json:"title" validate:"omitempty,max=300"`
	Author        *string `json:"author" validate:"omitempty,max=200"`
	Genre         *string `json:"genre" validate:"omitempty,max=100"`
	ISBN          *string `json:"isbn" validate:"omitempty,max=20"`
	Publisher     *string `json:"publisher" validate:"omitempty,max=200"`
	PublishedYear *int    `json:"published_year" validate:"omitempty,gte=0,lte=9999"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	CoverURL      *string `json:"cover_url" validate:"omitempty,url"`
	TotalCopies   *int    `json:"total_copies" validate:"omitempty,gte=0"`
	IsActive      *bool   `json:"is_active"`
}

// ListBooks serves the catalog with optional ?q=, ?genre= and ?available= filters.
func ListBooks(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		available, err := validators.ParseQueryBool(r, "available", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		page, err := svc.ListBooks(r.Context(), books.ListBooksInput{
			Query:         validators.SanitizeString(query.Get("q"), 200),
			Genre:         validators.SanitizeString(query.Get("genre"), 100),
			AvailableOnly: available,
			Cursor:        strings.TrimSpace(query.Get("cursor")),
			Limit:         limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetBook(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		bookID, err := validators.ParseURLUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		book, err := svc.GetBook(r.Context(), bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

func ListGenres(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		genres, err := svc.ListGenres(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, genres)
	}
}

func AdminCreateBook(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		var body createBookBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.CreateBook(r.Context(), books.CreateBookInput{
			Title:         body.Title,
			Author:        body.Author,
			Genre:         body.Genre,
			ISBN:          validators.NormalizeISBN(body.ISBN),
			Publisher:     body.Publisher,
			PublishedYear: body.PublishedYear,
			Description:   body.Description,
			CoverURL:      body.CoverURL,
			TotalCopies:   body.TotalCopies,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

func AdminUpdateBook(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		bookID, err := validators.ParseURLUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateBookBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.UpdateBook(r.Context(), bookID, books.UpdateBookInput{
			Title:         body.Title,
			Author:        body.Author,
			Genre:         body.Genre,
			ISBN:          validators.NormalizeISBN(body.ISBN),
			Publisher:     body.Publisher,
			PublishedYear: body.PublishedYear,
			Description:   body.Description,
			CoverURL:      body.CoverURL,
			TotalCopies:   body.TotalCopies,
			IsActive:      body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// AdminDeactivateBook soft-deletes a title.
func AdminDeactivateBook(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		bookID, err := validators.ParseURLUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeactivateBook(r.Context(), bookID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}
