package controllers

import (
	"net/http"

	"github.com/campusshelf/library-backend/api/responses"
	"github.com/campusshelf/library-backend/internal/reminders"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/logger"
)

// AdminSendReminders runs one reminder pass on demand. Partial failures are
// reported as an error carrying the run summary.
func AdminSendReminders(dispatcher reminders.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dispatcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder dispatcher unavailable"))
			return
		}
		summary, err := dispatcher.Run(r.Context())
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				typed.WithDetails(summary)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
