// internal/app/features/errors/store.go
package errors

import (
	stderrors "errors"
	"net/http"

	subscriptionstore "github.com/dalemusser/scripthub/internal/app/store/subscriptions"
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
)

// WriteStoreError maps a workshop store error onto the matching HTTP
// response: missing documents become 404s, refusals become 403s with the
// store's user-facing reason, validation failures become 400s, and duplicate
// subscription races become 409s. Anything else is treated as a server
// error and logged via LogServerError with logMsg.
func (e *ErrorLogger) WriteStoreError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	switch {
	case workshopstore.IsNotFound(err):
		NotFound(w, err.Error())
	case workshopstore.IsNotAllowed(err):
		Forbidden(w, err.Error())
	case stderrors.Is(err, workshopstore.ErrInvalidName),
		stderrors.Is(err, workshopstore.ErrInvalidPublishState):
		BadRequest(w, err.Error())
	case stderrors.Is(err, subscriptionstore.ErrDuplicateSubscription):
		Conflict(w, err.Error())
	default:
		e.LogServerError(w, r, logMsg, err, "A database error occurred.")
	}
}
