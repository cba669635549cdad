package handlers

import (
	"errors"
	"net/http"

	"github.com/usermgmt/apiserver/internal/logger"
	"github.com/usermgmt/apiserver/internal/services"
	"github.com/usermgmt/apiserver/internal/validators"
)

var (
	ErrMalformedRequest     = errors.New("malformed request body")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidFilter        = errors.New("invalid deleted filter")
)

const (
	msgValidationFailed = "validation failed"
	msgMalformedRequest = "Request body is missing or malformed."
	msgUnsupportedMedia = "Unsupported Media Type. Please ensure your Content-Type is correct."
	msgUsernameTaken    = "username already exists"
	msgInternal         = "internal server error"
)

// errorStatuses is checked in order, so wrapped errors must come before the
// errors they wrap.
var errorStatuses = []struct {
	target  error
	status  int
	message string
}{
	{ErrMalformedRequest, http.StatusBadRequest, msgMalformedRequest},
	{ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, msgUnsupportedMedia},
	{ErrInvalidUserID, http.StatusBadRequest, ErrInvalidUserID.Error()},
	{ErrInvalidFilter, http.StatusBadRequest, ErrInvalidFilter.Error()},
	{services.ErrNotFound, http.StatusNotFound, services.ErrNotFound.Error()},
	{services.ErrUsernameTaken, http.StatusConflict, msgUsernameTaken},
	{services.ErrBusinessRule, http.StatusConflict, services.ErrBusinessRule.Error()},
}

func statusFromError(err error) (int, string) {
	for _, entry := range errorStatuses {
		if errors.Is(err, entry.target) {
			return entry.status, entry.message
		}
	}
	return http.StatusInternalServerError, msgInternal
}

// writeServiceError translates err into a status code and body. Unexpected
// errors are logged and answered with an opaque message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validators.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgValidationFailed, Details: verr.Messages})
		return
	}

	status, message := statusFromError(err)
	log := logger.FromRequest(r)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("unexpected error")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeError(w, status, message)
}
