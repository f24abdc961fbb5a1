package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/users-api/internal/api/handler"
	"github.com/99minutos/users-api/internal/core/domain"
)

// ErrorReporter receives errors that no mapping below recognises.
type ErrorReporter interface {
	CaptureRequestError(err error, req *http.Request, route string)
}

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	ID       *int64            `json:"id,omitempty"`
	Messages map[string]string `json:"messages,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders a consistent JSON envelope. Unknown
// errors are logged, reported when reporter is non-nil, and rendered without
// detail.
func NewHTTPErrorHandler(log zerolog.Logger, reporter ErrorReporter) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err)
		if code == 0 {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
			if reporter != nil {
				reporter.CaptureRequestError(err, c.Request(), c.Path())
			}
			code, body = http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal server error"}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// resolveError returns a zero code for errors it does not recognise.
func resolveError(err error) (int, errorResponse) {
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation_failed", Messages: ve.Fields}
	}

	var de *domain.EmailDispatchError
	if errors.As(err, &de) {
		id := de.AccountID
		return http.StatusInternalServerError, errorResponse{
			Error:   "email_failed",
			Message: "account created but the welcome email could not be sent",
			ID:      &id,
		}
	}

	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return http.StatusInternalServerError, errorResponse{Error: persistenceCode(pe.Op)}
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "forbidden", Message: "you are not allowed to perform this action"}
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, errorResponse{Error: "email_exists", Message: "email already exists"}
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid_credentials", Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusForbidden, errorResponse{Error: "account_inactive", Message: "Account is inactive"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized"}
	}

	// Echo's own errors (router 404/405, middleware 401).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: httpErrorCode(he.Code), Message: fmt.Sprintf("%v", he.Message)}
	}

	return 0, errorResponse{}
}

func persistenceCode(op string) string {
	switch op {
	case "create_account":
		return "user_creation_failed"
	case "update_account":
		return "update_failed"
	case "register":
		return "registration_failed"
	default:
		return "internal_error"
	}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		return "error"
	}
}
