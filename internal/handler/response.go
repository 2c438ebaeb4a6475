package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"expensetracker/internal/auth"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/log"
)

// respond writes a successful envelope.
func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, apperrors.Envelope{Success: true, Data: data})
}

func badRequest(message, code string) error {
	return apperrors.NewHTTPError(http.StatusBadRequest, message, code)
}

var errUnauthorized = apperrors.NewHTTPError(http.StatusUnauthorized, "invalid or expired token", "UNAUTHORIZED")

// currentUserID returns the user the JWT middleware authenticated.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	claims, ok := c.Get("user").(*auth.Claims)
	if !ok || claims.UserID == uuid.Nil {
		return uuid.Nil, errUnauthorized
	}
	return claims.UserID, nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badRequest("invalid "+name, "INVALID_UUID")
	}
	return id, nil
}

// queryInt reads an optional integer query parameter; def is used when absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid "+name+": must be an integer", "INVALID_QUERY")
	}
	return v, nil
}

const dateLayout = "2006-01-02"

// queryTime reads an optional RFC 3339 timestamp or YYYY-MM-DD date. With
// endOfDay set, a bare date covers the whole day: it resolves to the last
// microsecond of that day instead of midnight.
func queryTime(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		return &t, nil
	}
	return nil, badRequest("invalid "+name+": use RFC 3339 or YYYY-MM-DD", "INVALID_QUERY")
}

// HTTPErrorHandler renders every error as a failed envelope. Errors that do
// not map to a known client error are logged and reported as an opaque 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status  int
		payload apperrors.Envelope
		echoErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &echoErr):
		status = echoErr.Code
		payload = apperrors.Envelope{Error: http.StatusText(status), Code: codeForStatus(status)}
		switch msg := echoErr.Message.(type) {
		case string:
			payload.Error = msg
		case apperrors.ErrorResponse:
			payload.Error, payload.Code = msg.Error, msg.Code
		}
	default:
		mapped := apperrors.MapErrorToHTTP(err)
		status = mapped.StatusCode
		payload = mapped.ToEnvelope()
	}

	if status >= http.StatusInternalServerError {
		log.FromContext(c.Request().Context()).Error("request failed",
			log.FieldPath, c.Path(),
			log.FieldError, err.Error(),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, payload)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "REQUEST_FAILED"
	}
}
