package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the JSON shape shared by every endpoint: success=false or a
// non-2xx status both signal failure.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondOK sends a success envelope.
func RespondOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// RespondCreated sends a success envelope with 201.
func RespondCreated(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// RespondError maps a typed error to its HTTP status and sends a failure
// envelope. Unknown errors become a generic 500 so internals do not leak.
func RespondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "operation could not be completed"

	var (
		ve *ValidationError
		nf *NotFoundError
		ae *AuthorizationError
		te *TransitionError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		message = ve.Error()
	case errors.As(err, &nf):
		status = http.StatusNotFound
		message = nf.Error()
	case errors.As(err, &ae):
		status = http.StatusForbidden
		message = ae.Error()
	case errors.As(err, &te):
		status = http.StatusConflict
		message = te.Error()
	case errors.As(err, &ce):
		status = http.StatusConflict
		message = ce.Error()
	}

	return c.JSON(status, Envelope{Success: false, Error: message})
}

// RespondFail sends a failure envelope with an explicit status.
func RespondFail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Error: message})
}
