package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the JSON shape every endpoint responds with. Status repeats
// the HTTP status code in the body.
type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListData wraps list payloads with a total row count.
type ListData struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

// SuccessResponse writes data with a 200 envelope.
func SuccessResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, data)
}

// ListResponse writes rows with a total count.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return respond(c, http.StatusOK, &ListData{Rows: rows, Total: total})
}

// BadRequestResponse writes validation details with a 400 envelope.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusBadRequest, data)
}

// InternalServerErrorResponse writes a generic 500 envelope.
func InternalServerErrorResponse(c echo.Context) error {
	return respond(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse maps an AppError to its status; anything else becomes
// a 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return respond(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
