package errors

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// httpKind pairs an error kind with the status it is answered with
type httpKind struct {
	is     func(error) bool
	status int
}

// clientKinds are answered with the error text itself.
// Order matters when one error wraps several kinds.
var clientKinds = []httpKind{
	{IsValidationError, fasthttp.StatusBadRequest},
	{IsUnauthorizedError, fasthttp.StatusUnauthorized},
	{IsPermissionError, fasthttp.StatusForbidden},
	{IsNotFoundError, fasthttp.StatusNotFound},
	{IsConflictError, fasthttp.StatusConflict},
}

// Mapper turns use case errors into lead ingress responses: invalid lead
// bodies become 400, a bad API key 401, a duplicate phone 409 and storage or
// publish failures 500.
type Mapper struct {
	logger zerolog.Logger
}

// NewMapper creates a new error mapper
func NewMapper(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// MapErrorToHTTP maps an error to HTTP status code and message
func (m *Mapper) MapErrorToHTTP(err error) (int, string) {
	if err == nil {
		return fasthttp.StatusOK, ""
	}

	for _, k := range clientKinds {
		if k.is(err) {
			return k.status, err.Error()
		}
	}

	var internalErr *InternalError
	if errors.As(err, &internalErr) {
		m.logger.Error().Err(err).Msg("Request failed on internal error")
		return fasthttp.StatusInternalServerError, internalErr.Error()
	}

	m.logger.Error().Err(err).Msg("Request failed on untyped error")
	return fasthttp.StatusInternalServerError, "internal server error"
}
