package handler

import (
	"errors"
	"net/http"

	"github.com/adventofai/backend/src/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondWithError maps a domain error to its status and client message.
// Only server-side failures carry details.
func respondWithError(c *gin.Context, err error) {
	domainErr := parseDomainError(err)

	// Use the original error message if the domain error has no client message
	message := domainErr.ClientMsg()
	if message == "" {
		message = err.Error()
	}

	status := domainErr.HTTPStatus()
	response := ErrorResponse{Error: message}
	if status >= http.StatusInternalServerError {
		response.Details = err.Error()
	}

	ctx := c.Request.Context()
	event := zerolog.Ctx(ctx).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(ctx).Error().Err(err)
	}
	event.
		Str("function", "respondWithError").
		Str("error_code", domainErr.Name()).
		Int("status", status).
		Msg(message)

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, response)
}

// parseDomainError extracts domain error information
func parseDomainError(err error) domain.DomainError {
	var domainError domain.DomainError
	// We don't check if errors.As is valid or not
	// because an empty domain.DomainError would return default error data.
	_ = errors.As(err, &domainError)
	return domainError
}
