package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/adventofai/backend/src/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type UnlockHandler struct {
	unlockService *service.UnlockService
	now           func() time.Time
}

func NewUnlockHandler(unlockService *service.UnlockService, now func() time.Time) *UnlockHandler {
	if now == nil {
		now = time.Now
	}
	return &UnlockHandler{
		unlockService: unlockService,
		now:           now,
	}
}

func (h *UnlockHandler) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("handler", "unlock").Logger()
	return &l
}

// UnlockRequest is the body of POST /api/unlock. Day may be a number or a numeric string.
type UnlockRequest struct {
	Day    json.RawMessage `json:"day" swaggertype:"integer" example:"3"`
	Secret string          `json:"secret" example:"change-me"`
}

// UnlockDailyRequest is the body of POST /api/unlock-daily
type UnlockDailyRequest struct {
	Secret string `json:"secret" example:"change-me"`
}

// UnlockedChallenge is the committed state of a freshly unlocked day
type UnlockedChallenge struct {
	Day              int       `json:"day"`
	DiscussionURL    string    `json:"discussionUrl"`
	DiscussionNumber int       `json:"discussionNumber"`
	UnlockedAt       time.Time `json:"unlockedAt"`
}

// UnlockResponse is returned by both trigger endpoints on success
type UnlockResponse struct {
	Success         bool               `json:"success"`
	Message         string             `json:"message"`
	Challenge       *UnlockedChallenge `json:"challenge,omitempty"`
	AlreadyUnlocked bool               `json:"alreadyUnlocked,omitempty"`
	NoChallenge     bool               `json:"noChallenge,omitempty"`
	Day             int                `json:"day,omitempty"`
}

// parseDayField accepts 3 and "3"
func parseDayField(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, domain.NewInvalidDayError(errors.New("day is missing"))
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return domain.ParseDay(text)
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return 0, domain.NewInvalidDayError(fmt.Errorf("day is not a number: %w", err))
	}
	return domain.ParseDay(number.String())
}

// serverFailure gives a 5xx error the client message of the failed operation
func serverFailure(err error, msg string) error {
	domainErr := parseDomainError(err)
	if domainErr.HTTPStatus() < http.StatusInternalServerError {
		return err
	}
	return domain.NewError(domainErr.Code(), err, domain.WithMsg(msg))
}

func toUnlockedChallenge(c *domain.Challenge) *UnlockedChallenge {
	out := &UnlockedChallenge{Day: c.Day}
	if c.DiscussionURL != nil {
		out.DiscussionURL = *c.DiscussionURL
	}
	if c.DiscussionNumber != nil {
		out.DiscussionNumber = *c.DiscussionNumber
	}
	if c.UnlockedAt != nil {
		out.UnlockedAt = c.UnlockedAt.UTC()
	}
	return out
}

// Unlock godoc
// @Summary Unlock a challenge
// @Description Unlock one day and open its GitHub Discussion. Repeating the call for an unlocked day is a no-op.
// @Tags unlock
// @Accept json
// @Produce json
// @Param request body UnlockRequest true "Day and trigger secret"
// @Success 200 {object} UnlockResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /unlock [post]
func (h *UnlockHandler) Unlock(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "Unlock").Logger()

	var req UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// an unreadable body has no secret and is rejected below
		logger.Warn().Err(err).Msg("invalid request payload")
	}

	if err := h.unlockService.Authorize(req.Secret); err != nil {
		respondWithError(c, err)
		return
	}

	day, err := parseDayField(req.Day)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.unlockService.Unlock(c.Request.Context(), day)
	if err != nil {
		respondWithError(c, serverFailure(err, "Failed to unlock challenge"))
		return
	}

	if result.AlreadyUnlocked {
		logger.Info().Int("day", day).Bool("already_unlocked", true).Msg("unlock request was a no-op")
		c.JSON(http.StatusOK, UnlockResponse{
			Success:         true,
			Message:         fmt.Sprintf("Challenge %d is already unlocked", day),
			AlreadyUnlocked: true,
		})
		return
	}

	c.JSON(http.StatusOK, UnlockResponse{
		Success:   true,
		Message:   fmt.Sprintf("Challenge %d unlocked successfully", day),
		Challenge: toUnlockedChallenge(result.Challenge),
	})
}

// UnlockDaily godoc
// @Summary Unlock today's challenge
// @Description Unlock the challenge scheduled for the current date in US Eastern time, if any.
// @Tags unlock
// @Accept json
// @Produce json
// @Param request body UnlockDailyRequest true "Trigger secret"
// @Success 200 {object} UnlockResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /unlock-daily [post]
func (h *UnlockHandler) UnlockDaily(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "UnlockDaily").Logger()

	var req UnlockDailyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn().Err(err).Msg("invalid request payload")
	}

	if err := h.unlockService.Authorize(req.Secret); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.unlockService.UnlockToday(c.Request.Context(), h.now())
	if err != nil {
		respondWithError(c, serverFailure(err, "Failed to unlock daily challenge"))
		return
	}

	switch {
	case result.NoChallenge:
		c.JSON(http.StatusOK, UnlockResponse{
			Success:     true,
			Message:     fmt.Sprintf("No challenge scheduled for today (%s)", result.Date),
			NoChallenge: true,
		})
	case result.Result.AlreadyUnlocked:
		c.JSON(http.StatusOK, UnlockResponse{
			Success:         true,
			Message:         fmt.Sprintf("Challenge %d is already unlocked", result.Day),
			AlreadyUnlocked: true,
			Day:             result.Day,
		})
	default:
		c.JSON(http.StatusOK, UnlockResponse{
			Success:   true,
			Message:   fmt.Sprintf("Challenge %d unlocked successfully", result.Day),
			Challenge: toUnlockedChallenge(result.Result.Challenge),
		})
	}
}
