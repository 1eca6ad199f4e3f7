package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/adventofai/backend/src/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
	now              func() time.Time
}

func NewChallengeHandler(challengeService *service.ChallengeService, now func() time.Time) *ChallengeHandler {
	if now == nil {
		now = time.Now
	}
	return &ChallengeHandler{
		challengeService: challengeService,
		now:              now,
	}
}

func (h *ChallengeHandler) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("handler", "challenge").Logger()
	return &l
}

// NextUnlockResponse is the countdown to the next scheduled unlock
type NextUnlockResponse struct {
	Day              int        `json:"day,omitempty"`
	UnlockAt         *time.Time `json:"unlockAt,omitempty"`
	SecondsRemaining int64      `json:"secondsRemaining,omitempty"`
	AllUnlocked      bool       `json:"allUnlocked,omitempty"`
}

// ListChallenges godoc
// @Summary Challenge unlock status
// @Description Unlock state of every scheduled day keyed by day number
// @Tags challenges
// @Produce json
// @Success 200 {object} map[string]service.ChallengeStatus
// @Failure 500 {object} ErrorResponse
// @Router /challenges [get]
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	statuses, err := h.challengeService.ListStatus(c.Request.Context())
	if err != nil {
		respondWithError(c, serverFailure(err, "Failed to fetch challenges"))
		return
	}

	byDay := make(map[int]service.ChallengeStatus, len(statuses))
	for _, s := range statuses {
		byDay[s.Day] = s
	}

	c.JSON(http.StatusOK, byDay)
}

// GetChallenge godoc
// @Summary Challenge content
// @Description Markdown body and discussion link of an unlocked day
// @Tags challenges
// @Produce json
// @Param day path int true "Day number (1-17)"
// @Success 200 {object} service.ChallengeContent
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /challenges/{day} [get]
func (h *ChallengeHandler) GetChallenge() gin.HandlerFunc {
	type Params struct {
		Day string `uri:"day" binding:"required,numeric"`
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var params Params
		if err := c.ShouldBindUri(&params); err != nil {
			respondWithError(c, domain.NewInvalidDayError(err))
			return
		}

		day, err := domain.ParseDay(params.Day)
		if err != nil {
			respondWithError(c, err)
			return
		}

		content, err := h.challengeService.GetChallengeContent(ctx, day)
		if err != nil {
			respondWithError(c, serverFailure(err, "Failed to fetch challenge"))
			return
		}

		h.logger(ctx).Debug().Int("day", day).Msg("serving challenge content")
		c.JSON(http.StatusOK, content)
	}
}

// NextUnlock godoc
// @Summary Next unlock countdown
// @Tags challenges
// @Produce json
// @Success 200 {object} NextUnlockResponse
// @Router /schedule/next [get]
func (h *ChallengeHandler) NextUnlock(c *gin.Context) {
	next := h.challengeService.NextUnlock(h.now())
	if next.AllUnlocked {
		c.JSON(http.StatusOK, NextUnlockResponse{AllUnlocked: true})
		return
	}

	unlockAt := next.UnlockAt.UTC()
	c.JSON(http.StatusOK, NextUnlockResponse{
		Day:              next.Day,
		UnlockAt:         &unlockAt,
		SecondsRemaining: next.SecondsRemaining,
	})
}
