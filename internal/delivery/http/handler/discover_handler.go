package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/befriend-app/befriend-backend/internal/delivery/http/middleware"
	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/usecase/discover"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type DiscoverHandler struct {
	discoverUseCase *discover.DiscoverUseCase
	logger          *zap.Logger
}

func NewDiscoverHandler(discoverUseCase *discover.DiscoverUseCase, log *zap.Logger) *DiscoverHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiscoverHandler{discoverUseCase: discoverUseCase, logger: log}
}

// DiscoverRequest has optional limits; omitted or null fields take the defaults.
type DiscoverRequest struct {
	LimitPeople     *int `json:"limit_people"`
	LimitActivities *int `json:"limit_activities"`
}

func (r *DiscoverRequest) limits() domain.DiscoverLimits {
	l := domain.DiscoverLimits{People: domain.DefaultLimitPeople, Activities: domain.DefaultLimitActivities}
	if r.LimitPeople != nil {
		l.People = *r.LimitPeople
	}
	if r.LimitActivities != nil {
		l.Activities = *r.LimitActivities
	}
	return l
}

// Discover handles POST /discover
// @Summary Discover friends and activities
// @Tags discover
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body DiscoverRequest false "Limits"
// @Success 200 {object} domain.DiscoverResponse
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 403 {string} string
// @Failure 404 {string} string
// @Failure 422 {string} string
// @Failure 429 {string} string
// @Failure 500 {string} string
// @Router /discover [post]
func (h *DiscoverHandler) Discover(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Missing bearer token")
		return
	}

	var req DiscoverRequest
	raw, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := binding.JSON.BindBody(raw, &req); err != nil {
			var typeErr *json.UnmarshalTypeError
			// a top-level array or scalar has no field name
			if errors.As(err, &typeErr) && typeErr.Field != "" {
				c.String(http.StatusUnprocessableEntity, "%s must be an integer", typeErr.Field)
				return
			}
			c.String(http.StatusBadRequest, "Malformed JSON body")
			return
		}
	}

	resp, err := h.discoverUseCase.Discover(c.Request.Context(), id.UID, req.limits())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidLimits):
			c.String(http.StatusUnprocessableEntity, "%s", err.Error())
		case errors.Is(err, domain.ErrProfileNotFound):
			c.String(http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrProfileNotOnboarded):
			c.String(http.StatusForbidden, "Profile not onboarded")
		case errors.Is(err, context.Canceled):
			h.logger.Info("discover canceled by client", zap.String("uid", id.UID))
			c.String(http.StatusServiceUnavailable, "Request canceled")
		default:
			h.logger.Error("discover failed", zap.String("uid", id.UID), zap.Error(err))
			c.String(http.StatusInternalServerError, "Discover failed")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
