package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/befriend-app/befriend-backend/internal/delivery/http/middleware"
	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/usecase/profile"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
	logger         *zap.Logger
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		logger:         log,
	}
}

// GetMyProfile handles GET /profile/me
// @Summary Get my profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Profile
// @Failure 401 {string} string
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	p, err := h.profileUseCase.GetMyProfile(c.Request.Context(), id.UID)
	if err != nil {
		h.fail(c, id.UID, err, "failed to get profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// Register handles POST /profile/register
// @Summary Complete onboarding
// @Description Create the caller's profile and mark it onboarded
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.RegisterRequest true "Registration form"
// @Success 201 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 401 {string} string
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/register [post]
func (h *ProfileHandler) Register(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req profile.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindError(err)})
		return
	}

	p, err := h.profileUseCase.Register(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, id.UID, err, "failed to create profile")
		return
	}

	c.JSON(http.StatusCreated, p)
}

// UpdateMyProfile handles PUT /profile/me
// @Summary Update my profile
// @Description Merge-update the fields present in the body
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpdateProfileRequest true "Profile update data"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 401 {string} string
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req profile.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindError(err)})
		return
	}

	p, err := h.profileUseCase.UpdateProfile(c.Request.Context(), id.UID, &req)
	if err != nil {
		h.fail(c, id.UID, err, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// GetProfileCard handles GET /profile/:uid
// @Summary Get another user's card
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Param uid path string true "User ID"
// @Success 200 {object} domain.MatchCard
// @Failure 401 {string} string
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/{uid} [get]
func (h *ProfileHandler) GetProfileCard(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	target := strings.TrimSpace(c.Param("uid"))
	if target == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid uid"})
		return
	}

	card, err := h.profileUseCase.GetCard(c.Request.Context(), target)
	if err != nil {
		h.fail(c, id.UID, err, "failed to get profile")
		return
	}

	c.JSON(http.StatusOK, card)
}

func (h *ProfileHandler) fail(c *gin.Context, uid string, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
	case errors.Is(err, domain.ErrProfileAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "profile already exists"})
	case errors.Is(err, domain.ErrInvalidProfile):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error(fallback, zap.String("uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

// bindError turns binding failures into a short client-facing message.
func bindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" || fe.Tag() == "notblank" {
			return domain.ErrInvalidProfile.Error()
		}
	}
	return "invalid " + strings.ToLower(verrs[0].Field())
}
