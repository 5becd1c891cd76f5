package handler

import (
	"net/http"
	"sync"

	"github.com/befriend-app/befriend-backend/internal/delivery/http/middleware"
	"github.com/befriend-app/befriend-backend/internal/usecase/profile"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})
}

type SessionHandler struct {
	profileUseCase *profile.ProfileUseCase
	logger         *zap.Logger
}

func NewSessionHandler(profileUseCase *profile.ProfileUseCase, log *zap.Logger) *SessionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionHandler{profileUseCase: profileUseCase, logger: log}
}

// Me handles GET /me
// @Summary Session summary
// @Description Display name, photo and onboarding state of the signed-in user
// @Tags session
// @Security BearerAuth
// @Produce json
// @Success 200 {object} profile.SessionResponse
// @Failure 401 {string} string
// @Failure 500 {object} ErrorResponse
// @Router /me [get]
func (h *SessionHandler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	session, err := h.profileUseCase.Session(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("session lookup failed", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load session"})
		return
	}

	c.JSON(http.StatusOK, session)
}
