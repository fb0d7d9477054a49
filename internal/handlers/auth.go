package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/requestdata"
	"github.com/tonedial/calltone-backend/internal/services"
)

type AuthHandler struct {
	log           *logger.Logger
	authService   services.AuthService
	selectionSvc  services.SelectionService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, selectionSvc services.SelectionService) *AuthHandler {
	return &AuthHandler{
		log:          log.With("handler", "AuthHandler"),
		authService:  authService,
		selectionSvc: selectionSvc,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Wrap(apierr.CodeValidation, err))
		return
	}
	user, token, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"user": user, "token": token})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Wrap(apierr.CodeValidation, err))
		return
	}
	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"user": user, "token": token})
}

// GET /api/auth/me — current identity plus the selected tone, if any.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	selected, err := h.selectionSvc.Selected(c.Request.Context(), userID)
	if err != nil && !apierr.IsNotFound(err) {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"user_id": userID, "selected_call_tone": selected})
}
