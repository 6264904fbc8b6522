package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nespinosaoimpa-wq/Olmoind/pkg/middleware"
)

type AuthHandler struct {
	adminEmail        string
	adminPasswordHash string
	jwtSecret         string
	jwtTTL            time.Duration
	logger            *zap.Logger
}

func NewAuthHandler(adminEmail, adminPasswordHash, jwtSecret string, jwtTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
		jwtTTL:            jwtTTL,
		logger:            logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the configured admin credentials and issues a session token
// for the back-office routes.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Email != h.adminEmail ||
		bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(req.Password)) != nil {
		h.logger.Warn("Failed admin login", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateAdminToken(req.Email, h.jwtSecret, h.jwtTTL)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": time.Now().Add(h.jwtTTL),
	})
}
