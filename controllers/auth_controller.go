package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/deltatracker/config"
	"github.com/cppla/deltatracker/middleware"
	"github.com/cppla/deltatracker/utils"
)

// AuthController trades the shared access key for bearer tokens.
type AuthController struct{}

// NewAuthController creates an AuthController.
func NewAuthController() *AuthController {
	return &AuthController{}
}

// Token validates the access key and issues a JWT.
func (a *AuthController) Token(ctx *gin.Context) {
	type request struct {
		AccessKey string `json:"access_key" binding:"required"`
	}

	cfg := config.Get()
	if !cfg.AuthEnabled {
		utils.Error(ctx, http.StatusBadRequest, 40006, "authentication is disabled")
		return
	}
	if cfg.AccessKeyHash == "" {
		utils.Error(ctx, http.StatusServiceUnavailable, 50302, "access key not configured")
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	if !utils.CheckAccessKey(cfg.AccessKeyHash, req.AccessKey) {
		utils.Sugar.Warnw("rejected access key", "ip", ctx.ClientIP())
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid access key")
		return
	}

	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	token, claims, err := utils.GenerateToken(ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
	})
}

// Logout revokes the presented token until it expires.
func (a *AuthController) Logout(ctx *gin.Context) {
	claims := middleware.ClaimsFrom(ctx)
	if claims == nil {
		utils.Success(ctx, gin.H{"message": "logged out"})
		return
	}
	expiresAt := time.Now().Add(time.Duration(config.Get().TokenTTLHours) * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.RevokeToken(claims.ID, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}
