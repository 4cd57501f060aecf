package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/prisonrp/ruleswiki/internal/models"
)

const actorContextKey = "staff_actor"

type staffClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// issueToken handles POST /api/auth/token. It trades a Steam ID plus the
// shared operations secret for a staff session JWT, stamping last_login.
// The Steam/Discord OAuth handshake lives in front of this service; this
// endpoint only covers operational and development use.
func (r *Router) issueToken(c *gin.Context) {
	var req struct {
		SteamID string `json:"steam_id" binding:"required"`
		Secret  string `json:"secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "steam_id and secret are required"})
		return
	}

	if r.authCfg.TokenSecret == "" || req.Secret != r.authCfg.TokenSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	user, err := r.staffRepo.GetBySteamID(c.Request.Context(), req.SteamID)
	if err != nil {
		abortError(c, err)
		return
	}
	if user == nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown or inactive staff account"})
		return
	}

	now := time.Now().UTC()
	claims := staffClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ruleswiki",
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(r.authCfg.TokenTTL) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(r.authCfg.JWTSecret))
	if err != nil {
		r.logger.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := r.staffRepo.TouchLastLogin(c.Request.Context(), user.ID, now); err != nil {
		r.logger.Warn("Failed to stamp last_login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      signed,
		"expires_at": claims.ExpiresAt.Time,
		"user":       user,
	})
}

// requireStaff authenticates the bearer token, loads the staff user, and
// rejects inactive accounts. The user is stored on the request context for
// handlers.
func (r *Router) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims := &staffClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(r.authCfg.JWTSecret), nil
			})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		user, err := r.staffRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortError(c, err)
			return
		}
		if user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown or inactive staff account"})
			return
		}

		c.Set(actorContextKey, user)
		c.Next()
	}
}

// actor returns the authenticated staff user set by requireStaff.
func actor(c *gin.Context) *models.StaffUser {
	v, _ := c.Get(actorContextKey)
	user, _ := v.(*models.StaffUser)
	return user
}
