package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/clients/identity"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/requestdata"
)

type AuthMiddleware struct {
	log            *logger.Logger
	identityClient identity.Client
	userRepo       repos.UserProfileRepo
}

func NewAuthMiddleware(log *logger.Logger, identityClient identity.Client, userRepo repos.UserProfileRepo) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{
		log:            middlewareLog,
		identityClient: identityClient,
		userRepo:       userRepo,
	}
}

// RequireAuth verifies the bearer token against the identity provider's keys
// and materializes the local user profile on first sight.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}

		claims, err := am.identityClient.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}

		user, err := am.userRepo.GetOrCreateByExternalID(c.Request.Context(), nil, claims.Subject, claims.Email)
		if err != nil {
			am.log.Error("failed to resolve user profile", "error", err, "external_id", claims.Subject)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "failed to resolve user", "code": "internal_error"},
			})
			return
		}
		if user.ID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "forbidden", "code": "forbidden"},
			})
			return
		}

		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
			TokenString: tokenString,
			UserID:      user.ID,
			ExternalID:  user.ExternalID,
			Email:       user.Email,
			Role:        user.Role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("user", user)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
