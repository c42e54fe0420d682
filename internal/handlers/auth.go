package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/scoring-service/internal/config"
)

const (
	userIDKey        = "user_id"
	userIDHeader     = "X-User-ID"
	anonymousUserID  = "anonymous"
	bearerPrefix     = "Bearer "
	authorizationKey = "Authorization"
)

// TokenParser verifies a bearer token and returns the user it was issued to.
type TokenParser func(token string) (string, error)

// NewCasdoorTokenParser configures the Casdoor SDK and returns a parser for
// the JWTs it issues.
func NewCasdoorTokenParser(cfg config.AuthConfig) TokenParser {
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)

	return func(token string) (string, error) {
		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			return "", err
		}
		if claims.User.Id != "" {
			return claims.User.Id, nil
		}
		if claims.User.Name == "" {
			return "", errors.New("token carries no user")
		}
		return claims.User.Owner + "/" + claims.User.Name, nil
	}
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token's user under "user_id".
func AuthMiddleware(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationKey)
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
			})
			return
		}

		userID, err := parse(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Details: err.Error(),
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// DevUserMiddleware is used when authentication is disabled: the caller
// names itself with X-User-ID, or is treated as "anonymous".
func DevUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if userID == "" {
			userID = anonymousUserID
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}
