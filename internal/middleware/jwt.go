package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/luyenthi/luyenthi-backend/internal/response"
	"github.com/luyenthi/luyenthi-backend/internal/service"
)

// ContextKeyClaims is the Gin context key for JWT claims.
const ContextKeyClaims = "claims"

// RequireStudentJWT validates a student bearer token.
func RequireStudentJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, service.TokenTypeStudent, response.ErrStudentAccessOnly, bearerToken)
}

// RequireTeacherJWT validates a teacher bearer token.
func RequireTeacherJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, service.TokenTypeTeacher, response.ErrTeacherAccessOnly, bearerToken)
}

// RequireStudentWSAuth validates a student token from the ?token= query
// param. Browser WebSocket upgrades cannot set an Authorization header.
func RequireStudentWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, service.TokenTypeStudent, response.ErrStudentAccessOnly, queryToken)
}

// requireToken builds the shared auth middleware: read a token from the
// given source, validate it, check the audience, and stash the claims.
func requireToken(
	authService *service.AuthService,
	want service.TokenType,
	deny response.ErrCode,
	source func(*gin.Context) string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := source(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if claims.TokenType != want {
			response.AbortFail(c, http.StatusForbidden, deny)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// bearerToken reads a token from the Authorization header.
func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// queryToken reads a token from the ?token= query param.
func queryToken(c *gin.Context) string {
	return c.Query("token")
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}
