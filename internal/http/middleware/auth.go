package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	operatorIDKey   = "operator_id"
	operatorRoleKey = "operator_role"
)

// RequireAuth validates the Bearer token issued at login and stores the
// operator identity on the context.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if id, ok := claims["operator_id"].(float64); ok {
				c.Set(operatorIDKey, int64(id))
			}
			if role, ok := claims["role"].(string); ok {
				c.Set(operatorRoleKey, role)
			}
		}
		c.Next()
	}
}

// GetOperatorRole returns the authenticated operator's role, if any.
func GetOperatorRole(c *gin.Context) string {
	return c.GetString(operatorRoleKey)
}
