package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"washops/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Operator is the console login payload.
type Operator struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if config.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operator store not configured"})
		return
	}

	var (
		op           Operator
		passwordHash string
	)

	err := config.DB.QueryRow(`
        SELECT id, name, username, password_hash, role, status
        FROM operators
        WHERE username = ?
    `, req.Username).Scan(
		&op.ID,
		&op.Name,
		&op.Username,
		&passwordHash,
		&op.Role,
		&op.Status,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong username or password"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "operator lookup failed: " + err.Error()})
		}
		return
	}

	if op.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "operator account is disabled"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong username or password"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": op.ID,
		"role":        op.Role,
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(deps.Env.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    tokenString,
		"operator": op,
	})
}
