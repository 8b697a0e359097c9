// utils/auth.go
package utils

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"washcenter-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const callerKey = "caller"

// Generate JWT token for a caller. Issuing tokens to end users is handled
// outside this service; this is used by tooling and tests.
func GenerateToken(secret string, caller models.Caller) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}
	expiryHours := 24 // default
	if env := os.Getenv("JWT_EXPIRY_HOURS"); env != "" {
		if h, err := strconv.Atoi(env); err == nil {
			expiryHours = h
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  caller.ID,
		"name": caller.Name,
		"role": string(caller.Role),
		"exp":  time.Now().Add(time.Duration(expiryHours) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})
	return token.SignedString([]byte(secret))
}

func parseCaller(secret, tokenString string) (models.Caller, error) {
	if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
		tokenString = tokenString[7:]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.Caller{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Caller{}, errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	switch models.Role(role) {
	case models.RoleCustomer, models.RoleOperator:
	default:
		return models.Caller{}, errors.New("invalid token claims")
	}
	return models.Caller{ID: sub, Name: name, Role: models.Role(role)}, nil
}

// AuthMiddleware resolves the caller from the Authorization header. When
// required is false a request without the header continues as a guest; a
// header carrying a bad token is always rejected.
func AuthMiddleware(secret string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			if required {
				RespondWithError(c, 401, "Authorization header required")
				return
			}
			c.Set(callerKey, models.Guest())
			c.Next()
			return
		}

		caller, err := parseCaller(secret, tokenString)
		if err != nil {
			RespondWithError(c, 401, "Invalid token")
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the caller stored by AuthMiddleware, or a guest.
func CallerFrom(c *gin.Context) models.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(models.Caller); ok {
			return caller
		}
	}
	return models.Guest()
}
