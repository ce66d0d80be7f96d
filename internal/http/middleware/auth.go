package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/services"
)

const principalKey = "principal"

var jwtSecret []byte

// SetJWTSecret installs the signing secret; called once during router setup.
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// JWTSecret returns the installed signing secret.
func JWTSecret() []byte {
	return jwtSecret
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolvePrincipal(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		if p == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// AuthOptional resolves a principal when a token is present and passes
// anonymous requests through. A present but invalid token is still rejected.
func AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolvePrincipal(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		if p != nil {
			c.Set(principalKey, p)
		}
		c.Next()
	}
}

// GetPrincipal returns the resolved principal, or nil for anonymous requests.
func GetPrincipal(c *gin.Context) *services.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*services.Principal); ok {
			return p
		}
	}
	return nil
}

// resolvePrincipal parses the Authorization header and loads the user behind
// the token. Returns (nil, nil) when no token was sent.
func resolvePrincipal(c *gin.Context) (*services.Principal, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return nil, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, errors.New("authorization header must be a bearer token")
	}

	token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return nil, errors.New("invalid token claims")
	}

	users := repositories.UserRepo{}
	user, err := users.GetByID(int64(userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("account no longer exists")
		}
		return nil, errors.New("failed to load account")
	}
	if user.Status != models.UserActive {
		return nil, errors.New("account is not active")
	}

	p := &services.Principal{UserID: user.ID, Role: user.Role}
	if user.Role == models.RoleOperator {
		operators := repositories.OperatorRepo{}
		if op, err := operators.GetByUserID(user.ID); err == nil {
			p.Operator = &op
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("failed to load operator profile")
		}
	}
	return p, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      message,
		"code":       "authentication_error",
		"request_id": GetRequestID(c),
	})
}
