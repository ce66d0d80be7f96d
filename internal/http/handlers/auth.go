package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KennyKvn001/BusB/internal/http/middleware"
	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/services"
)

func authService() services.AuthService {
	return services.AuthService{
		UserRepo:  repositories.UserRepo{},
		JWTSecret: middleware.JWTSecret(),
	}
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req services.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}

	user, err := authService().Register(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	user, token, err := authService().Login(req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
