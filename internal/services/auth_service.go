package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/utils"
)

const tokenTTL = 24 * time.Hour

// AuthService handles registration, login and token issuance.
type AuthService struct {
	UserRepo  repositories.UserRepo
	JWTSecret []byte

	Now func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (s AuthService) Register(in RegisterInput) (models.User, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Email = utils.NormalizeEmail(in.Email)

	if in.Name == "" {
		return models.User{}, domain.ValidationError{Field: "name", Msg: "is required"}
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "must be a valid email address"}
	}
	if len(in.Password) < 8 {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}

	exists, err := s.UserRepo.EmailExists(in.Email)
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	if exists {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email is already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        utils.NormalizeSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Status:       models.UserActive,
	}
	if err := s.UserRepo.Create(&user); err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	return user, nil
}

// Login verifies credentials and returns the user with a signed token.
// Wrong email and wrong password are indistinguishable to the caller.
func (s AuthService) Login(email, password string) (models.User, string, error) {
	user, err := s.UserRepo.GetByEmail(utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, "", domain.AuthenticationError{Msg: "invalid email or password"}
		}
		return models.User{}, "", domain.InternalError{Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", domain.AuthenticationError{Msg: "invalid email or password"}
	}
	if user.Status != models.UserActive {
		return models.User{}, "", domain.AuthenticationError{Msg: "account is not active"}
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

func (s AuthService) IssueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     s.now().Add(tokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return signed, nil
}
