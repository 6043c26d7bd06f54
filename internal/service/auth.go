package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const AuthCookieName = "auth_token"

var ErrInvalidCredentials = errors.New("invalid email or password")

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type AuthService struct {
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
	jwtSecret         string
	jwtExpiry         time.Duration
	secureCookies     bool
}

func NewAuthService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	jwtSecret string,
	jwtExpiry time.Duration,
	secureCookies bool,
) *AuthService {
	return &AuthService{
		userRepository:    userRepository,
		profileRepository: profileRepository,
		jwtSecret:         jwtSecret,
		jwtExpiry:         jwtExpiry,
		secureCookies:     secureCookies,
	}
}

// Register creates the account and its profile.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	username := strings.TrimSpace(in.Username)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	err = validation.ValidateUsername(username)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	err = validation.ValidatePassword(in.Password)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Backend("failed to hash password", err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	err = s.userRepository.CreateWithProfile(ctx, user, &model.Profile{Username: username})
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, apperr.Wrap(apperr.KindConflict, "email already registered", err)
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, apperr.Wrap(apperr.KindConflict, "username already taken", err)
	case err != nil:
		return nil, apperr.Backend("failed to create account", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidCredentials.Error(), ErrInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Backend("failed to get user", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidCredentials.Error(), ErrInvalidCredentials)
	}

	return user, nil
}

// Me returns the signed-in user's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepository.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperr.New(apperr.KindUnauthenticated, "account no longer exists")
	}
	if err != nil {
		return nil, apperr.Backend("failed to load profile", err)
	}
	return profile, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(s.jwtExpiry)
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     expiry.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiry, nil
}

// VerifyJWT returns the user id carried by a valid token.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", fmt.Errorf("token has no user")
	}
	return userID, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
