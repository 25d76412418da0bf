package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// publicPasswordHash is deliberately not a bcrypt hash, so the public user can never log in.
const publicPasswordHash = "disabled-auth"

type AuthService struct {
	userRepository repository.UserRepository
	jwtSecret      string
	jwtExpiry      time.Duration
}

func NewAuthService(userRepository repository.UserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
	}
}

// Register creates a user and issues a token for it.
func (s *AuthService) Register(username, email, password string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = validation.NormalizeEmail(email)

	err := validation.ValidateUsername(username)
	if err != nil {
		return nil, "", invalidInput(err)
	}
	err = validation.ValidateEmail(email)
	if err != nil {
		return nil, "", invalidInput(err)
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, "", invalidInput(err)
	}

	exists, err := s.userRepository.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, "", ErrUserExists
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	err = s.userRepository.Create(user)
	if err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

// Login returns ErrInvalidCredentials for both an unknown username and a wrong
// password so callers cannot tell which one failed.
func (s *AuthService) Login(username, password string) (*model.User, string, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
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

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":       user.ID,
		"username": user.Username,
		"exp":      now.Add(s.jwtExpiry).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyJWT checks signature and expiry and returns the identity in the claims.
// Tokens are stateless: nothing is looked up server-side.
func (s *AuthService) VerifyJWT(tokenString string) (*model.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}

	return &model.Identity{ID: id, Username: username}, nil
}

// EnsurePublicUser finds or creates the shared "public" user used when
// authentication is disabled. It is called once at startup.
func (s *AuthService) EnsurePublicUser() (*model.Identity, error) {
	user, err := s.userRepository.ByUsername(model.PublicUsername)
	if err == nil {
		return &model.Identity{ID: user.ID, Username: user.Username}, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up public user: %w", err)
	}

	user = &model.User{
		ID:           uuid.New().String(),
		Username:     model.PublicUsername,
		Email:        "public@example.com",
		PasswordHash: publicPasswordHash,
		CreatedAt:    time.Now(),
	}

	err = s.userRepository.Create(user)
	if errors.Is(err, repository.ErrDuplicateUser) {
		// Another instance provisioned it first
		user, err = s.userRepository.ByUsername(model.PublicUsername)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to provision public user: %w", err)
	}

	slog.Info("public user ready", "user_id", user.ID)
	return &model.Identity{ID: user.ID, Username: user.Username}, nil
}
