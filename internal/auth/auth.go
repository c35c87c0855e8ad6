package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ukydev/ride-booking/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const (
	DefaultTokenExpiry = 24 * time.Hour
	defaultSecret      = "default-secret-key-change-in-production"
)

// Service handles token, password and form operations
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	validator *formValidator
	now       func() time.Time
}

// NewService creates a new authentication service. Empty values fall back to defaults.
func NewService(secret string, tokenExp time.Duration) *Service {
	if secret == "" {
		secret = defaultSecret
	}
	if tokenExp <= 0 {
		tokenExp = DefaultTokenExpiry
	}
	return &Service{
		jwtSecret: []byte(secret),
		tokenExp:  tokenExp,
		validator: newFormValidator(),
		now:       time.Now,
	}
}

// TokenExpiry returns how long issued tokens stay valid.
func (s *Service) TokenExpiry() time.Duration {
	return s.tokenExp
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func (s *Service) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NewClaims starts a session record for the user.
func (s *Service) NewClaims(userID string) models.Claims {
	now := s.now()
	return models.Claims{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		LoggedInAt: now.UTC(),
		Exp:        now.Add(s.tokenExp).Unix(),
	}
}

// GenerateToken signs the session record as a JWT
func (s *Service) GenerateToken(c models.Claims) (string, error) {
	claims := jwt.MapClaims{
		"jti":          c.SessionID,
		"user_id":      c.UserID,
		"logged_in_at": c.LoggedInAt.Unix(),
		"exp":          c.Exp,
		"iat":          s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the session record
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sessionID, ok := claims["jti"].(string)
	if !ok || sessionID == "" {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	loggedIn, ok := claims["logged_in_at"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		SessionID:  sessionID,
		UserID:     userID,
		LoggedInAt: time.Unix(int64(loggedIn), 0).UTC(),
		Exp:        int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}

// ValidateSignup checks a signup form.
func (s *Service) ValidateSignup(req models.SignupRequest) error {
	return s.validator.check(req)
}

// ValidateLogin checks a login form.
func (s *Service) ValidateLogin(req models.LoginRequest) error {
	return s.validator.check(req)
}

// ValidateProfile checks a profile update and the invariants of the merged user.
func (s *Service) ValidateProfile(p models.ProfileUpdate, merged *models.User) error {
	if err := s.validator.check(p); err != nil {
		return err
	}
	if merged == nil {
		return nil
	}
	if err := merged.Validate(); err != nil {
		return &ValidationError{Fields: map[string]string{"profile": err.Error()}}
	}
	return nil
}
