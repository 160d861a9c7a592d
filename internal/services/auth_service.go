package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gopress/internal/models"
	"gopress/internal/repositories"
	"gopress/internal/validation"
	"gopress/pkg/sessions"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and session identity.
//
// A session token is a signed JWT carrying the user's email and a session
// id (jti), but it only authenticates while that id is present in the
// session store. Logout deletes the id, so revocation works even though
// the token itself is stateless.
type AuthService struct {
	userRepo   repositories.UserRepository
	store      sessions.Store
	validate   *validator.Validate
	jwtSecret  []byte
	sessionTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, store sessions.Store, jwtSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		store:      store,
		validate:   validation.New(),
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

// Register validates the submitted identity, hashes the password and
// stores the new user. The raw password never reaches the repository.
func (s *AuthService) Register(name, email, password string) (*models.User, error) {
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: password,
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Pre-check for a friendlier error; the unique index on email still
	// catches a race between two concurrent registrations.
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, repositories.ErrDuplicateEmail
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the identical ErrInvalidCredentials.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// StartSession issues a session token bound to the user's email.
func (s *AuthService) StartSession(ctx context.Context, user *models.User) (string, error) {
	sessionID := uuid.New().String()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": user.Email,
		"jti":   sessionID,
		"exp":   time.Now().Add(s.sessionTTL).Unix(),
		"iat":   time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.store.Put(ctx, sessionID, user.Email, s.sessionTTL); err != nil {
		return "", err
	}
	return tokenString, nil
}

// ResolveSession maps a token back to the current User record. The user is
// re-read from the repository on every call, so a renamed account shows
// fresh data and a deleted account invalidates the session (the stale
// session id is dropped from the store before failing).
func (s *AuthService) ResolveSession(ctx context.Context, tokenString string) (*models.User, error) {
	sessionID, email, err := s.parseToken(tokenString)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	storedEmail, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNoSession) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if storedEmail != email {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Stale-identity recovery: the account is gone, so the session
			// must go too.
			if delErr := s.store.Delete(ctx, sessionID); delErr != nil {
				log.Printf("Failed to drop stale session %s: %v", sessionID, delErr)
			}
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// EndSession invalidates the token's session. It is idempotent: a missing,
// expired or garbage token is a no-op, not an error.
func (s *AuthService) EndSession(ctx context.Context, tokenString string) error {
	sessionID, _, err := s.parseToken(tokenString)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, sessionID)
}

// parseToken verifies the token signature and extracts the session id and
// bound email.
func (s *AuthService) parseToken(tokenString string) (sessionID, email string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	sessionID, _ = claims["jti"].(string)
	email, _ = claims["email"].(string)
	if sessionID == "" || email == "" {
		return "", "", fmt.Errorf("token missing session claims")
	}
	return sessionID, email, nil
}
