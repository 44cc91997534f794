package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ahsanfayaz52/noteservice/internal/metrics"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user exists")
	ErrInvalidUsername    = errors.New("username is required")
)

type UserStore interface {
	CreateUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, username string) (models.User, error)
}

type Service struct {
	users UserStore
	cost  int
}

func NewService(users UserStore) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

// normalizeUsername trims surrounding whitespace so that registration, login and
// the token subject all agree on the same name.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// Register creates an account for username. The caller logs the user in on success.
func (s *Service) Register(ctx context.Context, username, password string) (models.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		metrics.TrackAuthAttempt("register", false)
		return models.User{}, ErrInvalidUsername
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{ID: username, Username: username, Password: string(hashedPass)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		metrics.TrackAuthAttempt("register", false)
		if errors.Is(err, store.ErrUserExists) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	metrics.TrackAuthAttempt("register", true)
	return user, nil
}

// Login succeeds only when password matches the one stored at registration.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		metrics.TrackAuthAttempt("login", false)
		return models.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		metrics.TrackAuthAttempt("login", false)
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.TrackAuthAttempt("login", false)
		return models.User{}, ErrInvalidCredentials
	}

	metrics.TrackAuthAttempt("login", true)
	return user, nil
}
