package service

import (
	"context"
	"errors"
	"sync"

	"task-manager/internal/apperr"
	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
)

const (
	msgMissingFields      = "Please fill all the fields"
	msgMissingCredentials = "Please provide email and password"
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid credentials"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// RegisterInput is the data required to open an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles registration and login.
type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account. Emails are compared exactly as given.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.New(apperr.BadRequest, msgMissingFields)
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperr.New(apperr.Conflict, msgUserExists)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Wrap(err, "could not register user")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperr.New(apperr.BadRequest, "Password is too long")
		}
		return nil, apperr.Wrap(err, "could not register user")
	}

	user := &model.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can win between lookup and insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, msgUserExists)
		}
		return nil, apperr.Wrap(err, "could not register user")
	}
	return user, nil
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.New(apperr.BadRequest, msgMissingCredentials)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperr.Wrap(err, "could not log in")
		}
		// Spend the same hashing work as a real comparison.
		s.hasher.Verify(password, s.placeholderHash())
		return nil, "", apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", apperr.Wrap(err, "could not log in")
	}
	return user, token, nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password")
	})
	return s.dummyHash
}
