package usecase

import (
	"context"
	"strings"

	stderrors "errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

// UserUsecase covers account registration and authentication.
type UserUsecase struct {
	users UserRepository
}

func NewUserUsecase(users UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

// RegisterInput is the validated input for creating an account.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
}

// Register creates a new account with a bcrypt-hashed password.
func (u *UserUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Username == "" {
		return nil, domain.ValidationError{Message: "username is required"}
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, domain.ValidationError{Message: "a valid email is required"}
	}
	if len(input.Password) < 8 {
		return nil, domain.ValidationError{Message: "password must be at least 8 characters"}
	}

	_, err := u.users.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, domain.ValidationError{Message: "email is already registered"}
	}
	if !stderrors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Avatar:       input.Avatar,
		Role:         domain.UserRoleParticipant,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns the matching account.
func (u *UserUsecase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := u.users.FindByEmail(ctx, email)
	if stderrors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Get returns an account by id.
func (u *UserUsecase) Get(ctx context.Context, id string) (*domain.User, error) {
	return u.users.FindByID(ctx, id)
}
