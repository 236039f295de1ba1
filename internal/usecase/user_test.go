package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.NotFoundError{Resource: "user"}
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "user"}
}

func TestUserRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	uc := NewUserUsecase(newMemUserRepo())

	user, err := uc.Register(ctx, RegisterInput{
		Username:  "tfan",
		Email:     "Travis@Example.com",
		Password:  "correct horse",
		FirstName: "Travis",
		LastName:  "Fan",
	})
	require.NoError(t, err)
	assert.Equal(t, "travis@example.com", user.Email, "email should be normalized")
	assert.Equal(t, domain.UserRoleParticipant, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	authed, err := uc.Authenticate(ctx, "travis@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = uc.Authenticate(ctx, "travis@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserRegisterValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr string
	}{
		{
			name:    "missing username",
			input:   RegisterInput{Email: "a@example.com", Password: "long enough"},
			wantErr: "username is required",
		},
		{
			name:    "bad email",
			input:   RegisterInput{Username: "a", Email: "nope", Password: "long enough"},
			wantErr: "a valid email is required",
		},
		{
			name:    "short password",
			input:   RegisterInput{Username: "a", Email: "a@example.com", Password: "short"},
			wantErr: "password must be at least 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewUserUsecase(newMemUserRepo())
			_, err := uc.Register(ctx, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalid)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	uc := NewUserUsecase(newMemUserRepo())

	input := RegisterInput{
		Username: "first",
		Email:    "taken@example.com",
		Password: "long enough",
	}
	_, err := uc.Register(ctx, input)
	require.NoError(t, err)

	input.Username = "second"
	_, err = uc.Register(ctx, input)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already registered"))
}
