package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newSvc(us *mockUserStore, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{UserRepo: us, JWTProvider: jwt, BcryptCost: bcrypt.MinCost})
}

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "user-1",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

// --- Register ---

func TestRegister_NewUser(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	jwt.On("Sign", mock.Anything, "alice@example.com", domain.RoleUser).Return("tok", nil)

	u, token, err := newSvc(us, jwt).Register(context.Background(), domain.RegisterRequest{
		Email: "alice@example.com", Password: "hunter22!", FirstName: "Alice", LastName: "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, "en", u.PreferredLanguage)
	assert.NotNil(t, u.PreferredCategories)
	assert.True(t, u.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22!")))
	us.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{UserID: "x"}, nil)

	_, _, err := newSvc(us, jwt).Register(context.Background(), domain.RegisterRequest{Email: "alice@example.com", Password: "hunter22!"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_LookupFailurePropagates(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	boom := errors.New("dynamo down")
	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, boom)

	_, _, err := newSvc(us, jwt).Register(context.Background(), domain.RegisterRequest{Email: "a@b.com", Password: "hunter22!"})
	assert.ErrorIs(t, err, boom)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(storedUser(t, "correct-horse"), nil)
	us.On("TouchLastLogin", mock.Anything, "user-1", mock.AnythingOfType("time.Time")).Return(nil)
	jwt.On("Sign", "user-1", "alice@example.com", domain.RoleUser).Return("tok", nil)

	u, token, err := newSvc(us, jwt).Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.NotNil(t, u.LastLogin)
}

func TestLogin_WrongPassword(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(storedUser(t, "correct-horse"), nil)

	_, _, err := newSvc(us, jwt).Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	jwt.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_UnknownEmail(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	_, _, err := newSvc(us, jwt).Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_DisabledAccount(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	u := storedUser(t, "correct-horse")
	u.IsActive = false
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(u, nil)

	_, _, err := newSvc(us, jwt).Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// --- UpdateProfile ---

func TestUpdateProfile_OnlySetFields(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	first := "Alicia"
	lang := "es"
	us.On("Update", mock.Anything, "user-1", map[string]interface{}{
		fieldFirstName:         "Alicia",
		fieldPreferredLanguage: "es",
	}).Return(nil)
	us.On("Get", mock.Anything, "user-1").Return(&domain.User{UserID: "user-1", FirstName: "Alicia"}, nil)

	u, err := newSvc(us, jwt).UpdateProfile(context.Background(), "user-1", domain.UpdateProfileRequest{FirstName: &first, PreferredLanguage: &lang})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.FirstName)
	us.AssertExpectations(t)
}

func TestUpdateProfile_NoFieldsSkipsWrite(t *testing.T) {
	us, jwt := &mockUserStore{}, &mockJWTSigner{}
	us.On("Get", mock.Anything, "user-1").Return(&domain.User{UserID: "user-1"}, nil)

	_, err := newSvc(us, jwt).UpdateProfile(context.Background(), "user-1", domain.UpdateProfileRequest{})
	require.NoError(t, err)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
