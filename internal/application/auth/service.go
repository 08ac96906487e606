package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/event-locator/internal/pkg/id"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFirstName           = "first_name"
	fieldLastName            = "last_name"
	fieldLocation            = "location"
	fieldPreferredCategories = "preferred_categories"
	fieldPreferredLanguage   = "preferred_language"
)

const defaultLanguage = "en"

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

type tokenSigner interface {
	Sign(userID, email, role string) (string, error)
}

type ServiceDeps struct {
	UserRepo    userStore
	JWTProvider tokenSigner
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type service struct {
	repo        userStore
	jwtProvider tokenSigner
	cost        int
}

func NewService(deps ServiceDeps) Service {
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{repo: deps.UserRepo, jwtProvider: deps.JWTProvider, cost: cost}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, "", err
	}
	lang := req.PreferredLanguage
	if lang == "" {
		lang = defaultLanguage
	}
	categories := req.PreferredCategories
	if categories == nil {
		categories = []string{}
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:              id.New(),
		Email:               req.Email,
		PasswordHash:        string(hash),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Role:                domain.RoleUser,
		Location:            req.Location,
		PreferredCategories: categories,
		PreferredLanguage:   lang,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := s.jwtProvider.Sign(u.UserID, u.Email, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.IsActive {
		return nil, "", fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, u.UserID, now); err != nil {
		log.Warn().Err(err).Str("user_id", u.UserID).Msg("failed to record last login")
	} else {
		u.LastLogin = &now
	}
	token, err := s.jwtProvider.Sign(u.UserID, u.Email, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return u, token, nil
}

func (s *service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.PreferredCategories != nil {
		updates[fieldPreferredCategories] = *req.PreferredCategories
	}
	if req.PreferredLanguage != nil {
		updates[fieldPreferredLanguage] = *req.PreferredLanguage
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, userID)
}
