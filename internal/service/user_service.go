package service

import (
	"context"
	"errors"
	"storefront-service/internal/entity"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	UpdateProfile(ctx context.Context, id, name, phone string) (*entity.User, error)
}

type TokenIssuer interface {
	Generate(user *entity.User) (string, error)
	Revoke(ctx context.Context, token string) error
}

type UserService struct {
	repo     UserRepository
	tokens   TokenIssuer
	validate *validator.Validate
	hashCost int
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{
		repo:     repo,
		tokens:   tokens,
		validate: newValidator(),
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates the account and signs the user in.
func (s *UserService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(s.validate, req); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, "", err
	}

	// a signing failure must not leave an account behind
	pending := &entity.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
	}
	token, err := s.tokens.Generate(pending)
	if err != nil {
		logger.Error().Err(err).Msg("Error signing token for new user")
		return nil, "", err
	}

	user, err := s.repo.CreateUser(ctx, pending)
	if err != nil {
		if errors.Is(err, entity.ErrEmailTaken) {
			return nil, "", &entity.ValidationError{Fields: map[string]string{"email": "email is already registered"}}
		}
		logger.Error().Err(err).Msg("Error creating user")
		return nil, "", err
	}

	return user, token, nil
}

// Login returns entity.ErrInvalidCredentials for an unknown email or a wrong password.
func (s *UserService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.User, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(s.validate, req); err != nil {
		return nil, "", err
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, "", entity.ErrInvalidCredentials
		}
		logger.Error().Err(err).Msg("Error logging in user")
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, token)
}

func (s *UserService) GetProfile(ctx context.Context, id string) (*entity.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, req *entity.UpdateProfileRequest) (*entity.User, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	user, err := s.repo.UpdateProfile(ctx, id, req.Name, req.Phone)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating profile of user %s", id)
		return nil, err
	}
	return user, nil
}
