package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
	"github.com/elokman/health-api/pkg/auth"
	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already registered")
)

type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	tokens   *auth.TokenIssuer
}

func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher, tokens *auth.TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates an account. Free-text fields are expected to be escaped by the caller.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, apperrors.NewConflict(ErrUserExists.Error(), ErrUserExists)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent registration can win between the check and the insert
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflict(ErrUserExists.Error(), err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies the credentials and issues a token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			log.Ctx(ctx).Warn().Msg("login attempt for unknown email")
			return "", nil, invalidCredentials()
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		log.Ctx(ctx).Warn().Int64("user_id", user.ID).Msg("login attempt with wrong password")
		return "", nil, invalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

func invalidCredentials() error {
	return &apperrors.AppError{
		Code:    apperrors.ErrUnauthorized,
		Message: ErrInvalidCredentials.Error(),
		Err:     ErrInvalidCredentials,
	}
}
