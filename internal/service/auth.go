package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/staynest/staynest-go/internal/media"
	"github.com/staynest/staynest-go/internal/metrics"
	"github.com/staynest/staynest-go/internal/model"
	"github.com/staynest/staynest-go/internal/repository"
)

const registeredMessage = "User registered successfully"

// AuthService handles registration and login.
type AuthService struct {
	users       UserStore
	hasher      PasswordHasher
	tokens      TokenIssuer
	media       Ingestor
	imagePolicy media.Policy
	metrics     AuthMetrics
	now         func() time.Time
}

// NewAuthService creates a new AuthService. m may be nil.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, ingestor Ingestor, imagePolicy media.Policy, m AuthMetrics) *AuthService {
	if m == nil {
		m = metrics.Nop{}
	}
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		media:       ingestor,
		imagePolicy: imagePolicy,
		metrics:     m,
		now:         time.Now,
	}
}

// Register creates a user from the form fields and the single profile image
// in images. The image is stored before the user record is written; if the
// record cannot be written the image is discarded again.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, images []media.Part) (model.RegisterResponse, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateRegistration(req); err != nil {
		return model.RegisterResponse{}, err
	}
	if len(images) == 0 {
		return model.RegisterResponse{}, media.ErrMissingAttachment
	}

	// Early uniqueness check; the store's unique index is authoritative.
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		s.metrics.RecordRegistration(metrics.OutcomeDuplicate)
		return model.RegisterResponse{}, ErrDuplicateIdentity
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return model.RegisterResponse{}, fmt.Errorf("looking up email: %w", err)
	}

	imagePath, err := s.media.Single(ctx, images, s.imagePolicy)
	if err != nil {
		if !media.IsValidationError(err) {
			s.metrics.RecordRegistration(metrics.OutcomeError)
			return model.RegisterResponse{}, fmt.Errorf("storing profile image: %w", err)
		}
		return model.RegisterResponse{}, err
	}

	user, err := s.createUser(ctx, req, imagePath)
	if err != nil {
		s.media.Discard(context.WithoutCancel(ctx), []string{imagePath})
		if errors.Is(err, ErrDuplicateIdentity) {
			s.metrics.RecordRegistration(metrics.OutcomeDuplicate)
		} else {
			s.metrics.RecordRegistration(metrics.OutcomeError)
		}
		return model.RegisterResponse{}, err
	}

	s.metrics.RecordRegistration(metrics.OutcomeSuccess)
	slog.InfoContext(ctx, "user registered", "user_id", user.ID)

	return model.RegisterResponse{
		Message: registeredMessage,
		User:    model.NewUserResponse(user),
	}, nil
}

func (s *AuthService) createUser(ctx context.Context, req model.RegisterRequest, imagePath string) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:               uuid.NewString(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		PasswordHash:     hash,
		ProfileImagePath: imagePath,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func validateRegistration(req model.RegisterRequest) error {
	var missing []string
	if req.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if req.LastName == "" {
		missing = append(missing, "lastName")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Login authenticates a user and returns a token with the user's public fields.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.RecordLogin(metrics.OutcomeNotFound)
			return model.AuthResponse{}, ErrIdentityNotFound
		}
		s.metrics.RecordLogin(metrics.OutcomeError)
		return model.AuthResponse{}, fmt.Errorf("looking up user: %w", err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeError)
		return model.AuthResponse{}, fmt.Errorf("verifying password: %w", err)
	}
	if !match {
		s.metrics.RecordLogin(metrics.OutcomeInvalid)
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeError)
		return model.AuthResponse{}, fmt.Errorf("issuing token: %w", err)
	}

	s.metrics.RecordLogin(metrics.OutcomeSuccess)

	return model.AuthResponse{
		Token: token,
		User:  model.NewUserResponse(user),
	}, nil
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrIdentityNotFound
		}
		return model.UserResponse{}, err
	}

	return model.NewUserResponse(user), nil
}
