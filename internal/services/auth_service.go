package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bantay-barangay/backend/internal/backend"
	"github.com/bantay-barangay/backend/internal/logger"
	"github.com/bantay-barangay/backend/internal/models"
	"github.com/bantay-barangay/backend/internal/rawvalue"
)

var (
	ErrProfileNotFound = errors.New("profile record missing for authenticated account")
	ErrRoleMismatch    = errors.New("account is registered under a different user type")
)

const usersPath = "users"

// AuthService resolves credentials plus a claimed role into a User
// record. The profile-existence and role-match checks are the
// authorization boundary: a Resident credential set cannot reach the
// Official view, selector or not.
type AuthService struct {
	backend backend.Service
}

func NewAuthService(b backend.Service) *AuthService {
	return &AuthService{backend: b}
}

// Login authenticates the credentials, loads the profile at
// users/{sessionID}, and verifies the stored user type matches the
// claimed one. Any failed check tears the session down; only when both
// pass does the caller get the resolved User and an active session.
func (s *AuthService) Login(ctx context.Context, email, password string, claimed models.UserType) (*models.User, error) {
	sessionID, err := s.backend.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	value, err := s.backend.ReadAt(ctx, usersPath+"/"+sessionID)
	if err != nil {
		s.backend.EndSession()
		return nil, err
	}

	user := rawvalue.Decode[models.User](value)
	if user == nil {
		logger.WithUser(sessionID).Warn("Authenticated account has no profile record")
		s.backend.EndSession()
		return nil, ErrProfileNotFound
	}

	if user.UserType != claimed {
		logger.WithUser(sessionID).WithField("stored_type", user.UserType.String()).Warn("User type does not match the claimed role")
		s.backend.EndSession()
		return nil, ErrRoleMismatch
	}

	if user.UserID == "" {
		user.UserID = sessionID
	}
	return user, nil
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Email       string
	Address     string
	PhoneNumber string
	Password    string
	UserType    models.UserType
}

// Register creates the credential pair and writes the profile record
// at users/{id}. A created account whose profile write fails is torn
// down so it cannot become a credential pair without a profile.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	sessionID, err := s.backend.Register(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserID:      sessionID,
		FirstName:   strings.TrimSpace(in.FirstName),
		MiddleName:  strings.TrimSpace(in.MiddleName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Address:     strings.TrimSpace(in.Address),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		UserType:    in.UserType,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	value, err := rawvalue.Encode(user)
	if err != nil {
		s.backend.EndSession()
		return nil, err
	}
	if err := s.backend.WriteAt(ctx, usersPath+"/"+sessionID, value); err != nil {
		s.backend.EndSession()
		return nil, fmt.Errorf("store profile: %w", err)
	}

	logger.WithUser(sessionID).WithField("user_type", user.UserType.String()).Info("Account registered")
	return user, nil
}

// Logout tears down the active session.
func (s *AuthService) Logout() {
	s.backend.EndSession()
}

func validateRegistration(in RegisterInput) error {
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrValidation)
	}
	if strings.TrimSpace(in.LastName) == "" {
		return fmt.Errorf("%w: last name is required", ErrValidation)
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email address is required", ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return fmt.Errorf("%w: phone number is required", ErrValidation)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if in.UserType != models.UserTypeOfficial && in.UserType != models.UserTypeResident {
		return fmt.Errorf("%w: user type must be Official or Resident", ErrValidation)
	}
	return nil
}
