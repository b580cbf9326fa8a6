package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/pkg/jwt"
	"github.com/cafeteria/menu-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// dummyPassword is hashed once at startup and compared against when the
// username does not exist, so unknown and known users take the same time
const dummyPassword = "not-a-real-password-Aa1!"

// AuthResult is returned by a successful signup or login
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService handles signup and login business logic
type AuthService struct {
	users      *database.UserRepository
	directory  *database.StaffDirectoryRepository
	jwtService *jwt.Service
	throttle   *LoginThrottle
	audit      *AuditService
	passwords  *validator.PasswordValidator
	bcryptCost int
	dummyHash  []byte
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service. audit may be nil to disable audit logging.
func NewAuthService(
	users *database.UserRepository,
	directory *database.StaffDirectoryRepository,
	jwtService *jwt.Service,
	throttle *LoginThrottle,
	audit *AuditService,
	bcryptCost int,
	logger *logrus.Logger,
) (*AuthService, error) {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hashing: %w", err)
	}

	return &AuthService{
		users:      users,
		directory:  directory,
		jwtService: jwtService,
		throttle:   throttle,
		audit:      audit,
		passwords:  validator.NewPasswordValidator(),
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		logger:     logger,
	}, nil
}

// Signup creates a staff account for a username found in the staff directory.
// Eligibility is decided before the password is looked at, so a name that is
// not in the directory is always rejected with ErrNotEligible.
func (s *AuthService) Signup(ctx context.Context, rawUsername, password string, client ClientInfo) (*AuthResult, error) {
	username := validator.NormalizeUsername(rawUsername)
	if username == "" {
		return nil, ErrMissingCredentials
	}

	eligible, err := s.directory.IsEligible(ctx, username)
	if err != nil {
		return nil, err
	}
	if !eligible {
		s.audit.LogSignup(ctx, nil, username, models.RoleStaff, client, false, "not_eligible")
		return nil, ErrNotEligible
	}

	if password == "" {
		return nil, ErrMissingCredentials
	}

	result, err := s.createAccount(ctx, username, password, models.RoleStaff)
	if err != nil {
		s.audit.LogSignup(ctx, nil, username, models.RoleStaff, client, false, failureReason(err))
		return nil, err
	}

	s.audit.LogSignup(ctx, &result.User.ID, username, models.RoleStaff, client, true, "")
	s.logger.WithFields(logrus.Fields{
		"user_id":  result.User.ID,
		"username": username,
	}).Info("Staff account created")

	return result, nil
}

// Login authenticates a user holding role. A locked out ip+username is
// rejected with a *ThrottleError before the credentials are examined.
func (s *AuthService) Login(ctx context.Context, role, rawUsername, password string, client ClientInfo) (*AuthResult, error) {
	username := validator.NormalizeUsername(rawUsername)

	if err := s.throttle.Check(client.IP, username); err != nil {
		var throttleErr *ThrottleError
		if errors.As(err, &throttleErr) {
			s.audit.LogThrottled(ctx, username, client, throttleErr.RetryAfter)
		}
		return nil, err
	}

	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByUsernameAndRole(ctx, username, role)
	if err != nil {
		return nil, err
	}

	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	compareErr := bcrypt.CompareHashAndPassword(hash, []byte(password))

	if user == nil || compareErr != nil {
		s.throttle.RecordFailure(client.IP, username)
		var userID *int64
		if user != nil {
			userID = &user.ID
		}
		s.audit.LogLogin(ctx, userID, username, role, client, false)
		return nil, ErrInvalidCredentials
	}

	s.throttle.Reset(client.IP, username)

	token, err := s.jwtService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.audit.LogLogin(ctx, &user.ID, username, role, client, true)
	return &AuthResult{Token: token, User: user}, nil
}

// createAccount validates the password, hashes it and inserts the user.
// Username uniqueness is checked up front and again by the unique index.
func (s *AuthService) createAccount(ctx context.Context, username, password, role string) (*AuthResult, error) {
	if err := s.passwords.Validate(password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, string(hash), role)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

func failureReason(err error) string {
	var pwErr *validator.PasswordError
	switch {
	case errors.As(err, &pwErr):
		return "weak_password"
	case errors.Is(err, ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, ErrAdminSignupForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
