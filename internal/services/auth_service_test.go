package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/pkg/jwt"
	"github.com/cafeteria/menu-backend/pkg/validator"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-key-for-testing-purposes"

var (
	testClient  = ClientInfo{IP: "10.0.0.1", UserAgent: "Mozilla/5.0"}
	userColumns = []string{"id", "username", "password", "role", "created_at"}
)

func setupAuthTest(t *testing.T) (*AuthService, sqlmock.Sqlmock, *LoginThrottle) {
	db, mock := setupServiceDB(t)

	throttle := NewLoginThrottle(DefaultLoginThrottleConfig(), testLogger())
	service, err := NewAuthService(
		database.NewUserRepository(db),
		database.NewStaffDirectoryRepository(db),
		jwt.NewService(testJWTSecret, time.Hour),
		throttle,
		nil,
		bcrypt.MinCost,
		testLogger(),
	)
	require.NoError(t, err)

	return service, mock, throttle
}

func expectEligibility(mock sqlmock.Sqlmock, username string, eligible bool) {
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM staff_directory WHERE LOWER\(TRIM\(full_name\)\) = \$1\)`).
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(eligible))
}

func expectUsernameExists(mock sqlmock.Sqlmock, username string, exists bool) {
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE username = \$1\)`).
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func TestSignup_NotEligibleRegardlessOfPassword(t *testing.T) {
	passwords := []string{"Passw0rd!", "weak", "", "no digits here!", "Sup3r$ecretLunch"}

	for _, password := range passwords {
		t.Run(password, func(t *testing.T) {
			service, mock, _ := setupAuthTest(t)

			expectEligibility(mock, "stranger danger", false)

			result, err := service.Signup(context.Background(), "  Stranger Danger ", password, testClient)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrNotEligible)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSignup_Success(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	expectEligibility(mock, "ama mensah", true)
	expectUsernameExists(mock, "ama mensah", false)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ama mensah", sqlmock.AnyArg(), "staff").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(7, "ama mensah", "$2a$04$hash", "staff", time.Now()))

	result, err := service.Signup(context.Background(), "Ama Mensah", "Passw0rd!", testClient)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.User.ID)
	assert.Equal(t, "staff", result.User.Role)

	claims, err := jwt.NewService(testJWTSecret, time.Hour).ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ama mensah", claims.Username)
	assert.Equal(t, "staff", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_WeakPassword(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	expectEligibility(mock, "ama mensah", true)

	_, err := service.Signup(context.Background(), "ama mensah", "password", testClient)
	var pwErr *validator.PasswordError
	assert.True(t, errors.As(err, &pwErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_PasswordTooLongForBcrypt(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	expectEligibility(mock, "ama mensah", true)

	_, err := service.Signup(context.Background(), "ama mensah", "Aa1!"+strings.Repeat("x", 70), testClient)
	var pwErr *validator.PasswordError
	require.True(t, errors.As(err, &pwErr))
	assert.Contains(t, pwErr.Error(), "at most 72 bytes")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_DuplicateUsername(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	expectEligibility(mock, "ama mensah", true)
	expectUsernameExists(mock, "ama mensah", true)

	_, err := service.Signup(context.Background(), "ama mensah", "Passw0rd!", testClient)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_DuplicateUsernameRace(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	expectEligibility(mock, "ama mensah", true)
	expectUsernameExists(mock, "ama mensah", false)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ama mensah", sqlmock.AnyArg(), "staff").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := service.Signup(context.Background(), "ama mensah", "Passw0rd!", testClient)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_MissingUsername(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	_, err := service.Signup(context.Background(), "   ", "Passw0rd!", testClient)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Success(t *testing.T) {
	service, mock, throttle := setupAuthTest(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)

	throttle.RecordFailure(testClient.IP, "kofi")

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 AND role = \$2`).
		WithArgs("kofi", "staff").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(3, "kofi", string(hash), "staff", time.Now()))

	result, err := service.LoginStaff(context.Background(), " KOFI ", "Passw0rd!", testClient)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 0, throttle.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	service, mock, throttle := setupAuthTest(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 AND role = \$2`).
		WithArgs("kofi", "admin").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "kofi", string(hash), "admin", time.Now()))

	_, err = service.LoginAdmin(context.Background(), "kofi", "Wrong0ne!", testClient)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, throttle.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownUserFailsUniformly(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 AND role = \$2`).
		WithArgs("ghost", "staff").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := service.LoginStaff(context.Background(), "ghost", "Passw0rd!", testClient)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_SixthAttemptThrottledBeforeCredentialCheck(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	for i := 0; i < 5; i++ {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 AND role = \$2`).
			WithArgs("kofi", "staff").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := service.LoginStaff(context.Background(), "kofi", "Wrong0ne!", testClient)
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	// No query is expected for the sixth attempt, even with a password
	// that would be correct.
	_, err := service.LoginStaff(context.Background(), "kofi", "Passw0rd!", testClient)
	var throttleErr *ThrottleError
	require.True(t, errors.As(err, &throttleErr))
	assert.True(t, throttleErr.RetryAfter.After(time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())

	// Another client address is not affected.
	mock.ExpectQuery(`SELECT (.+) FROM users`).
		WithArgs("kofi", "staff").
		WillReturnRows(sqlmock.NewRows(userColumns))
	_, err = service.LoginStaff(context.Background(), "kofi", "Wrong0ne!", ClientInfo{IP: "10.0.0.9"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupAdmin_Bootstrap(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	expectUsernameExists(mock, "root", false)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("root", sqlmock.AnyArg(), "admin").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "root", "$2a$04$hash", "admin", time.Now()))

	result, err := service.SignupAdmin(context.Background(), "Root", "Adm1n!pass", false, testClient)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, result.User.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupAdmin_ForbiddenAfterBootstrap(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := service.SignupAdmin(context.Background(), "intruder", "Adm1n!pass", false, testClient)
	assert.ErrorIs(t, err, ErrAdminSignupForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupAdmin_ByAdminSkipsBootstrapCheck(t *testing.T) {
	service, mock, _ := setupAuthTest(t)

	expectUsernameExists(mock, "second", true)

	_, err := service.SignupAdmin(context.Background(), "second", "Adm1n!pass", true, testClient)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
