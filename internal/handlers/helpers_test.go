package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/middleware"
	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/cafeteria/menu-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	userColumns      = []string{"id", "username", "password", "role", "created_at"}
	menuColumns      = []string{"id", "week_start", "deadline", "is_active", "created_at"}
	menuItemColumns  = []string{"id", "menu_id", "name", "description", "day", "created_at"}
	selectionColumns = []string{"id", "user_id", "menu_item_id", "selection_date", "created_at"}
)

type testEnv struct {
	router     *gin.Engine
	mock       sqlmock.Sqlmock
	jwtService *jwt.Service
}

// setupTestEnv wires the handlers over a mocked database the same way the
// server does, minus the audit log
func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtService := jwt.NewService("test-secret-key-123456789", time.Hour)
	throttle := services.NewLoginThrottle(services.DefaultLoginThrottleConfig(), logger)
	authService, err := services.NewAuthService(
		database.NewUserRepository(db),
		database.NewStaffDirectoryRepository(db),
		jwtService,
		throttle,
		nil,
		bcrypt.MinCost,
		logger,
	)
	require.NoError(t, err)

	authHandler := NewAuthHandler(authService, jwtService, logger)
	menuHandler := NewMenuHandler(services.NewMenuService(db, logger), logger)
	selectionHandler := NewSelectionHandler(services.NewSelectionService(db, logger), logger)
	adminHandler := NewAdminHandler(
		services.NewOverviewService(db),
		services.NewStaffService(database.NewStaffDirectoryRepository(db), database.NewUserRepository(db), logger),
		logger,
	)

	router := gin.New()
	router.POST("/api/auth/signup", authHandler.Signup)
	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/auth/admin/signup", middleware.OptionalAuth(jwtService), authHandler.AdminSignup)

	authed := router.Group("/api", middleware.AuthMiddleware(jwtService, logger))
	authed.POST("/selections", selectionHandler.Submit)
	authed.GET("/selections", selectionHandler.List)
	authed.DELETE("/menus", middleware.RequireRole("admin"), menuHandler.DeleteMenu)
	authed.POST("/menus", middleware.RequireRole("admin"), menuHandler.CreateMenu)

	admin := authed.Group("/admin", middleware.RequireRole("admin"))
	admin.POST("/staff-directory", adminHandler.AddStaffDirectoryEntry)
	admin.DELETE("/staff-directory/:id", adminHandler.DeleteStaffDirectoryEntry)

	return &testEnv{router: router, mock: mock, jwtService: jwtService}
}

func (e *testEnv) token(t *testing.T, userID int64, role string) string {
	token, err := e.jwtService.GenerateToken(userID, "user", role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
}
