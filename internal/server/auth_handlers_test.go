package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newAuthTestServer(repo *MockUserRepository) (*fiber.App, *Server) {
	app := fiber.New()
	s := &Server{
		config:   &config.Config{JWTSecret: "test-secret-key-that-is-long-enough"},
		userRepo: repo,
	}
	app.Post("/auth/signup", s.Signup)
	app.Post("/auth/login", s.Login)
	return app, s
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name           string
		payload        map[string]string
		mockSetup      func(repo *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			payload: map[string]string{
				"username": "newwriter",
				"email":    "new@example.com",
				"password": "Sup3r$ecretPass",
			},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
					Run(func(args mock.Arguments) {
						args.Get(1).(*models.User).ID = 1
					}).
					Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Weak password",
			payload: map[string]string{
				"username": "newwriter",
				"email":    "new@example.com",
				"password": "short",
			},
			mockSetup:      func(repo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Bad username",
			payload: map[string]string{
				"username": "x",
				"email":    "new@example.com",
				"password": "Sup3r$ecretPass",
			},
			mockSetup:      func(repo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Duplicate email",
			payload: map[string]string{
				"username": "newwriter",
				"email":    "taken@example.com",
				"password": "Sup3r$ecretPass",
			},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "taken@example.com").
					Return(&models.User{ID: 2, Email: "taken@example.com"}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			app, _ := newAuthTestServer(repo)
			tt.mockSetup(repo)

			resp := postJSON(t, app, "/auth/signup", tt.payload)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusCreated {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.NotEmpty(t, body["token"])
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSignupDuplicateEmailReportsConflict(t *testing.T) {
	repo := new(MockUserRepository)
	app, _ := newAuthTestServer(repo)
	repo.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{ID: 2, Email: "taken@example.com"}, nil)

	resp := postJSON(t, app, "/auth/signup", map[string]string{
		"username": "newwriter",
		"email":    "taken@example.com",
		"password": "Sup3r$ecretPass",
	})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.CodeConflict, body.Code)
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Sup3r$ecretPass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := &models.User{ID: 7, Username: "writer", Email: "writer@example.com", Password: string(hashed)}

	tests := []struct {
		name           string
		payload        map[string]string
		mockSetup      func(repo *MockUserRepository)
		expectedStatus int
	}{
		{
			name:    "Success",
			payload: map[string]string{"email": "writer@example.com", "password": "Sup3r$ecretPass"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "writer@example.com").Return(stored, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "Wrong password",
			payload: map[string]string{"email": "writer@example.com", "password": "wrong-password!"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "writer@example.com").Return(stored, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "Unknown email",
			payload: map[string]string{"email": "ghost@example.com", "password": "Sup3r$ecretPass"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			app, _ := newAuthTestServer(repo)
			tt.mockSetup(repo)

			resp := postJSON(t, app, "/auth/login", tt.payload)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			repo.AssertExpectations(t)
		})
	}
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	_, s := newAuthTestServer(new(MockUserRepository))

	token, err := s.generateToken(42, "writer")
	require.NoError(t, err)

	userID, err := s.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	_, issuer := newAuthTestServer(new(MockUserRepository))

	token, err := issuer.generateToken(42, "writer")
	require.NoError(t, err)

	verifier := &Server{config: &config.Config{JWTSecret: "a-completely-different-secret!!"}}
	_, err = verifier.parseToken(token)
	assert.Error(t, err)
}
