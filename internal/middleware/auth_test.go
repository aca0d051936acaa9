package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserLookup is a mock implementation of UserLookup.
type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func TestAuthenticate(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret")
	require.NoError(t, err)

	user := &model.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com"}
	token, err := tokens.Issue(user.ID, false)
	require.NoError(t, err)

	other, err := auth.NewTokenManager("another-secret")
	require.NoError(t, err)
	forged, err := other.Issue(user.ID, false)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		cookie         string
		lookupUser     *model.User
		lookupErr      error
		expectLookup   bool
		expectedStatus int
		expectHandler  bool
		expectCleared  bool
	}{
		{
			name:           "Bearer header",
			header:         "Bearer " + token,
			lookupUser:     user,
			expectLookup:   true,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "Cookie",
			cookie:         token,
			lookupUser:     user,
			expectLookup:   true,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "Missing token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Non-bearer scheme",
			header:         "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Token signed with another secret",
			header:         "Bearer " + forged,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Garbage token",
			cookie:         "not-a-jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "User no longer exists",
			header:         "Bearer " + token,
			expectLookup:   true,
			expectedStatus: http.StatusUnauthorized,
			expectCleared:  true,
		},
		{
			name:           "Lookup failure",
			header:         "Bearer " + token,
			lookupErr:      errors.New("connection reset"),
			expectLookup:   true,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserLookup)
			if tt.expectLookup {
				var ret interface{}
				if tt.lookupUser != nil {
					ret = tt.lookupUser
				}
				users.On("GetByID", mock.Anything, user.ID).Return(ret, tt.lookupErr)
			}

			var seen *model.User
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = auth.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := Authenticate(tokens, users, "jwt", zerolog.Nop())(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/my-orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "jwt", Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectHandler {
				require.NotNil(t, seen)
				assert.Equal(t, user.ID, seen.ID)
			} else {
				assert.Nil(t, seen)
			}

			cleared := false
			for _, c := range w.Result().Cookies() {
				if c.Name == "jwt" && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.expectCleared, cleared)

			users.AssertExpectations(t)
		})
	}
}

func TestAuthenticate_MissingTokenMessage(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret")
	require.NoError(t, err)

	handler := Authenticate(tokens, new(MockUserLookup), "jwt", zerolog.Nop())(http.NotFoundHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"UNAUTHENTICATED","message":"token not provided"}`, w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		user           *model.User
		expectedStatus int
		expectHandler  bool
	}{
		{name: "Admin", user: &model.User{ID: uuid.New(), IsAdmin: true}, expectedStatus: http.StatusOK, expectHandler: true},
		{name: "Regular user", user: &model.User{ID: uuid.New()}, expectedStatus: http.StatusForbidden},
		{name: "No identity", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
			if tt.user != nil {
				req = req.WithContext(auth.WithUser(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()

			RequireAdmin(testHandler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
		})
	}
}
