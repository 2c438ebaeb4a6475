package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/auth"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/model"
	"expensetracker/internal/service"
)

type mockExpenseService struct{ mock.Mock }

func (m *mockExpenseService) Create(ctx context.Context, userID uuid.UUID, in service.CreateExpenseInput) (*model.Expense, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *mockExpenseService) Update(ctx context.Context, userID, id uuid.UUID, in service.UpdateExpenseInput) (*model.Expense, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *mockExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockExpenseService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Expense, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *mockExpenseService) List(ctx context.Context, userID uuid.UUID, q service.ExpenseListQuery) (*service.ExpensePage, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExpensePage), args.Error(1)
}

func TestExpenseHandler_Create(t *testing.T) {
	userID, categoryID := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		body       string
		setup      func(*mockExpenseService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: `{"title":"Lunch","amount":"12.50","categoryId":"` + categoryID.String() + `"}`,
			setup: func(m *mockExpenseService) {
				m.On("Create", mock.Anything, userID, mock.MatchedBy(func(in service.CreateExpenseInput) bool {
					return in.Title == "Lunch" && in.Amount.Equal(decimal.RequireFromString("12.5")) && in.CategoryID == categoryID && in.CreatedAt.IsZero()
				})).Return(&model.Expense{ID: uuid.New(), Title: "Lunch"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing amount",
			body:       `{"title":"Lunch","categoryId":"` + categoryID.String() + `"}`,
			setup:      func(*mockExpenseService) {},
			wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR",
		},
		{
			name:       "bad category id",
			body:       `{"title":"Lunch","amount":1,"categoryId":"x"}`,
			setup:      func(*mockExpenseService) {},
			wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR",
		},
		{
			name: "negative amount",
			body: `{"title":"Lunch","amount":-1,"categoryId":"` + categoryID.String() + `"}`,
			setup: func(m *mockExpenseService) {
				m.On("Create", mock.Anything, userID, mock.Anything).Return(nil, apperrors.ErrInvalidAmount)
			},
			wantStatus: http.StatusBadRequest, wantCode: "INVALID_AMOUNT",
		},
		{
			name: "foreign category",
			body: `{"title":"Lunch","amount":1,"categoryId":"` + categoryID.String() + `"}`,
			setup: func(m *mockExpenseService) {
				m.On("Create", mock.Anything, userID, mock.Anything).Return(nil, apperrors.ErrCategoryNotFound)
			},
			wantStatus: http.StatusNotFound, wantCode: "CATEGORY_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockExpenseService)
			tt.setup(svc)
			e := newTestEcho()
			e.POST("/expenses", NewExpenseHandler(svc, nil).Create, authenticated(userID))

			rec, env := do(t, e, http.MethodPost, "/expenses", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, env.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestExpenseHandler_ListParsesFilters(t *testing.T) {
	userID, categoryID := uuid.New(), uuid.New()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, userID, mock.MatchedBy(func(q service.ExpenseListQuery) bool {
		return q.CategoryID != nil && *q.CategoryID == categoryID &&
			q.From != nil && q.From.Equal(from) && q.To == nil &&
			q.Limit == 10 && q.Offset == 20
	})).Return(&service.ExpensePage{Items: []model.Expense{}, Total: 0, Limit: 10, Offset: 20}, nil)

	e := newTestEcho()
	e.GET("/expenses", NewExpenseHandler(svc, nil).List, authenticated(userID))

	rec, env := do(t, e, http.MethodGet, "/expenses?categoryId="+categoryID.String()+"&from=2024-03-01&limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0,"limit":10,"offset":20}`, string(env.Data))

	rec, env = do(t, e, http.MethodGet, "/expenses?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_QUERY", env.Code)
}

func TestExpenseHandler_DailyAndTotal(t *testing.T) {
	userID := uuid.New()
	analytics := new(mockAnalyticsService)
	analytics.On("DailyExpenses", mock.Anything, userID).Return([]service.DailyAmount{{Day: 1}, {Day: 2, Amount: 50}}, nil)
	analytics.On("TotalExpenses", mock.Anything, userID).Return(10.125, nil)

	h := NewExpenseHandler(new(mockExpenseService), analytics)
	e := newTestEcho()
	e.GET("/expenses/daily", h.Daily, authenticated(userID))
	e.GET("/expenses/total", h.Total, authenticated(userID))

	_, env := do(t, e, http.MethodGet, "/expenses/daily", "")
	assert.JSONEq(t, `[{"day":1,"amount":0},{"day":2,"amount":50}]`, string(env.Data))

	_, env = do(t, e, http.MethodGet, "/expenses/total", "")
	assert.Equal(t, "10.125", string(env.Data))
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(2) == nil {
		return args.String(0), args.String(1), nil, args.Error(3)
	}
	return args.String(0), args.String(1), args.Get(2).(*model.User), args.Error(3)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string, accessClaims *auth.Claims) error {
	return m.Called(ctx, refreshToken, accessClaims).Error(0)
}

func (m *mockAuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func TestAuthHandler(t *testing.T) {
	t.Run("register conflict", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("Register", mock.Anything, "a@example.com", "secret1", "Ada").Return(nil, service.ErrUserAlreadyExists)
		e := newTestEcho()
		e.POST("/auth/register", NewAuthHandler(svc).Register)

		rec, env := do(t, e, http.MethodPost, "/auth/register", `{"email":"a@example.com","password":"secret1","name":"Ada"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "USER_ALREADY_EXISTS", env.Code)
	})

	t.Run("login", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("Login", mock.Anything, "a@example.com", "secret1").Return("access", "refresh", &model.User{Email: "a@example.com"}, nil)
		e := newTestEcho()
		e.POST("/auth/login", NewAuthHandler(svc).Login)

		rec, env := do(t, e, http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "access", resp.AccessToken)
		assert.Equal(t, "refresh", resp.RefreshToken)
	})

	t.Run("login with bad credentials", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("Login", mock.Anything, "a@example.com", "nope").Return("", "", nil, service.ErrInvalidCredentials)
		e := newTestEcho()
		e.POST("/auth/login", NewAuthHandler(svc).Login)

		rec, env := do(t, e, http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Code)
	})

	t.Run("logout revokes bearer token", func(t *testing.T) {
		claims := &auth.Claims{UserID: uuid.New()}
		svc := new(mockAuthService)
		svc.On("Authenticate", mock.Anything, "access").Return(claims, nil)
		svc.On("Logout", mock.Anything, "refresh", claims).Return(nil)
		e := newTestEcho()
		e.POST("/auth/logout", NewAuthHandler(svc).Logout)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(`{"refreshToken":"refresh"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer access")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestExpenseHandler_ListDateOnlyToCoversWholeDay(t *testing.T) {
	userID := uuid.New()
	endOfDay := time.Date(2024, 3, 10, 23, 59, 59, 999999000, time.UTC)
	instant := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, userID, mock.MatchedBy(func(q service.ExpenseListQuery) bool {
		return q.To != nil && q.To.Equal(endOfDay) && q.From != nil && q.From.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	})).Return(&service.ExpensePage{Items: []model.Expense{}}, nil).Once()
	svc.On("List", mock.Anything, userID, mock.MatchedBy(func(q service.ExpenseListQuery) bool {
		return q.To != nil && q.To.Equal(instant)
	})).Return(&service.ExpensePage{Items: []model.Expense{}}, nil).Once()

	e := newTestEcho()
	e.GET("/expenses", NewExpenseHandler(svc, nil).List, authenticated(userID))

	rec, _ := do(t, e, http.MethodGet, "/expenses?from=2024-03-10&to=2024-03-10", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/expenses?to=2024-03-10T12:00:00Z", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
