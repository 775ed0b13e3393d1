package employee_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeEmployeeService struct {
	GetByIDFn         func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	GetSubordinatesFn func(ctx context.Context, superiorID string) ([]employee.SubordinateResponse, error)
}

func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeEmployeeService) GetSubordinates(ctx context.Context, superiorID string) ([]employee.SubordinateResponse, error) {
	return f.GetSubordinatesFn(ctx, superiorID)
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error map[string]any  `json:"error"`
}

func TestEmployeeHandler_GetMe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetByIDFn: func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
				assert.Equal(t, "E1", id)
				return employee.EmployeeResponse{ID: "E1", FullName: "Alice", Balance: 10, SuperiorID: "M1"}, nil
			},
		}
		h := employee.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/employees/me", nil)
		c.Set(string(middleware.ContextEmployeeID), "E1")

		h.GetMe(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)

		var got employee.EmployeeResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 10, got.Balance)
		assert.Equal(t, "M1", got.SuperiorID)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetByIDFn: func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
			},
		}
		h := employee.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/employees/me", nil)
		c.Set(string(middleware.ContextEmployeeID), "E404")

		h.GetMe(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "NOT_FOUND", env.Error["code"])
	})
}

func TestEmployeeHandler_GetSubordinates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeEmployeeService{
		GetSubordinatesFn: func(ctx context.Context, superiorID string) ([]employee.SubordinateResponse, error) {
			assert.Equal(t, "M1", superiorID)
			return []employee.SubordinateResponse{{ID: "E1", FullName: "Alice", Balance: 3}}, nil
		},
	}
	h := employee.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/employees/me/subordinates", nil)
	c.Set(string(middleware.ContextEmployeeID), "M1")

	h.GetSubordinates(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice")
}
