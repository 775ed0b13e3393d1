package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaveService struct {
	submitFn      func(ctx context.Context, userID string, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error)
	decideFn      func(ctx context.Context, userID, id string, decision leave.Decision, req leave.DecideLeaveRequest) (leave.LeaveResponse, error)
	getByIDFn     func(ctx context.Context, userID, id string) (leave.LeaveResponse, error)
	listMineFn    func(ctx context.Context, userID string) ([]leave.LeaveResponse, error)
	listPendingFn func(ctx context.Context, userID string) ([]leave.LeaveResponse, error)
}

func (f *fakeLeaveService) Submit(ctx context.Context, userID string, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
	return f.submitFn(ctx, userID, req)
}
func (f *fakeLeaveService) Decide(ctx context.Context, userID, id string, decision leave.Decision, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
	return f.decideFn(ctx, userID, id, decision, req)
}
func (f *fakeLeaveService) Approve(ctx context.Context, userID, id string, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
	return f.decideFn(ctx, userID, id, leave.DecisionApprove, req)
}
func (f *fakeLeaveService) Reject(ctx context.Context, userID, id string, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
	return f.decideFn(ctx, userID, id, leave.DecisionReject, req)
}
func (f *fakeLeaveService) GetByID(ctx context.Context, userID, id string) (leave.LeaveResponse, error) {
	return f.getByIDFn(ctx, userID, id)
}
func (f *fakeLeaveService) ListMine(ctx context.Context, userID string) ([]leave.LeaveResponse, error) {
	return f.listMineFn(ctx, userID)
}
func (f *fakeLeaveService) ListPending(ctx context.Context, userID string) ([]leave.LeaveResponse, error) {
	return f.listPendingFn(ctx, userID)
}

type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

const actorUserID = "aaaaaaaa-0000-0000-0000-0000000000aa"

func newLeaveRouter(h *leave.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(string(middleware.ContextValidatedID), actorUserID)
		c.Next()
	})
	r.POST("/leaves", h.Submit)
	r.GET("/leaves", h.GetMine)
	r.GET("/leaves/pending", h.GetPending)
	r.GET("/leaves/:id", h.GetByID)
	r.POST("/leaves/decide/:id/approve", h.Approve)
	r.POST("/leaves/decide/:id/reject", h.Reject)
	return r
}

func TestLeaveHandler_Submit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, userID string, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, actorUserID, userID)
				assert.Equal(t, "2024-03-04", req.StartDate)
				return leave.LeaveResponse{ID: "L1", Status: "PENDING", TotalDays: 5}, nil
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		body := `{"leave_type_id":"11111111-1111-1111-1111-111111111111","start_date":"2024-03-04","end_date":"2024-03-08"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.LeaveResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 5, got.TotalDays)
	})

	t.Run("negative validation error", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, userID string, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
				t.Fatal("service must not be called")
				return leave.LeaveResponse{}, nil
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(`{"start_date":"2024-03-04"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative insufficient balance carries numbers", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, userID string, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.InsufficientBalance(2, 5)
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		body := `{"leave_type_id":"11111111-1111-1111-1111-111111111111","start_date":"2024-03-04","end_date":"2024-03-08"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INSUFFICIENT_BALANCE", env.Error.Code)
		assert.Equal(t, float64(2), env.Error.Details["current_balance"])
		assert.Equal(t, float64(5), env.Error.Details["requested_days"])
	})

	t.Run("negative conflicting period", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, userID string, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrConflictingPeriod
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		body := `{"leave_type_id":"11111111-1111-1111-1111-111111111111","start_date":"2024-03-06","end_date":"2024-03-07"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "CONFLICTING_PERIOD", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})
}

func TestLeaveHandler_Decide(t *testing.T) {
	t.Run("success approve without body", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(ctx context.Context, userID, id string, decision leave.Decision, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, "L1", id)
				assert.Equal(t, leave.DecisionApprove, decision)
				assert.Empty(t, req.Comment)
				balance := 25
				return leave.LeaveResponse{ID: id, Status: "APPROVED", BalanceAfter: &balance}, nil
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves/decide/L1/approve", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got leave.LeaveResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &got))
		assert.Equal(t, 25, *got.BalanceAfter)
	})

	t.Run("success reject with comment", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(ctx context.Context, userID, id string, decision leave.Decision, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, leave.DecisionReject, decision)
				assert.Equal(t, "team offsite", req.Comment)
				return leave.LeaveResponse{ID: id, Status: "REJECTED"}, nil
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves/decide/L1/reject", strings.NewReader(`{"comment":"team offsite"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative forbidden", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(ctx context.Context, userID, id string, decision leave.Decision, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrForbidden
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves/decide/L1/approve", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})

	t.Run("negative already decided", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(ctx context.Context, userID, id string, decision leave.Decision, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrAlreadyDecided
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves/decide/L1/reject", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ALREADY_DECIDED", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(ctx context.Context, userID, id string, decision leave.Decision, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrLeaveNotFound
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves/decide/L404/approve", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeaveHandler_Reads(t *testing.T) {
	t.Run("success list mine paginates", func(t *testing.T) {
		svc := &fakeLeaveService{
			listMineFn: func(ctx context.Context, userID string) ([]leave.LeaveResponse, error) {
				return []leave.LeaveResponse{{ID: "L1"}, {ID: "L2"}, {ID: "L3"}}, nil
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves?page=2&page_size=2", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got []leave.LeaveResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "L3", got[0].ID)
	})

	t.Run("success pending is routed before id", func(t *testing.T) {
		svc := &fakeLeaveService{
			listPendingFn: func(ctx context.Context, userID string) ([]leave.LeaveResponse, error) {
				return []leave.LeaveResponse{{ID: "L9", Status: "PENDING"}}, nil
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/pending", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative get by id forbidden", func(t *testing.T) {
		svc := &fakeLeaveService{
			getByIDFn: func(ctx context.Context, userID, id string) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrViewForbidden
			},
		}
		r := newLeaveRouter(leave.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/L1", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
