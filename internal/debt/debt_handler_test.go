package debt_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-crewpay/internal/debt"
	debterrors "go-crewpay/internal/debt/errors"
	"go-crewpay/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeDebtService struct {
	createFn func(ctx context.Context, req debt.CreateDebtRequest) (debt.DebtInstrumentResponse, error)
	getFn    func(ctx context.Context, id string) (debt.DebtInstrumentResponse, error)
	listFn   func(ctx context.Context, filter debt.DebtListFilterRequest) ([]debt.DebtInstrumentResponse, response.SummaryMeta, error)
	applyFn  func(ctx context.Context, id string, amount int64) (debt.DebtInstrumentResponse, error)
	revertFn func(ctx context.Context, id string, amount int64) (debt.DebtInstrumentResponse, error)
}

func (f *fakeDebtService) Create(ctx context.Context, req debt.CreateDebtRequest) (debt.DebtInstrumentResponse, error) {
	return f.createFn(ctx, req)
}
func (f *fakeDebtService) GetByID(ctx context.Context, id string) (debt.DebtInstrumentResponse, error) {
	return f.getFn(ctx, id)
}
func (f *fakeDebtService) List(ctx context.Context, filter debt.DebtListFilterRequest) ([]debt.DebtInstrumentResponse, response.SummaryMeta, error) {
	return f.listFn(ctx, filter)
}
func (f *fakeDebtService) ApplySettlement(ctx context.Context, id string, amount int64) (debt.DebtInstrumentResponse, error) {
	return f.applyFn(ctx, id, amount)
}
func (f *fakeDebtService) RevertSettlement(ctx context.Context, id string, amount int64) (debt.DebtInstrumentResponse, error) {
	return f.revertFn(ctx, id, amount)
}

func TestDebtHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		employeeID := uuid.New().String()
		svc := &fakeDebtService{
			createFn: func(ctx context.Context, req debt.CreateDebtRequest) (debt.DebtInstrumentResponse, error) {
				assert.Equal(t, employeeID, req.EmployeeID)
				assert.Equal(t, debt.KindLoan, req.Kind)
				return debt.DebtInstrumentResponse{
					ID:         uuid.New().String(),
					EmployeeID: req.EmployeeID,
					Kind:       req.Kind,
					Amount:     req.Amount,
					Date:       req.Date,
					Status:     debt.StatusPending,
				}, nil
			},
		}

		h := debt.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + employeeID + `","kind":"LOAN","amount":150000,"date":"2026-03-10","description":"site loan"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/debts", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got debt.DebtInstrumentResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, debt.StatusPending, got.Status)
		assert.Equal(t, int64(150000), got.Amount)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := debt.NewHandler(&fakeDebtService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/debts", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative service error", func(t *testing.T) {
		svc := &fakeDebtService{
			createFn: func(ctx context.Context, req debt.CreateDebtRequest) (debt.DebtInstrumentResponse, error) {
				return debt.DebtInstrumentResponse{}, errors.New("create failed")
			},
		}
		h := debt.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + uuid.New().String() + `","kind":"LOAN","amount":100,"date":"2026-03-10"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/debts", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	})
}

func TestDebtHandler_Settle(t *testing.T) {
	t.Run("apply direction", func(t *testing.T) {
		instrumentID := uuid.New().String()
		svc := &fakeDebtService{
			applyFn: func(ctx context.Context, id string, amount int64) (debt.DebtInstrumentResponse, error) {
				assert.Equal(t, instrumentID, id)
				assert.Equal(t, int64(400), amount)
				return debt.DebtInstrumentResponse{ID: id, Amount: 1000, PaidAmount: 400, Status: debt.StatusPartial}, nil
			},
		}

		h := debt.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/debts/"+instrumentID+"/settlements", strings.NewReader(`{"amount":400,"direction":"apply"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: instrumentID}}

		h.Settle(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got debt.DebtInstrumentResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, debt.StatusPartial, got.Status)
	})

	t.Run("revert direction", func(t *testing.T) {
		instrumentID := uuid.New().String()
		svc := &fakeDebtService{
			revertFn: func(ctx context.Context, id string, amount int64) (debt.DebtInstrumentResponse, error) {
				return debt.DebtInstrumentResponse{ID: id, Amount: 1000, PaidAmount: 0, Status: debt.StatusPending}, nil
			},
		}

		h := debt.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/debts/"+instrumentID+"/settlements", strings.NewReader(`{"amount":400,"direction":"revert"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: instrumentID}}

		h.Settle(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeDebtService{
			applyFn: func(ctx context.Context, id string, amount int64) (debt.DebtInstrumentResponse, error) {
				return debt.DebtInstrumentResponse{}, debterrors.ErrInstrumentNotFound
			},
		}
		h := debt.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/debts/x/settlements", strings.NewReader(`{"amount":400,"direction":"apply"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.Settle(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestDebtHandler_List(t *testing.T) {
	employeeID := uuid.New().String()
	svc := &fakeDebtService{
		listFn: func(ctx context.Context, filter debt.DebtListFilterRequest) ([]debt.DebtInstrumentResponse, response.SummaryMeta, error) {
			assert.Equal(t, employeeID, filter.EmployeeID)
			return []debt.DebtInstrumentResponse{
				{ID: uuid.New().String(), EmployeeID: employeeID, Amount: 5000, Status: debt.StatusPending},
			}, response.SummaryMeta{TotalAmount: 5000, Count: 1}, nil
		},
	}

	h := debt.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/debts?employee_id="+employeeID, nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
	var meta response.SummaryMeta
	assert.NoError(t, json.Unmarshal(env.Meta, &meta))
	assert.Equal(t, int64(5000), meta.TotalAmount)
	assert.Equal(t, 1, meta.Count)
}
