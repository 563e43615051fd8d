package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-crewpay/internal/payroll"
	payrollerrors "go-crewpay/internal/payroll/errors"

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
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	createFn        func(ctx context.Context, req payroll.CreatePayrollPeriodRequest) (payroll.PayrollPeriodResponse, error)
	getByIDFn       func(ctx context.Context, id string) (payroll.PayrollPeriodResponse, error)
	getByEmployeeFn func(ctx context.Context, employeeID string) ([]payroll.PayrollPeriodResponse, error)
	setStatusFn     func(ctx context.Context, id string, req payroll.SetPayrollStatusRequest) (payroll.PayrollPeriodResponse, error)
	deleteFn        func(ctx context.Context, id string) ([]string, error)
}

func (f *fakePayrollService) Create(ctx context.Context, req payroll.CreatePayrollPeriodRequest) (payroll.PayrollPeriodResponse, error) {
	return f.createFn(ctx, req)
}
func (f *fakePayrollService) GetByID(ctx context.Context, id string) (payroll.PayrollPeriodResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakePayrollService) GetByEmployee(ctx context.Context, employeeID string) ([]payroll.PayrollPeriodResponse, error) {
	return f.getByEmployeeFn(ctx, employeeID)
}
func (f *fakePayrollService) SetStatus(ctx context.Context, id string, req payroll.SetPayrollStatusRequest) (payroll.PayrollPeriodResponse, error) {
	return f.setStatusFn(ctx, id, req)
}
func (f *fakePayrollService) Delete(ctx context.Context, id string) ([]string, error) {
	return f.deleteFn(ctx, id)
}

func TestPayrollHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		employeeID := uuid.New().String()
		svc := &fakePayrollService{
			createFn: func(ctx context.Context, req payroll.CreatePayrollPeriodRequest) (payroll.PayrollPeriodResponse, error) {
				assert.Equal(t, employeeID, req.EmployeeID)
				return payroll.PayrollPeriodResponse{
					ID:         uuid.New().String(),
					EmployeeID: req.EmployeeID,
					Status:     payroll.StatusPending,
					NetSalary:  2850,
				}, nil
			},
		}

		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + employeeID + `","from_date":"2026-03-01","to_date":"2026-03-31","base_salary":3000,"allowances":200,"absent_days":2}`
		c.Request = httptest.NewRequest(http.MethodPost, "/payroll-periods", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got payroll.PayrollPeriodResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, int64(2850), got.NetSalary)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := payroll.NewHandler(&fakePayrollService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/payroll-periods", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative overlap conflict", func(t *testing.T) {
		svc := &fakePayrollService{
			createFn: func(ctx context.Context, req payroll.CreatePayrollPeriodRequest) (payroll.PayrollPeriodResponse, error) {
				return payroll.PayrollPeriodResponse{}, payrollerrors.ErrPeriodOverlap
			},
		}
		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_id":"` + uuid.New().String() + `","from_date":"2026-03-01","to_date":"2026-03-31","base_salary":3000}`
		c.Request = httptest.NewRequest(http.MethodPost, "/payroll-periods", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestPayrollHandler_SetStatus(t *testing.T) {
	periodID := uuid.New().String()
	svc := &fakePayrollService{
		setStatusFn: func(ctx context.Context, id string, req payroll.SetPayrollStatusRequest) (payroll.PayrollPeriodResponse, error) {
			assert.Equal(t, periodID, id)
			assert.Equal(t, payroll.StatusPaid, req.Status)
			return payroll.PayrollPeriodResponse{ID: id, Status: req.Status, Warnings: []string{"settlement apply skipped: instrument x not found"}}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/payroll-periods/"+periodID+"/status", strings.NewReader(`{"status":"PAID"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: periodID}}

	h.SetStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
	var got payroll.PayrollPeriodResponse
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, payroll.StatusPaid, got.Status)
	assert.Len(t, got.Warnings, 1)
}

func TestPayrollHandler_Delete(t *testing.T) {
	periodID := uuid.New().String()
	svc := &fakePayrollService{
		deleteFn: func(ctx context.Context, id string) ([]string, error) {
			assert.Equal(t, periodID, id)
			return nil, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/payroll-periods/"+periodID, nil)
	c.Params = gin.Params{{Key: "id", Value: periodID}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}
