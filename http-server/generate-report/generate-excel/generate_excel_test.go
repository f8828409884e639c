package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bigchunguss42069/sketch-time-tool/internal/middleware/auth"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type MockGenerateExcelHandler struct {
	mock.Mock
}

func (m *MockGenerateExcelHandler) GenerateExcel(ctx context.Context, id storage.Identity, f service.CostObjectFilter) ([]byte, error) {
	args := m.Called(ctx, id, f)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

var admin = storage.Identity{WorkerID: "boss", TeamID: "montage", IsAdmin: true}

func request(url string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	return req.WithContext(auth.WithIdentity(req.Context(), admin))
}

func TestGenerateReportExcel(t *testing.T) {
	gen := new(MockGenerateExcelHandler)
	gen.On("GenerateExcel", mock.Anything, admin, service.CostObjectFilter{Status: "all"}).Return([]byte("PK\x03\x04"), nil)

	rr := httptest.NewRecorder()
	GenerateReportExcel(slog.Default(), gen).ServeHTTP(rr, request("/api/admin/report/excel?status=all"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "Kostenobjekte_montage_")
	assert.Equal(t, "PK\x03\x04", rr.Body.String())
	gen.AssertExpectations(t)
}

func TestGenerateReportExcel_Error(t *testing.T) {
	gen := new(MockGenerateExcelHandler)
	gen.On("GenerateExcel", mock.Anything, admin, mock.Anything).Return(nil, fmt.Errorf("x: %w", service.ErrForbidden))

	rr := httptest.NewRecorder()
	GenerateReportExcel(slog.Default(), gen).ServeHTTP(rr, request("/api/admin/report/excel"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
