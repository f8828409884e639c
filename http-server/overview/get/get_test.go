package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bigchunguss42069/sketch-time-tool/internal/middleware/auth"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service/overview"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type MockOverviewProvider struct {
	mock.Mock
}

func (m *MockOverviewProvider) Overview(ctx context.Context, id storage.Identity, worker string, year, monthIndex int) (service.WorkerOverview, error) {
	args := m.Called(ctx, id, worker, year, monthIndex)
	return args.Get(0).(service.WorkerOverview), args.Error(1)
}

func (m *MockOverviewProvider) TeamOverview(ctx context.Context, id storage.Identity, year, monthIndex int) ([]service.WorkerOverview, error) {
	args := m.Called(ctx, id, year, monthIndex)
	list, _ := args.Get(0).([]service.WorkerOverview)
	return list, args.Error(1)
}

var (
	anna  = storage.Identity{WorkerID: "anna", TeamID: "montage"}
	admin = storage.Identity{WorkerID: "boss", TeamID: "montage", IsAdmin: true}
)

func request(id storage.Identity, url string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	return req.WithContext(auth.WithIdentity(req.Context(), id))
}

func TestGetOverview_Success(t *testing.T) {
	provider := new(MockOverviewProvider)
	provider.On("Overview", mock.Anything, anna, "", 2025, 2).Return(service.WorkerOverview{
		WorkerID: "anna",
		Overview: overview.Overview{Year: 2025, MonthIndex: 2, MonthTotalHours: 160},
	}, nil)

	rr := httptest.NewRecorder()
	GetOverview(slog.Default(), provider).ServeHTTP(rr, request(anna, "/api/overview?year=2025&monthIndex=2"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp service.WorkerOverview
	require.NoError(t, render.DecodeJSON(rr.Body, &resp))
	assert.Equal(t, "anna", resp.WorkerID)
	assert.Equal(t, 160.0, resp.MonthTotalHours)

	provider.AssertExpectations(t)
}

func TestGetOverview_Forbidden(t *testing.T) {
	provider := new(MockOverviewProvider)
	provider.On("Overview", mock.Anything, anna, "beat", 2025, 2).
		Return(service.WorkerOverview{}, fmt.Errorf("x: %w", service.ErrForbidden))

	rr := httptest.NewRecorder()
	GetOverview(slog.Default(), provider).ServeHTTP(rr, request(anna, "/api/overview?year=2025&monthIndex=2&worker=beat"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGetOverview_BadQuery(t *testing.T) {
	provider := new(MockOverviewProvider)

	rr := httptest.NewRecorder()
	GetOverview(slog.Default(), provider).ServeHTTP(rr, request(anna, "/api/overview?year=abc"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	provider.AssertNotCalled(t, "Overview")
}

func TestGetTeamOverview(t *testing.T) {
	provider := new(MockOverviewProvider)
	provider.On("TeamOverview", mock.Anything, admin, 2025, 2).Return([]service.WorkerOverview{
		{WorkerID: "anna"},
		{WorkerID: "beat"},
	}, nil)

	rr := httptest.NewRecorder()
	GetTeamOverview(slog.Default(), provider).ServeHTTP(rr, request(admin, "/api/admin/overview?year=2025&monthIndex=2"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Workers []service.WorkerOverview `json:"workers"`
	}
	require.NoError(t, render.DecodeJSON(rr.Body, &resp))
	require.Len(t, resp.Workers, 2)
	assert.Equal(t, "beat", resp.Workers[1].WorkerID)

	provider.AssertExpectations(t)
}
