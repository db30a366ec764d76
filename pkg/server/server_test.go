package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/api"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

type mockAnalysis struct {
	mock.Mock
}

func (m *mockAnalysis) Snapshot(ctx context.Context) (domain.Snapshot, []domain.DealRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Snapshot), args.Get(1).([]domain.DealRecord), args.Error(2)
}

func (m *mockAnalysis) BuildMatrix(ctx context.Context, req domain.AnalysisRequest) (*domain.Matrix, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Matrix), args.Error(1)
}

func (m *mockAnalysis) StagnationReport(
	ctx context.Context,
	req domain.AnalysisRequest,
) ([]domain.StagnationRecord, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]domain.StagnationRecord), args.Error(1)
}

func (m *mockAnalysis) InvalidateSnapshot() {
	m.Called()
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Run(ctx context.Context) (store.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(store.Snapshot), args.Error(1)
}

type mockLister struct {
	mock.Mock
}

func (m *mockLister) List(ctx context.Context) ([]store.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.Snapshot), args.Error(1)
}

func testCatalog(t *testing.T) *pipeline.StageCatalog {
	t.Helper()
	c, err := pipeline.NewStageCatalog([]pipeline.StageMapping{
		{Field: "f_signup", Stage: "Sign-up"},
		{Field: "f_demo", Stage: "Demo Booked"},
	})
	require.NoError(t, err)
	return c
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockSvc := new(mockAnalysis)
	mockRef := new(mockRefresher)
	mockSnaps := new(mockLister)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Catalog:   testCatalog(t),
			Analysis:  mockSvc,
			Snapshots: mockSnaps,
			Refresher: mockRef,
			Logger:    logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	extractedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		method         string
		path           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "ListStages",
			method:         http.MethodGet,
			path:           "/api/v1/stages",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
			expected: []api.Stage{
				{Field: "f_signup", Name: "Sign-up"},
				{Field: "f_demo", Name: "Demo Booked"},
			},
			parseResponse: unmarshalResponse[[]api.Stage](),
		},
		{
			name:   "GetMatrix",
			method: http.MethodGet,
			path:   "/api/v1/matrix?from=2024-01-01&to=2024-01-15&frequency=weekly",
			setupMocks: func() {
				mockSvc.On("BuildMatrix", mock.Anything, domain.AnalysisRequest{
					From:      from,
					To:        to,
					Frequency: domain.FrequencyWeekly,
				}).Return(&domain.Matrix{
					Periods: []domain.Period{
						{Start: from, End: from.AddDate(0, 0, 7), Key: "2024-01-01"},
					},
					Rows: []domain.MatrixRow{
						{DealID: "1", DealName: "Acme", Cells: []string{"Sign-up"}},
					},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: api.Matrix{
				Periods: []api.Period{
					{Key: "2024-01-01", Start: "2024-01-01T00:00:00Z", End: "2024-01-08T00:00:00Z"},
				},
				Rows: []api.MatrixRow{
					{DealID: "1", DealName: "Acme", Cells: []string{"Sign-up"}},
				},
			},
			parseResponse: unmarshalResponse[api.Matrix](),
		},
		{
			name:           "GetMatrix_InvalidFromDate",
			method:         http.MethodGet,
			path:           "/api/v1/matrix?from=invalid&to=2024-01-15&frequency=weekly",
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expected:       nil,
			parseResponse:  nil,
		},
		{
			name:           "GetMatrix_UnknownFrequency",
			method:         http.MethodGet,
			path:           "/api/v1/matrix?from=2024-01-01&to=2024-01-15&frequency=hourly",
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expected:       nil,
			parseResponse:  nil,
		},
		{
			name:   "GetStagnation",
			method: http.MethodGet,
			path:   "/api/v1/stagnation?from=2024-01-01&to=2024-01-15&frequency=weekly&stagnant_threshold=2",
			setupMocks: func() {
				mockSvc.On("StagnationReport", mock.Anything, domain.AnalysisRequest{
					From:              from,
					To:                to,
					Frequency:         domain.FrequencyWeekly,
					StagnantOnly:      true,
					StagnantThreshold: 2,
				}).Return([]domain.StagnationRecord{
					{DealID: "1", DealName: "Acme", CurrentStage: "Sign-up", StagnantPeriods: 3, TotalPeriods: 3},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: []api.StagnationRecord{
				{DealID: "1", DealName: "Acme", CurrentStage: "Sign-up", StagnantPeriods: 3, TotalPeriods: 3},
			},
			parseResponse: unmarshalResponse[[]api.StagnationRecord](),
		},
		{
			name:   "ListSnapshots",
			method: http.MethodGet,
			path:   "/api/v1/snapshots",
			setupMocks: func() {
				mockSnaps.On("List", mock.Anything).Return([]store.Snapshot{
					{
						ID:          "20240201_000000",
						ExtractedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
						Source:      "hubspot",
						DealCount:   40,
					},
					{
						ID:          "20240301_120000",
						ExtractedAt: extractedAt,
						Source:      "hubspot",
						DealCount:   41,
					},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: []api.Snapshot{
				{ID: "20240201_000000", ExtractedAt: "2024-02-01T00:00:00Z", Source: "hubspot", DealCount: 40},
				{ID: "20240301_120000", ExtractedAt: "2024-03-01T12:00:00Z", Source: "hubspot", DealCount: 41},
			},
			parseResponse: unmarshalResponse[[]api.Snapshot](),
		},
		{
			name:   "GetLatestSnapshot",
			method: http.MethodGet,
			path:   "/api/v1/snapshots/latest",
			setupMocks: func() {
				mockSvc.On("Snapshot", mock.Anything).Return(
					domain.Snapshot{ID: "20240301_120000", ExtractedAt: extractedAt, Source: "hubspot"},
					[]domain.DealRecord{{ID: "1"}, {ID: "2"}},
					nil,
				)
			},
			expectedStatus: http.StatusOK,
			expected: api.Snapshot{
				ID:          "20240301_120000",
				ExtractedAt: "2024-03-01T12:00:00Z",
				Source:      "hubspot",
				DealCount:   2,
			},
			parseResponse: unmarshalResponse[api.Snapshot](),
		},
		{
			name:   "RefreshSnapshot",
			method: http.MethodPost,
			path:   "/api/v1/snapshots/refresh",
			setupMocks: func() {
				mockRef.On("Run", mock.Anything).Return(store.Snapshot{
					ID:          "20240302_000000",
					ExtractedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
					Source:      "hubspot",
					DealCount:   42,
				}, nil)
				mockSvc.On("InvalidateSnapshot").Return()
			},
			expectedStatus: http.StatusCreated,
			expected: api.Snapshot{
				ID:          "20240302_000000",
				ExtractedAt: "2024-03-02T00:00:00Z",
				Source:      "hubspot",
				DealCount:   42,
			},
			parseResponse: unmarshalResponse[api.Snapshot](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			if tc.parseResponse == nil {
				return
			}

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}

	mockSvc.AssertExpectations(t)
	mockRef.AssertExpectations(t)
	mockSnaps.AssertExpectations(t)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
