package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/jarbudget-backend/internal/api"
	"github.com/eshaffer321/jarbudget-backend/internal/api/dto"
	"github.com/eshaffer321/jarbudget-backend/internal/application/service"
	"github.com/eshaffer321/jarbudget-backend/internal/infrastructure/storage"
)

func newTestServer(t *testing.T) (*api.Server, *storage.MockRepository) {
	t.Helper()
	repo := storage.NewMockRepository()
	jars := service.NewJarService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	server := api.NewServer(api.DefaultConfig(), jars, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return server, repo
}

func doJSON(t *testing.T, server *api.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListJars_EmptyOwner(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/owners/erick/jars", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	response := decode[dto.JarListResponse](t, rec)
	assert.Equal(t, 0, response.Count)
	assert.Empty(t, response.Jars)
}

func TestCreateJars_EndToEnd(t *testing.T) {
	server, repo := newTestServer(t)
	require.NoError(t, repo.SaveSettings(&storage.UserSettings{Owner: "erick", TotalIncome: 5000}))

	rec := doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:        []string{"rent", "food"},
		Descriptions: []string{"Housing", "Food"},
		Percents:     []float64{0.5, 0.5},
		Confidence:   0.9,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	response := decode[dto.MutationResponse](t, rec)
	require.Len(t, response.Jars, 2)
	assert.Equal(t, "rent", response.Jars[0].Name)
	assert.InDelta(t, 2500.0, response.Jars[0].Amount, 1e-6)
	assert.Empty(t, response.Report.Changes)
	assert.Equal(t, 0.9, response.Confidence)
	assert.NotEmpty(t, response.OperationID)

	// Second create rebalances and reports the before/after pairs.
	rec = doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:    []string{"vacation"},
		Percents: []float64{0.2},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	response = decode[dto.MutationResponse](t, rec)
	require.Len(t, response.Report.Changes, 2)
	assert.Equal(t, "rent", response.Report.Changes[0].Name)
	assert.InDelta(t, 0.5, response.Report.Changes[0].OldPercent, 1e-9)
	assert.InDelta(t, 0.4, response.Report.Changes[0].NewPercent, 1e-9)
	assert.NotEmpty(t, response.Report.Summary)
}

func TestCreateJars_LengthMismatch(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:    []string{"a", "b"},
		Percents: []float64{0.5},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	apiErr := decode[dto.APIError](t, rec)
	assert.Equal(t, dto.ErrCodeValidation, apiErr.Code)
}

func TestCreateJars_InvalidJSON(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/owners/erick/jars",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decode[dto.APIError](t, rec)
	assert.Equal(t, dto.ErrCodeBadRequest, apiErr.Code)
}

func TestCreateJars_DuplicateIs409(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:    []string{"rent", "food"},
		Percents: []float64{0.5, 0.5},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:    []string{"Rent"},
		Percents: []float64{0.1},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	apiErr := decode[dto.APIError](t, rec)
	assert.Equal(t, dto.ErrCodeDuplicateName, apiErr.Code)
	assert.Equal(t, []string{"Rent"}, apiErr.Jars)
}

func TestCreateJars_OverAllocationIs422(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:    []string{"mega"},
		Percents: []float64{1.5},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	apiErr := decode[dto.APIError](t, rec)
	assert.Equal(t, dto.ErrCodeInvalidAllocation, apiErr.Code)
}

func TestUpdateJars_EndToEnd(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:    []string{"a", "b", "c"},
		Percents: []float64{0.5, 0.3, 0.2},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	newPercent := 0.7
	rec = doJSON(t, server, http.MethodPut, "/api/owners/erick/jars", dto.UpdateJarsRequest{
		Jars: []dto.UpdateJarEntry{{Name: "a", NewPercent: &newPercent}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	response := decode[dto.MutationResponse](t, rec)
	require.Len(t, response.Jars, 3)
	assert.InDelta(t, 0.7, response.Jars[0].Percent, 1e-9)
	assert.InDelta(t, 0.18, response.Jars[1].Percent, 1e-9)
	assert.InDelta(t, 0.12, response.Jars[2].Percent, 1e-9)
}

func TestUpdateJars_UnknownJarIs404(t *testing.T) {
	server, _ := newTestServer(t)

	newPercent := 0.5
	rec := doJSON(t, server, http.MethodPut, "/api/owners/erick/jars", dto.UpdateJarsRequest{
		Jars: []dto.UpdateJarEntry{{Name: "ghost", NewPercent: &newPercent}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	apiErr := decode[dto.APIError](t, rec)
	assert.Equal(t, dto.ErrCodeNotFound, apiErr.Code)
	assert.Equal(t, []string{"ghost"}, apiErr.Jars)
}

func TestDeleteJars_EndToEnd(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:    []string{"a", "b", "c"},
		Percents: []float64{0.6, 0.3, 0.1},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodDelete, "/api/owners/erick/jars", dto.DeleteJarsRequest{
		Names:  []string{"a"},
		Reason: "loan paid off",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	response := decode[dto.MutationResponse](t, rec)
	require.Len(t, response.Jars, 2)
	assert.InDelta(t, 0.75, response.Jars[0].Percent, 1e-9)
	assert.InDelta(t, 0.25, response.Jars[1].Percent, 1e-9)
	assert.Contains(t, response.Report.Summary, "loan paid off")
}

func TestIncomeEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	// Unset income reads as zero.
	rec := doJSON(t, server, http.MethodGet, "/api/owners/erick/income", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	income := decode[dto.IncomeResponse](t, rec)
	assert.Equal(t, 0.0, income.TotalIncome)

	rec = doJSON(t, server, http.MethodPut, "/api/owners/erick/income", dto.SetIncomeRequest{
		TotalIncome: 5200,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/owners/erick/income", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	income = decode[dto.IncomeResponse](t, rec)
	assert.Equal(t, 5200.0, income.TotalIncome)

	// Non-positive income is rejected.
	rec = doJSON(t, server, http.MethodPut, "/api/owners/erick/income", dto.SetIncomeRequest{
		TotalIncome: -10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAmountsRequireIncome(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/owners/erick/jars", dto.CreateJarsRequest{
		Names:   []string{"rent"},
		Amounts: []float64{2500},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	apiErr := decode[dto.APIError](t, rec)
	assert.Equal(t, dto.ErrCodeDivisionByZero, apiErr.Code)
}

func TestOwnersAreIndependent(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/owners/alice/jars", dto.CreateJarsRequest{
		Names:    []string{"rent"},
		Percents: []float64{1.0},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/owners/bob/jars", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	response := decode[dto.JarListResponse](t, rec)
	assert.Equal(t, 0, response.Count)
}
