package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jobsadapters "jamef-tracker/internal/features/jobs/adapters"
	jobsdomain "jamef-tracker/internal/features/jobs/domain"
	jobsservice "jamef-tracker/internal/features/jobs/service"
	trackingdomain "jamef-tracker/internal/features/tracking/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedFetcher returns the same result for every lookup.
type fixedFetcher struct {
	result *trackingdomain.TrackingResult
	err    error
}

// Fetch implements trackingports.Fetcher.
func (f *fixedFetcher) Fetch(ctx context.Context, invoice, payerID string) (*trackingdomain.TrackingResult, error) {
	return f.result, f.err
}

func newTestApp(t *testing.T, fetcher *fixedFetcher) (*fiber.App, *jobsservice.JobService) {
	t.Helper()

	jobs := jobsservice.NewJobService(jobsadapters.NewMemoryRegistry(), fetcher, nil, time.Hour, time.Second)
	h := NewTrackingHandler(jobs, "48775191000190")

	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Header: "X-Ray-ID"}))
	app.Get("/", h.Health)
	app.Get("/rastrear/:numero_nf", h.Track)
	app.Get("/status/:job_id", h.Status)
	return app, jobs
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

// TestTrackingHandler_Health verifies the liveness payload.
func TestTrackingHandler_Health(t *testing.T) {
	app, _ := newTestApp(t, &fixedFetcher{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	decodeBody(t, resp, &health)
	assert.Equal(t, "ok", health.Status)
}

// TestTrackingHandler_Track_Accepted verifies submission answers 202 with a
// pollable job id before the lookup finishes.
func TestTrackingHandler_Track_Accepted(t *testing.T) {
	result := trackingdomain.NewResult("123456", "São Paulo", "Recife", "10/01", []trackingdomain.TrackingEvent{
		{Data: "01/01", Status: "Coletado"},
	})
	app, _ := newTestApp(t, &fixedFetcher{result: result})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/rastrear/123456", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submit SubmitResponse
	decodeBody(t, resp, &submit)
	assert.NotEmpty(t, submit.JobID)
	assert.Equal(t, "processing", submit.Status)
	assert.Contains(t, submit.Message, submit.JobID)
}

// TestTrackingHandler_Track_InvalidInvoice verifies non-numeric invoice
// numbers are rejected before any job is created.
func TestTrackingHandler_Track_InvalidInvoice(t *testing.T) {
	app, _ := newTestApp(t, &fixedFetcher{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/rastrear/abc123", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	decodeBody(t, resp, &errResp)
	assert.Contains(t, errResp.Message, "numero_nf")
	assert.NotEmpty(t, errResp.RayID)
}

// TestTrackingHandler_Track_InvalidCNPJ verifies a malformed payer document
// is rejected.
func TestTrackingHandler_Track_InvalidCNPJ(t *testing.T) {
	app, _ := newTestApp(t, &fixedFetcher{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/rastrear/123456?cnpj=12345", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	decodeBody(t, resp, &errResp)
	assert.Contains(t, errResp.Message, "cnpj")
}

// TestTrackingHandler_Status_Done verifies polling a finished job returns the
// full result payload.
func TestTrackingHandler_Status_Done(t *testing.T) {
	result := trackingdomain.NewResult("123456", "São Paulo", "Recife", "10/01", []trackingdomain.TrackingEvent{
		{Data: "01/01", Status: "Coletado"},
	})
	app, jobs := newTestApp(t, &fixedFetcher{result: result})

	jobID := jobs.Submit("123456", "48775191000190")

	deadline := time.Now().Add(2 * time.Second)
	var job *jobsdomain.Job
	for time.Now().Before(deadline) {
		j, err := jobs.Poll(jobID)
		require.NoError(t, err)
		if j.Status != jobsdomain.StatusProcessing {
			job = j
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.NotNil(t, job, "job never finished")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/status/"+jobID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var polled jobsdomain.Job
	decodeBody(t, resp, &polled)
	assert.Equal(t, jobID, polled.ID)
	assert.Equal(t, jobsdomain.StatusDone, polled.Status)
	require.NotNil(t, polled.Result)
	assert.Equal(t, "Coletado", polled.Result.StatusAtual)
}

// TestTrackingHandler_Status_Unknown verifies unknown or expired job ids
// answer 404 with the ray id for tracing.
func TestTrackingHandler_Status_Unknown(t *testing.T) {
	app, _ := newTestApp(t, &fixedFetcher{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/status/never-issued", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp ErrorResponse
	decodeBody(t, resp, &errResp)
	assert.Equal(t, "job not found or expired", errResp.Message)
	assert.NotEmpty(t, errResp.RayID)
}
