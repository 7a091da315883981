package handler

import (
	"errors"
	"net/http"

	"jamef-tracker/internal/core/logger"
	jobsdomain "jamef-tracker/internal/features/jobs/domain"
	"jamef-tracker/internal/features/jobs/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TrackingHandler handles HTTP requests for the async tracking lifecycle.
type TrackingHandler struct {
	jobs        *service.JobService
	defaultCNPJ string
	validate    *validator.Validate
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(jobs *service.JobService, defaultCNPJ string) *TrackingHandler {
	return &TrackingHandler{
		jobs:        jobs,
		defaultCNPJ: defaultCNPJ,
		validate:    validator.New(),
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// SubmitResponse is returned when a tracking job has been accepted.
type SubmitResponse struct {
	// JobID identifies the job for later polling.
	JobID string `json:"job_id"`
	// Status is always "processing" at submission time.
	Status string `json:"status"`
	// Message tells the caller where to poll.
	Message string `json:"message"`
}

// HealthResponse is the liveness payload of GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// rayID extracts the request id set by the requestid middleware.
func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// Health godoc
// @Summary Liveness check
// @Description Reports that the API is up.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router / [get]
func (h *TrackingHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Message: "Jamef Rastreamento API rodando",
	})
}

// Track godoc
// @Summary Start a tracking job
// @Description Submits an asynchronous lookup for an invoice number. Returns a job id to poll on /status/{job_id}.
// @Tags tracking
// @Produce json
// @Param numero_nf path string true "Invoice (nota fiscal) number"
// @Param cnpj query string false "Payer CNPJ (14 digits); defaults to the configured one"
// @Success 202 {object} SubmitResponse
// @Failure 400 {object} ErrorResponse
// @Router /rastrear/{numero_nf} [get]
func (h *TrackingHandler) Track(c *fiber.Ctx) error {
	invoice := c.Params("numero_nf")
	if err := h.validate.Var(invoice, "required,numeric"); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "numero_nf must be a numeric invoice number",
			RayID:   rayID(c),
		})
	}

	cnpj := c.Query("cnpj", h.defaultCNPJ)
	if err := h.validate.Var(cnpj, "required,len=14,numeric"); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "cnpj must be a 14-digit numeric document",
			RayID:   rayID(c),
		})
	}

	jobID := h.jobs.Submit(invoice, cnpj)

	logger.Get().Info("Tracking job submitted",
		zap.String("job_id", jobID),
		zap.String("invoice", invoice),
		zap.String("ray_id", rayID(c)),
	)

	return c.Status(http.StatusAccepted).JSON(SubmitResponse{
		JobID:   jobID,
		Status:  string(jobsdomain.StatusProcessing),
		Message: "consulta em andamento, acompanhe em /status/" + jobID,
	})
}

// Status godoc
// @Summary Poll a tracking job
// @Description Returns the job's current state; the result or error appears once the job is terminal.
// @Tags tracking
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} jobsdomain.Job
// @Failure 404 {object} ErrorResponse
// @Router /status/{job_id} [get]
func (h *TrackingHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("job_id")

	job, err := h.jobs.Poll(jobID)
	if err != nil {
		if errors.Is(err, jobsdomain.ErrJobNotFound) {
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Message: "job not found or expired",
				RayID:   rayID(c),
			})
		}

		logger.Get().Error("Failed to poll job",
			zap.String("job_id", jobID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(job)
}
