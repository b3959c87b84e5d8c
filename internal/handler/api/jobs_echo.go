package api

import (
	"github.com/labstack/echo/v4"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/usecase"
	xhttp "MillionaireMaker/pkg/http"
	xlogger "MillionaireMaker/pkg/logger"
)

// JobsHandler queues long-running operations and reports their progress.
type JobsHandler struct {
	logger *xlogger.Logger
	jobs   *usecase.Jobs
}

func NewJobsHandler(logger *xlogger.Logger, jobs *usecase.Jobs) *JobsHandler {
	registerValidations()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &JobsHandler{logger: logger, jobs: jobs}
}

func (h *JobsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/jobs")
	g.POST("/:kind/:game", h.Enqueue)
	g.GET("/:id", h.Status)
}

func (h *JobsHandler) Enqueue(c echo.Context) error {
	req := &models.JobRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.jobs.Enqueue(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, "enqueue", err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/jobs/"+res.ID)
	return xhttp.AcceptedResponse(c, res)
}

func (h *JobsHandler) Status(c echo.Context) error {
	req := &models.JobStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.jobs.Status(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, "job_status", err)
	}
	return xhttp.SuccessResponse(c, res)
}
