package handlers

import (
	"net/http"

	"assochub/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobRunner is the part of the scheduler exposed to platform operators
type JobRunner interface {
	RunNow(name string) error
	GetJobStatus() []background.JobStatus
}

type JobHandlers struct {
	scheduler JobRunner
}

func NewJobHandlers(scheduler JobRunner) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

// ListJobs reports last and next run of every background job
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.GetJobStatus(),
	})
}

// RunJob triggers a background job immediately
func (h *JobHandlers) RunJob(c echo.Context) error {
	name := c.Param("name")
	if err := h.scheduler.RunNow(name); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
