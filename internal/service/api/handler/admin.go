package handler

import (
	"net/http"

	"github.com/darkkaiser/cartpilot-server/internal/service/scheduler"
	"github.com/labstack/echo/v4"
)

// JobListResponse 스케줄 작업 목록 응답입니다.
type JobListResponse struct {
	Jobs []scheduler.Job `json:"jobs"`
}

// ListJobs 등록된 스케줄 작업과 다음 실행 예정 시각을 조회합니다.
//
// GET /api/v1/admin/jobs
func (h *Handler) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, JobListResponse{Jobs: h.deps.Scheduler.Jobs()})
}

// TriggerJob 스케줄 작업을 즉시 실행합니다.
//
// POST /api/v1/admin/jobs/:id/run
func (h *Handler) TriggerJob(c echo.Context) error {
	if err := h.deps.Scheduler.Trigger(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return NewSuccessResponse(c)
}

// RunMonitor 전체 가격 모니터링을 즉시 실행하고 집계 결과를 반환합니다.
//
// POST /api/v1/admin/monitor/run
func (h *Handler) RunMonitor(c echo.Context) error {
	result, err := h.deps.Monitor.Run(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
