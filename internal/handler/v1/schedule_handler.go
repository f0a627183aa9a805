package v1

import (
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/service"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	scheduleSvc     *service.ScheduleService
	availabilitySvc *service.AvailabilityService
	collector       *metrics.Collector
}

func NewScheduleHandler(
	scheduleSvc *service.ScheduleService,
	availabilitySvc *service.AvailabilityService,
	collector *metrics.Collector,
) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, availabilitySvc: availabilitySvc, collector: collector}
}

type setScheduleRequest struct {
	ID          int64  `json:"id"`
	DayOfWeek   int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	IsAvailable *bool  `json:"is_available" binding:"required"`
	Notes       string `json:"notes"`
}

// SetSchedule creates or updates a weekly availability window for the doctor
// in the path. Doctors may only edit their own schedules; admins may edit any.
func (h *ScheduleHandler) SetSchedule(c *gin.Context) {
	doctorID, ok := parseID(c, "id")
	if !ok {
		return
	}

	caller := callerFrom(c)
	if caller != nil && caller.Role == string(domain.RoleDoctor) && caller.UserID != doctorID {
		respondServiceError(c, service.ErrForbidden)
		return
	}

	var req setScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	start, err := schedule.ParseTimeOfDay(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TIME_FORMAT"})
		return
	}
	end, err := schedule.ParseTimeOfDay(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TIME_FORMAT"})
		return
	}

	w, err := h.scheduleSvc.SetSchedule(c.Request.Context(), &schedule.SetScheduleCommand{
		ID:          req.ID,
		DoctorID:    doctorID,
		DayOfWeek:   time.Weekday(req.DayOfWeek),
		StartTime:   start,
		EndTime:     end,
		IsAvailable: *req.IsAvailable,
		Notes:       req.Notes,
	}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.ScheduleWritesTotal.Inc()
	if req.ID == 0 {
		respondCreated(c, w)
		return
	}
	respondOK(c, w)
}

func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	doctorID, ok := parseID(c, "id")
	if !ok {
		return
	}

	windows, err := h.scheduleSvc.GetDoctorSchedules(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, windows)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	scheduleID, ok := parseID(c, "scheduleId")
	if !ok {
		return
	}

	if err := h.scheduleSvc.DeleteSchedule(c.Request.Context(), scheduleID, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.ScheduleWritesTotal.Inc()
	respondOK(c, gin.H{"deleted": scheduleID})
}

// GetAvailableSlots resolves a doctor's bookable slots for one date, supplied
// as ?date=YYYY-MM-DD.
func (h *ScheduleHandler) GetAvailableSlots(c *gin.Context) {
	doctorID, ok := parseID(c, "id")
	if !ok {
		return
	}

	raw := c.Query("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date: expected YYYY-MM-DD", Code: "VALIDATION_ERROR"})
		return
	}

	slots, err := h.availabilitySvc.GetAvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.SlotQueriesTotal.Inc()
	respondOK(c, slots)
}
