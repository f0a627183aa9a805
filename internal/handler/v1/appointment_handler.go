package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/service"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	apptSvc   *service.AppointmentService
	collector *metrics.Collector
}

func NewAppointmentHandler(apptSvc *service.AppointmentService, collector *metrics.Collector) *AppointmentHandler {
	return &AppointmentHandler{apptSvc: apptSvc, collector: collector}
}

type createAppointmentRequest struct {
	DoctorID  int64  `json:"doctor_id" binding:"required"`
	PatientID int64  `json:"patient_id"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Notes     string `json:"notes"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	caller := callerFrom(c)

	// Patients book for themselves; staff may book on a patient's behalf.
	patientID := req.PatientID
	if caller != nil && caller.Role == string(domain.RolePatient) {
		patientID = caller.UserID
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date: expected YYYY-MM-DD", Code: "VALIDATION_ERROR"})
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

	a, err := h.apptSvc.CreateAppointment(c.Request.Context(), &appointment.CreateCommand{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Notes:     req.Notes,
	}, caller)
	if err != nil {
		if errors.Is(err, appointment.ErrTimeSlotUnavailable) {
			h.collector.BookingConflictsTotal.Inc()
		}
		respondServiceError(c, err)
		return
	}

	h.collector.BookingsTotal.WithLabelValues(string(a.Status)).Inc()
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.apptSvc.GetAppointment(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

type updateAppointmentRequest struct {
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &appointment.UpdateCommand{Notes: req.Notes}

	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date: expected YYYY-MM-DD", Code: "VALIDATION_ERROR"})
			return
		}
		cmd.Date = &date
	}
	if req.StartTime != nil {
		start, err := schedule.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TIME_FORMAT"})
			return
		}
		cmd.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := schedule.ParseTimeOfDay(*req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TIME_FORMAT"})
			return
		}
		cmd.EndTime = &end
	}
	if req.Status != nil {
		status := appointment.Status(*req.Status)
		cmd.Status = &status
	}

	a, err := h.apptSvc.UpdateAppointment(c.Request.Context(), id, cmd, callerFrom(c))
	if err != nil {
		if errors.Is(err, appointment.ErrTimeSlotUnavailable) {
			h.collector.BookingConflictsTotal.Inc()
		}
		respondServiceError(c, err)
		return
	}

	h.collector.BookingsTotal.WithLabelValues(string(a.Status)).Inc()
	respondOK(c, a)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.apptSvc.CancelAppointment(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.BookingsTotal.WithLabelValues(string(a.Status)).Inc()
	respondOK(c, a)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.apptSvc.CompleteAppointment(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.BookingsTotal.WithLabelValues(string(a.Status)).Inc()
	respondOK(c, a)
}

// ListMine returns the authenticated user's own appointments: as patient for
// patient accounts, as doctor for doctor accounts.
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	caller := callerFrom(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	var (
		appts []*appointment.Appointment
		err   error
	)
	if caller.Role == string(domain.RoleDoctor) {
		appts, err = h.apptSvc.GetDoctorAppointments(c.Request.Context(), caller.UserID)
	} else {
		appts, err = h.apptSvc.GetPatientAppointments(c.Request.Context(), caller.UserID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, appts)
}

func (h *AppointmentHandler) ListForDoctor(c *gin.Context) {
	doctorID, ok := parseID(c, "id")
	if !ok {
		return
	}

	appts, err := h.apptSvc.GetDoctorAppointments(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, appts)
}
