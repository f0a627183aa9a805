package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/service"
	"github.com/gin-gonic/gin"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

// respondServiceError maps domain sentinel errors to a stable
// machine-readable code and the right HTTP status. Anything unmapped is an
// infrastructure fault and surfaces as a 500 without internal detail.
func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, appointment.ErrInvalidParticipants),
		errors.Is(err, appointment.ErrDateInPast),
		errors.Is(err, appointment.ErrInvalidTimeRange),
		errors.Is(err, appointment.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})

	case errors.Is(err, schedule.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TIME_RANGE"})

	case errors.Is(err, domain.ErrDoctorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "DOCTOR_NOT_FOUND"})

	case errors.Is(err, appointment.ErrAppointmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "APPOINTMENT_NOT_FOUND"})

	case errors.Is(err, schedule.ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "SCHEDULE_NOT_FOUND"})

	case errors.Is(err, schedule.ErrNoSchedule):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NO_SCHEDULE"})

	case errors.Is(err, schedule.ErrScheduleOverlap):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "SCHEDULE_OVERLAP"})

	case errors.Is(err, appointment.ErrTimeSlotUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "TIME_SLOT_NOT_AVAILABLE"})

	case errors.Is(err, appointment.ErrCancellationTooLate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "CANCELLATION_TOO_LATE"})

	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "INVALID_STATUS_TRANSITION"})

	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "EMAIL_TAKEN"})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied", Code: "FORBIDDEN"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials", Code: "INVALID_CREDENTIALS"})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "account is inactive", Code: "ACCOUNT_INACTIVE"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "INFRASTRUCTURE_ERROR"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error(), Code: "VALIDATION_ERROR"})
		return false
	}

	return true
}

func parseID(c *gin.Context, param string) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a positive integer", Code: "VALIDATION_ERROR"})
		return 0, false
	}
	return id, true
}

func callerFrom(c *gin.Context) *service.Caller {
	claims, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil
	}
	dc, ok := claims.(*domain.Claims)
	if !ok {
		return nil
	}
	return &service.Caller{
		UserID:    dc.UserID,
		Role:      string(dc.Role),
		IP:        c.ClientIP(),
		RequestID: c.GetString(ctxRequestIDKey),
	}
}
