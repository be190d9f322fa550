package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/service"
)

type AppointmentHandler struct {
	bookingSvc *service.BookingService
	apptSvc    *service.AppointmentService
}

func NewAppointmentHandler(bookingSvc *service.BookingService, apptSvc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{bookingSvc: bookingSvc, apptSvc: apptSvc}
}

// ListSlots exposes the availability grid. The response is advisory: a slot
// shown available can still come back 409 at booking time.
func (h *AppointmentHandler) ListSlots(c *gin.Context) {
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		respondError(c, 400, "date query parameter is required (YYYY-MM-DD)")
		return
	}
	slots, err := h.bookingSvc.ListAvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, slots)
}

type bookRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
	Date     string    `json:"date" binding:"required"`
	Time     string    `json:"time" binding:"required"`
	Notes    string    `json:"notes"`
	Urgent   bool      `json:"urgent"`
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.bookingSvc.BookAppointment(c.Request.Context(), &appointment.BookAppointmentCommand{
		PatientID: claims.UserID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Notes:     req.Notes,
		Urgent:    req.Urgent,
	}, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.apptSvc.GetAppointment(c.Request.Context(), id, claims.UserID, string(claims.Role))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	q := &appointment.ListAppointmentsQuery{
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		st := appointment.Status(raw)
		if !st.IsValid() {
			respondError(c, 400, "invalid status filter")
			return
		}
		q.Status = &st
	}
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, 400, "invalid doctor_id filter")
			return
		}
		q.DoctorID = &id
	}

	page, err := h.apptSvc.ListAppointments(c.Request.Context(), q, claims.UserID, string(claims.Role), claims.DoctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

type transitionRequest struct {
	Status       appointment.Status `json:"status" binding:"required"`
	CurrentStage *string            `json:"current_stage"`
	Urgent       *bool              `json:"urgent"`
}

func (h *AppointmentHandler) TransitionStatus(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.apptSvc.TransitionStatus(c.Request.Context(), id, &service.TransitionCommand{
		Status:       req.Status,
		CurrentStage: req.CurrentStage,
		Urgent:       req.Urgent,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}
