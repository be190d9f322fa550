package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulseai-health/clinic-api/internal/domain/pharmacy"
	"github.com/pulseai-health/clinic-api/internal/domain/prescription"
	"github.com/pulseai-health/clinic-api/internal/service"
)

type PrescriptionHandler struct {
	rxSvc   *service.PrescriptionService
	medRepo pharmacy.Repository
}

func NewPrescriptionHandler(rxSvc *service.PrescriptionService, medRepo pharmacy.Repository) *PrescriptionHandler {
	return &PrescriptionHandler{rxSvc: rxSvc, medRepo: medRepo}
}

type issueItemRequest struct {
	MedicationID uuid.UUID `json:"medication_id" binding:"required"`
	Dosage       string    `json:"dosage" binding:"required"`
	Days         int       `json:"days" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required"`
	Instructions string    `json:"instructions"`
}

type issueRequest struct {
	AppointmentID uuid.UUID          `json:"appointment_id" binding:"required"`
	Items         []issueItemRequest `json:"items" binding:"required"`
}

func (h *PrescriptionHandler) Issue(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	if claims.DoctorID == nil {
		respondError(c, 403, "doctor profile required to issue prescriptions")
		return
	}
	var req issueRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]prescription.IssueItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, prescription.IssueItem{
			MedicationID: it.MedicationID,
			Dosage:       it.Dosage,
			Days:         it.Days,
			Quantity:     it.Quantity,
			Instructions: it.Instructions,
		})
	}

	p, err := h.rxSvc.Issue(c.Request.Context(), &prescription.IssuePrescriptionCommand{
		AppointmentID: req.AppointmentID,
		DoctorID:      *claims.DoctorID,
		Items:         items,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *PrescriptionHandler) Fulfill(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.rxSvc.Fulfill(c.Request.Context(), id, claims.UserID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	q := &prescription.ListPrescriptionsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		st := prescription.Status(raw)
		if !st.IsValid() {
			respondError(c, 400, "invalid status filter")
			return
		}
		q.Status = &st
	}

	page, err := h.rxSvc.List(c.Request.Context(), q, claims.UserID, string(claims.Role), claims.DoctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *PrescriptionHandler) ListMedications(c *gin.Context) {
	if prefix := c.Query("search"); prefix != "" {
		meds, err := h.medRepo.SearchByName(c.Request.Context(), prefix, parseQueryInt(c, "limit", 10))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, meds)
		return
	}
	meds, err := h.medRepo.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, meds)
}

type stockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *PrescriptionHandler) AdjustStock(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req stockRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.medRepo.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, m)
}
