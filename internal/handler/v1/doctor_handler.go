package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/pulseai-health/clinic-api/internal/domain/doctor"
)

type DoctorHandler struct {
	repo doctor.Repository
}

func NewDoctorHandler(repo doctor.Repository) *DoctorHandler {
	return &DoctorHandler{repo: repo}
}

func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.repo.ListAvailable(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doctors)
}

type createDoctorRequest struct {
	Name           string `json:"name" binding:"required"`
	Specialization string `json:"specialization" binding:"required"`
	Phone          string `json:"phone"`
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	d := &doctor.Doctor{
		Name:           req.Name,
		Specialization: req.Specialization,
		Phone:          req.Phone,
		Available:      true,
	}
	if err := h.repo.Create(c.Request.Context(), d); err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

func (h *DoctorHandler) SetAvailability(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req availabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.repo.SetAvailability(c.Request.Context(), id, *req.Available); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id, "available": *req.Available})
}
