package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/pulseai-health/clinic-api/internal/domain"
	"github.com/pulseai-health/clinic-api/pkg/auth"
	"github.com/pulseai-health/clinic-api/pkg/metrics"
)

type Handlers struct {
	Auth         *AuthHandler
	Doctor       *DoctorHandler
	Appointment  *AppointmentHandler
	Prescription *PrescriptionHandler
	Admin        *AdminHandler
}

// RegisterRoutes wires the v1 API onto the engine.
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtManager *auth.JWTManager, m *metrics.Collector) {
	r.Use(Observe(m))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	// Sweep endpoint sits outside the JWT group so the cron trigger can use
	// the shared sweep token.
	api.POST("/reminders/sweep", h.Admin.SweepAuth(jwtManager), h.Admin.RunReminderSweep)

	authed := api.Group("", RequireAuth(jwtManager))
	{
		authed.GET("/doctors", h.Doctor.List)
		authed.GET("/doctors/:id/slots", h.Appointment.ListSlots)

		authed.POST("/appointments", RequireRole(domain.RolePatient), h.Appointment.Book)
		authed.GET("/appointments", h.Appointment.List)
		authed.GET("/appointments/:id", h.Appointment.Get)
		authed.PATCH("/appointments/:id/status", h.Appointment.TransitionStatus)

		authed.POST("/prescriptions", RequireRole(domain.RoleDoctor), h.Prescription.Issue)
		authed.GET("/prescriptions", h.Prescription.List)
		authed.PATCH("/prescriptions/:id/fulfill", RequireRole(domain.RolePharmacy), h.Prescription.Fulfill)

		authed.GET("/medications", RequireRole(domain.RolePharmacy, domain.RoleDoctor), h.Prescription.ListMedications)
		authed.PATCH("/medications/:id/stock", RequireRole(domain.RolePharmacy), h.Prescription.AdjustStock)

		admin := authed.Group("/admin", RequireRole(domain.RoleAdmin))
		{
			admin.GET("/stats", h.Admin.Stats)
			admin.POST("/doctors", h.Doctor.Create)
			admin.PATCH("/doctors/:id/availability", h.Doctor.SetAvailability)
		}
	}
}
