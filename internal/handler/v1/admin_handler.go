package v1

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulseai-health/clinic-api/internal/domain"
	"github.com/pulseai-health/clinic-api/internal/service"
	jwtauth "github.com/pulseai-health/clinic-api/pkg/auth"
)

type AdminHandler struct {
	statsSvc    *service.StatsService
	reminderSvc *service.ReminderService
	sweepToken  string
}

func NewAdminHandler(statsSvc *service.StatsService, reminderSvc *service.ReminderService, sweepToken string) *AdminHandler {
	return &AdminHandler{statsSvc: statsSvc, reminderSvc: reminderSvc, sweepToken: sweepToken}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsSvc.Overview(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats)
}

type sweepRequest struct {
	// Now overrides the evaluation instant, RFC 3339. Meant for operational
	// replays; normal cron triggers leave it empty.
	Now string `json:"now"`
}

// RunReminderSweep triggers one reminder dispatch pass. It is invoked by the
// operational cron (at least hourly) or manually by an admin.
func (h *AdminHandler) RunReminderSweep(c *gin.Context) {
	var req sweepRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	now := time.Now()
	if req.Now != "" {
		parsed, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			respondError(c, 400, "now must be RFC 3339")
			return
		}
		now = parsed
	}

	summary, err := h.reminderSvc.Run(c.Request.Context(), now)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, summary)
}

// SweepAuth lets the cron trigger authenticate with a shared token instead
// of a user JWT; without a matching token the request must carry an admin
// bearer token.
func (h *AdminHandler) SweepAuth(jwtManager *jwtauth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.sweepToken != "" && c.GetHeader("X-Sweep-Token") == h.sweepToken {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(401, ErrorResponse{Error: "missing bearer token or sweep token"})
			return
		}
		claims, err := jwtManager.ValidateAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(403, ErrorResponse{Error: "access denied"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}
