package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/hivedeck-monitor/config"
)

// SettingsHandler exposes the agent's effective configuration
type SettingsHandler struct {
	cfg *config.Config
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(cfg *config.Config) *SettingsHandler {
	return &SettingsHandler{cfg: cfg}
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	protected := h.cfg.ProtectedPIDs
	if protected == nil {
		protected = []int32{}
	}

	c.JSON(http.StatusOK, gin.H{
		"port":            h.cfg.Port,
		"host":            h.cfg.Host,
		"allowed_origins": h.cfg.AllowedOrigins,
		"rate_limit_rps":  h.cfg.RateLimitRPS,
		"protected_pids":  protected,
		"force_kill":      h.cfg.ForceKill,
		"token_ttl":       h.cfg.TokenTTL.String(),
		"log_level":       h.cfg.LogLevel,
		"env_file":        h.cfg.EnvFile,
		// Never expose the key itself
		"api_key_configured": h.cfg.APIKey != "",
	})
}
