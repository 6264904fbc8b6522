package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
	logger   *zap.Logger
}

func NewSettingsHandler(settings *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.All(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) GetSetting(c *gin.Context) {
	raw, err := h.settings.Get(c.Request.Context(), domain.SettingKey(c.Param("key")))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// PutSetting accepts the raw JSON value for one known key; the schema is
// enforced per key before anything is stored.
func (h *SettingsHandler) PutSetting(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 || !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	key := domain.SettingKey(c.Param("key"))
	if err := h.settings.Put(c.Request.Context(), key, raw); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
