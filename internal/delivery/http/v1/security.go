package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/monitor"
)

func (h *handlerImpl) HandleGetSecurityEvents(c *gin.Context) {
	events := h.recorder.Snapshot()
	if events == nil {
		events = []monitor.Entry{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *handlerImpl) HandleClearSecurityEvents(c *gin.Context) {
	h.recorder.Clear()
	h.logger.Info().Msg("cleared security events")
	c.Status(http.StatusNoContent)
}
