package admin

import (
	"log"
	"net/http"

	"github.com/anoixa/photo-gallery/api/common"
	"github.com/gin-gonic/gin"
)

// Stats 概览统计与近 30 天上传趋势
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.dashboard.GetStats(c.Request.Context())
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, stats)
}

// RefreshStats 丢弃统计缓存
func (h *Handler) RefreshStats(c *gin.Context) {
	if err := h.dashboard.RefreshCache(c.Request.Context()); err != nil {
		log.Printf("[Admin] failed to refresh stats cache: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to refresh statistics")
		return
	}
	common.RespondSuccessMessage(c, "Statistics cache cleared", nil)
}
