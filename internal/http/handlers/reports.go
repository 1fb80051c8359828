package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chanchat/internal/http/middleware"
	"chanchat/internal/report"
)

type ReportHandler struct {
	Reports *report.Service
}

type fileReportReq struct {
	Label string `json:"label" binding:"required"`
}

func (h *ReportHandler) File(c *gin.Context) {
	userID := middleware.MustUserID(c)
	messageID := uintParam(c, "id")

	var req fileReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	err := h.Reports.File(messageID, userID, req.Label)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrInvalidLabel):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid report label"})
		case errors.Is(err, report.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed file report"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReportHandler) Summary(c *gin.Context) {
	userID := middleware.MustUserID(c)
	messageID := uintParam(c, "id")

	sum, err := h.Reports.SummarizeForViewer(messageID, userID)
	if err != nil {
		if errors.Is(err, report.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed summarize reports"})
		return
	}

	c.JSON(http.StatusOK, sum)
}
