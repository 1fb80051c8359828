package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chanchat/internal/chat"
	"chanchat/internal/http/middleware"
)

type MessageHandler struct {
	Chat *chat.Service
}

type messageReq struct {
	Text string `json:"text" binding:"required"`
}

func (h *MessageHandler) Create(c *gin.Context) {
	userID := middleware.MustUserID(c)
	channelID := uintParam(c, "id")

	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	msg, err := h.Chat.CreateMessage(channelID, userID, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "channel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed create message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

func (h *MessageHandler) Update(c *gin.Context) {
	userID := middleware.MustUserID(c)
	messageID := uintParam(c, "messageId")

	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	msg, err := h.Chat.EditMessage(messageID, userID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
		case errors.Is(err, chat.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "only the author can edit"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed edit message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": msg})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID := middleware.MustUserID(c)
	messageID := uintParam(c, "messageId")

	err := h.Chat.RemoveMessage(messageID, userID, middleware.IsAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
		case errors.Is(err, chat.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "only the author or an admin can delete"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed delete message"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
