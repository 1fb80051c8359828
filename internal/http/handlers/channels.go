package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chanchat/internal/chat"
	"chanchat/internal/http/middleware"
)

type ChannelHandler struct {
	Chat *chat.Service
}

type createChannelReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

func (h *ChannelHandler) Create(c *gin.Context) {
	userID := middleware.MustUserID(c)

	var req createChannelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	ch, err := h.Chat.CreateChannel(req.Name, req.Description, userID)
	if err != nil {
		if errors.Is(err, chat.ErrChannelNameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "channel name already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed create channel"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": ch})
}

func (h *ChannelHandler) List(c *gin.Context) {
	chans, err := h.Chat.ListChannels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed list channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": chans})
}

func (h *ChannelHandler) Delete(c *gin.Context) {
	userID := middleware.MustUserID(c)
	channelID := uintParam(c, "id")

	err := h.Chat.DeleteChannel(channelID, userID, middleware.IsAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrChannelNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "channel not found"})
		case errors.Is(err, chat.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "only the creator or an admin can delete a channel"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed delete channel"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ChannelHandler) ListMessages(c *gin.Context) {
	userID := middleware.MustUserID(c)
	channelID := uintParam(c, "id")

	msgs, err := h.Chat.ListMessages(channelID, userID)
	if err != nil {
		if errors.Is(err, chat.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "channel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": msgs})
}

func uintParam(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(v)
}
