package handler

import (
	"net/http"

	"chatvault/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
	Image      string `json:"image"`
}

// SendMessage persists a direct message over plain HTTP. No live push
// happens on this path; clients that want delivery use the websocket event.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SenderID == "" || req.ReceiverID == "" || (req.Text == "" && req.Image == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "senderId, receiverId and text or image are required"})
		return
	}

	msg := &models.DirectMessage{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Image:      req.Image,
	}
	if err := h.Storage.SaveDirectMessage(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetConversation returns the history between two users, oldest first.
func (h *Handler) GetConversation(c *gin.Context) {
	msgs, err := h.Storage.ListConversation(c.Param("senderId"), c.Param("receiverId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// MarkRead flips every unread message from the given peer to the caller.
// Idempotent: a second call finds nothing left to flip.
func (h *Handler) MarkRead(c *gin.Context) {
	peerID := c.Param("chatId")
	if err := h.Storage.MarkDirectRead(peerID, currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark messages as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Messages marked as read"})
}
