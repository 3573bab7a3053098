package handler

import (
	"net/http"
	"time"

	"chatvault/backend/internal/models"
	"chatvault/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// messagePreview renders the truncated last-message line for chat lists.
func messagePreview(lm models.LastMessage) string {
	if lm.Text == "" {
		return "No messages yet"
	}
	if r := []rune(lm.Text); len(r) > 15 {
		return string(r[:15]) + "..."
	}
	return lm.Text
}

func (h *Handler) senderName(id string) string {
	if id == "" {
		return "Unknown"
	}
	user, err := h.Storage.FindUserByID(id)
	if err != nil {
		return "Unknown"
	}
	return user.Name
}

func lastMessageTime(lm models.LastMessage) *time.Time {
	if lm.At.IsZero() {
		return nil
	}
	t := lm.At
	return &t
}

// GetUsers lists every account except the caller, for the contact picker.
func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.Storage.ListUsersExcept(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// GetChatList returns the caller's direct chats as per-peer previews with
// unread counters.
func (h *Handler) GetChatList(c *gin.Context) {
	userID := currentUserID(c)

	chats, err := h.Storage.ListChatsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	previews := make([]models.ChatPreview, 0, len(chats))
	for _, chat := range chats {
		var otherID string
		for _, m := range chat.Members {
			if m != userID {
				otherID = m
				break
			}
		}
		if otherID == "" {
			continue
		}

		other, err := h.Storage.FindUserByID(otherID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
			return
		}

		// Only messages the other side sent to the caller count.
		unread, err := h.Storage.CountUnreadDirect(otherID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
			return
		}

		previews = append(previews, models.ChatPreview{
			ChatID:              chat.ID,
			UserID:              other.ID,
			Name:                other.Name,
			ProfilePic:          other.ProfilePic,
			LastMessage:         messagePreview(chat.LastMessage),
			LastMessageSender:   h.senderName(chat.LastMessage.SenderID),
			LastMessageSenderID: chat.LastMessage.SenderID,
			LatestMessageTime:   lastMessageTime(chat.LastMessage),
			UnreadCount:         unread,
		})
	}

	c.JSON(http.StatusOK, gin.H{"chats": previews})
}

func (h *Handler) GetProfilePic(c *gin.Context) {
	user, err := h.Storage.FindUserByID(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profilePic": user.ProfilePic})
}

// UploadProfilePic stores the uploaded picture in the blob store and points
// the user record at it.
func (h *Handler) UploadProfilePic(c *gin.Context) {
	userID := c.Param("userId")
	if userID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile picture."})
		return
	}

	file, header, err := c.Request.FormFile("profilePic")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	url, err := h.Blobs.Put(header.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Storage.UpdateProfilePic(userID, url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile picture updated", "profilePic": user.ProfilePic})
}

// DeleteAccount removes the caller's account, direct history and chat
// memberships, and walks them out of every group.
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID := c.Param("userId")
	if userID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own account."})
		return
	}

	if _, err := h.Storage.FindUserByID(userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	if err := h.Storage.DeleteAccount(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User account deleted. Group messages retained, but user removed from groups."})
}

// DeleteChat removes the caller from the pair chat with the given peer. The
// peer keeps their side of the summary.
func (h *Handler) DeleteChat(c *gin.Context) {
	peerID := c.Param("chatId")
	userID := c.Param("userId")
	if userID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You can only delete your own chats."})
		return
	}

	chat, err := h.Storage.FindChatByMembers(userID, peerID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	if err := h.Storage.RemoveChatMember(chat.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Chat deleted for the current user only"})
}
