package handler

import (
	"net/http"

	"chatvault/backend/internal/models"
	"chatvault/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type createGroupRequest struct {
	GroupName string   `json:"groupName"`
	Members   []string `json:"members"`
}

// CreateGroup creates a group with the caller as admin. The admin is always
// part of the member set.
func (h *Handler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GroupName == "" || len(req.Members) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name and at least 2 members are required."})
		return
	}

	userID := currentUserID(c)
	members := pq.StringArray{}
	seen := map[string]bool{}
	for _, m := range append(req.Members, userID) {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
	}

	group := &models.GroupChat{
		GroupName: req.GroupName,
		Members:   members,
		Admin:     userID,
	}
	if err := h.Storage.CreateGroup(group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusCreated, group)
}

// populateMembers swaps member ids for user records, skipping deleted
// accounts.
func (h *Handler) populateMembers(ids []string, exclude string) ([]models.User, error) {
	keep := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			keep = append(keep, id)
		}
	}
	return h.Storage.FindUsersByIDs(keep)
}

// ListGroups returns the caller's groups with populated member records.
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.Storage.ListGroupsForUser(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	out := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		members, err := h.populateMembers(g.Members, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
			return
		}
		out = append(out, gin.H{
			"id":          g.ID,
			"groupName":   g.GroupName,
			"admin":       g.Admin,
			"members":     members,
			"lastMessage": g.LastMessage,
			"createdAt":   g.CreatedAt,
			"updatedAt":   g.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

// GetGroupMessages returns a group's history, oldest first, with sender
// names joined in.
func (h *Handler) GetGroupMessages(c *gin.Context) {
	msgs, err := h.Storage.ListGroupMessages(c.Param("groupId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

type sendGroupMessageRequest struct {
	Text string `json:"text"`
}

// SendGroupMessage persists a group message over plain HTTP. Like the
// direct counterpart, this path does not broadcast.
func (h *Handler) SendGroupMessage(c *gin.Context) {
	var req sendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text is required."})
		return
	}

	msg := &models.GroupMessage{
		ChatID:   c.Param("groupId"),
		SenderID: currentUserID(c),
		Text:     req.Text,
		IsReadBy: pq.StringArray{},
	}
	if err := h.Storage.SaveGroupMessage(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GroupChatList returns the caller's groups as previews with unread
// counters.
func (h *Handler) GroupChatList(c *gin.Context) {
	userID := currentUserID(c)

	groups, err := h.Storage.ListGroupsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	previews := make([]models.GroupPreview, 0, len(groups))
	for _, g := range groups {
		members, err := h.populateMembers(g.Members, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
			return
		}
		unread, err := h.Storage.CountUnreadGroup(g.ID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
			return
		}

		previews = append(previews, models.GroupPreview{
			GroupID:             g.ID,
			GroupName:           g.GroupName,
			Admin:               g.Admin,
			Members:             members,
			LastMessage:         messagePreview(g.LastMessage),
			LastMessageSender:   h.senderName(g.LastMessage.SenderID),
			LastMessageSenderID: g.LastMessage.SenderID,
			LatestMessageTime:   lastMessageTime(g.LastMessage),
			UnreadCount:         unread,
		})
	}

	c.JSON(http.StatusOK, gin.H{"chats": previews})
}

// GroupDetails returns one group with populated member records.
func (h *Handler) GroupDetails(c *gin.Context) {
	group, err := h.Storage.FindGroupByID(c.Param("groupId"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	members, err := h.populateMembers(group.Members, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          group.ID,
		"groupName":   group.GroupName,
		"admin":       group.Admin,
		"members":     members,
		"lastMessage": group.LastMessage,
		"createdAt":   group.CreatedAt,
		"updatedAt":   group.UpdatedAt,
	})
}

// MarkGroupRead adds the caller to isReadBy on every message of the group.
// Idempotent by construction.
func (h *Handler) MarkGroupRead(c *gin.Context) {
	if err := h.Storage.MarkGroupRead(c.Param("groupId"), currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark messages as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read"})
}

// ExitGroup removes the caller from the group. The last member out deletes
// the group; an exiting admin hands the role to the first remaining member.
func (h *Handler) ExitGroup(c *gin.Context) {
	err := h.Storage.ExitGroup(c.Param("groupId"), currentUserID(c))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Left the group"})
}
