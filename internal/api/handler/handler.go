package handler

import (
	"chatvault/backend/internal/blob"
	"chatvault/backend/internal/chathub"
	"chatvault/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler carries the dependencies of the HTTP surface.
type Handler struct {
	Hub       *chathub.Hub
	Storage   storage.Storage
	Blobs     blob.Store
	JWTSecret []byte

	log *zap.Logger
}

func NewHandler(hub *chathub.Hub, s storage.Storage, blobs blob.Store, jwtSecret string, log *zap.Logger) *Handler {
	return &Handler{
		Hub:       hub,
		Storage:   s,
		Blobs:     blobs,
		JWTSecret: []byte(jwtSecret),
		log:       log,
	}
}

// RegisterRoutes wires the full request/response surface plus the websocket
// upgrade endpoint.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.String(200, "ChatVault API Working")
	})
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/verifytoken", h.VerifyToken)
	}

	user := r.Group("/user", h.Protect())
	{
		user.GET("/getusers", h.GetUsers)
		user.PUT("/chat/chatlist", h.GetChatList)
		user.GET("/profilepic", h.GetProfilePic)
		user.POST("/upload-profile-pic/:userId", h.UploadProfilePic)
		user.DELETE("/:userId", h.DeleteAccount)
		user.DELETE("/deletechat/:chatId/:userId", h.DeleteChat)
	}

	messages := r.Group("/messages")
	{
		messages.POST("/send", h.SendMessage)
		messages.GET("/:senderId/:receiverId", h.GetConversation)
		messages.PUT("/mark-read/:chatId", h.Protect(), h.MarkRead)
	}

	group := r.Group("/group", h.Protect())
	{
		group.POST("/create", h.CreateGroup)
		group.GET("/", h.ListGroups)
		group.GET("/:groupId", h.GetGroupMessages)
		group.POST("/:groupId/send", h.SendGroupMessage)
		group.PUT("/chatlist", h.GroupChatList)
		group.GET("/details/:groupId", h.GroupDetails)
		group.PUT("/mark-read/:groupId", h.MarkGroupRead)
		group.PUT("/exit/:groupId", h.ExitGroup)
	}
}
