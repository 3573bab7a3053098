package models

import "encoding/json"

// Event names accepted on the websocket, plus the two the server emits.
const (
	EventAddUser          = "addUser"
	EventRemoveUser       = "removeUser"
	EventSendMessage      = "sendMessage"
	EventJoinGroup        = "joinGroup"
	EventSendGroupMessage = "sendGroupMessage"

	EventReceiveMessage      = "receiveMessage"
	EventReceiveGroupMessage = "receiveGroupMessage"
)

// Envelope is the wire frame for both directions: a named event and its
// payload. Inbound payloads stay raw until the dispatcher knows the shape.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutEvent is a server-to-client frame ready for encoding.
type OutEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// AddUserPayload binds a user to the connection it arrived on. SocketID is
// part of the historical wire shape; the server trusts only its own
// connection identity, never the client-reported one.
type AddUserPayload struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
}

type RemoveUserPayload struct {
	UserID string `json:"userId"`
}

type SendMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

type SendGroupMessagePayload struct {
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

// ReceiveMessagePayload is what the receiver of a direct message gets pushed.
type ReceiveMessagePayload struct {
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
}
