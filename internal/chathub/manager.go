package chathub

import (
	"encoding/json"

	"chatvault/backend/internal/models"
	"chatvault/backend/internal/storage"

	"go.uber.org/zap"
)

// InboundEvent is a decoded frame from one connection, queued for the hub's
// dispatch loop.
type InboundEvent struct {
	Conn     Client
	Envelope models.Envelope
}

// Hub owns the set of live connections and runs the event dispatch loop.
// All connection-map mutation and pipeline work happens on that single
// loop, so a handler for one inbound event runs to completion before the
// next one starts.
type Hub struct {
	Clients map[string]Client // connID -> client

	RegisterCh   chan Client
	UnregisterCh chan Client
	InboundCh    chan InboundEvent

	Presence *PresenceRegistry
	Rooms    *RoomCoordinator
	Storage  storage.Storage

	log *zap.Logger
}

func NewHub(s storage.Storage, log *zap.Logger) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		InboundCh:    make(chan InboundEvent),
		Presence:     NewPresenceRegistry(),
		Rooms:        NewRoomCoordinator(),
		Storage:      s,
		log:          log,
	}
}

// Run is the hub's main loop. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client.GetID()] = client
			h.log.Info("connection registered",
				zap.String("conn", client.GetID()),
				zap.String("user", client.GetUserID()))

		case client := <-h.UnregisterCh:
			if _, ok := h.Clients[client.GetID()]; !ok {
				continue
			}
			delete(h.Clients, client.GetID())
			h.Presence.UnbindConn(client.GetID())
			h.Rooms.DropConn(client.GetID())
			client.Close()
			h.log.Info("connection dropped", zap.String("conn", client.GetID()))

		case ev := <-h.InboundCh:
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev InboundEvent) {
	switch ev.Envelope.Event {
	case models.EventAddUser:
		var p models.AddUserPayload
		if err := json.Unmarshal(ev.Envelope.Data, &p); err != nil || p.UserID == "" {
			h.log.Warn("bad addUser payload", zap.String("conn", ev.Conn.GetID()))
			return
		}
		// Bind to the connection the event arrived on, not the
		// client-reported socket id.
		h.Presence.Bind(p.UserID, ev.Conn.GetID())

	case models.EventRemoveUser:
		var p models.RemoveUserPayload
		if err := json.Unmarshal(ev.Envelope.Data, &p); err != nil || p.UserID == "" {
			h.log.Warn("bad removeUser payload", zap.String("conn", ev.Conn.GetID()))
			return
		}
		h.Presence.Unbind(p.UserID)

	case models.EventSendMessage:
		var p models.SendMessagePayload
		if err := json.Unmarshal(ev.Envelope.Data, &p); err != nil {
			h.log.Warn("bad sendMessage payload", zap.String("conn", ev.Conn.GetID()))
			return
		}
		if err := h.handleSendMessage(p); err != nil {
			h.log.Error("direct message pipeline failed",
				zap.String("sender", p.SenderID), zap.Error(err))
		}

	case models.EventJoinGroup:
		var chatID string
		if err := json.Unmarshal(ev.Envelope.Data, &chatID); err != nil || chatID == "" {
			h.log.Warn("bad joinGroup payload", zap.String("conn", ev.Conn.GetID()))
			return
		}
		h.Rooms.Join(ev.Conn.GetID(), chatID)

	case models.EventSendGroupMessage:
		var p models.SendGroupMessagePayload
		if err := json.Unmarshal(ev.Envelope.Data, &p); err != nil {
			h.log.Warn("bad sendGroupMessage payload", zap.String("conn", ev.Conn.GetID()))
			return
		}
		if err := h.handleSendGroupMessage(p); err != nil {
			h.log.Error("group message pipeline failed",
				zap.String("chat", p.ChatID), zap.Error(err))
		}

	default:
		h.log.Warn("unknown event", zap.String("event", ev.Envelope.Event))
	}
}

// Send pushes one event to one connection, fire and forget: an unknown
// connection id or a full outbound buffer drops the event silently. The
// durable record is the source of truth; a miss here just means the
// recipient pulls it later.
func (h *Hub) Send(connID, event string, payload any) {
	client, ok := h.Clients[connID]
	if !ok {
		return
	}
	select {
	case client.GetSendChannel() <- models.OutEvent{Event: event, Data: payload}:
	default:
		h.log.Warn("outbound buffer full, dropping event",
			zap.String("conn", connID), zap.String("event", event))
	}
}

// Broadcast sends one event to every connection joined to the room.
func (h *Hub) Broadcast(chatID, event string, payload any) {
	for _, connID := range h.Rooms.Connections(chatID) {
		h.Send(connID, event, payload)
	}
}
