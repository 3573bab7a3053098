package chathub

import "chatvault/backend/internal/models"

// Client is one live bidirectional connection as the hub sees it. It
// abstracts the transport so the hub can be exercised in tests without a
// websocket.
type Client interface {
	// GetID returns the process-unique connection identifier assigned
	// on accept.
	GetID() string
	// GetUserID returns the user authenticated at upgrade time.
	GetUserID() string

	// GetSendChannel returns the channel the hub pushes outbound events
	// into. The write pump drains it.
	GetSendChannel() chan<- models.OutEvent

	// Run starts the read and write pumps.
	Run()
	// Close shuts down the outbound side; the transport tears down the
	// rest itself.
	Close()
}
