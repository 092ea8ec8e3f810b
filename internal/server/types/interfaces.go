// Package types holds the interfaces shared between the websocket server
// and the game packages, breaking what would otherwise be an import cycle.
package types

import (
	"trivialan/internal/protocol"
)

// ClientInterface is a connected player as seen by the game layer.
type ClientInterface interface {
	GetID() string
	GetName() string
	SetName(name string)
	GetRoom() string
	SetRoom(roomID string)
	SendMessage(msg *protocol.Message)
	Close()
}
