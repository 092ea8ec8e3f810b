//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"trivialan/internal/protocol"
)

// MockClient implements types.ClientInterface with testify expectations.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetName(name string) {
	m.Called(name)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomID string) {
	m.Called(roomID)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient is a recording fake for tests that only need to inspect what
// the server sent.
type SimpleClient struct {
	ID       string
	Name     string
	RoomID   string
	Messages []*protocol.Message
}

func (c *SimpleClient) GetID() string                     { return c.ID }
func (c *SimpleClient) GetName() string                   { return c.Name }
func (c *SimpleClient) SetName(name string)               { c.Name = name }
func (c *SimpleClient) GetRoom() string                   { return c.RoomID }
func (c *SimpleClient) SetRoom(roomID string)             { c.RoomID = roomID }
func (c *SimpleClient) SendMessage(msg *protocol.Message) { c.Messages = append(c.Messages, msg) }
func (c *SimpleClient) Close()                            {}

// MessagesOfType filters recorded messages by type.
func (c *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, msg := range c.Messages {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// LastMessage returns the most recent message, or nil.
func (c *SimpleClient) LastMessage() *protocol.Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}
