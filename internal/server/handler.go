package server

import (
	"errors"
	"strings"
	"time"

	"trivialan/internal/apperrors"
	"trivialan/internal/game/room"
	"trivialan/internal/logger"
	"trivialan/internal/protocol"
	"trivialan/internal/protocol/codec"
	"trivialan/internal/server/types"
)

// Handler dispatches decoded messages to game operations. A panic in a
// handler is logged and answered with a generic error instead of killing the
// read pump.
type Handler struct {
	server *Server
}

func NewHandler(s *Server) *Handler {
	return &Handler{server: s}
}

// Handle routes one inbound message.
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()

	var err error
	switch msg.Type {
	case protocol.MsgPing:
		err = h.handlePing(client, msg)
	case protocol.MsgJoinRoom:
		err = h.handleJoinRoom(client, msg)
	case protocol.MsgLeaveRoom:
		h.server.rooms.Leave(client)
	case protocol.MsgStartGame:
		err = h.handleStartGame(client, msg)
	case protocol.MsgNextRound:
		err = h.handleNextRound(client, msg)
	case protocol.MsgEndRound:
		err = h.handleEndRound(client, msg)
	case protocol.MsgSubmitAnswer:
		err = h.handleSubmitAnswer(client, msg)
	default:
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err != nil {
		h.sendError(client, err)
	}
}

func (h *Handler) sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	logger.LogError("handler error: %v", err)
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}

func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		payload = &protocol.PingPayload{}
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
	return nil
}

func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		return apperrors.ErrInvalidMessage
	}

	roomID := strings.TrimSpace(payload.RoomID)
	name := strings.TrimSpace(payload.PlayerName)
	if roomID == "" || name == "" {
		return apperrors.ErrInvalidMessage
	}

	// Switching rooms implies leaving the old one first.
	if client.GetRoom() != "" && client.GetRoom() != roomID {
		h.server.rooms.Leave(client)
	}

	_, isHost, started, err := h.server.rooms.Join(client, roomID, name)
	if err != nil {
		return err
	}
	client.SetName(name)

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomID:      roomID,
		PlayerName:  name,
		IsHost:      isHost,
		GameStarted: started,
	}))
	return nil
}

func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		return apperrors.ErrInvalidMessage
	}

	target, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		return err
	}
	return target.StartGame(client.GetID())
}

func (h *Handler) handleNextRound(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.NextRoundPayload](msg)
	if err != nil {
		return apperrors.ErrInvalidMessage
	}

	target, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		return err
	}
	return target.NextRound(client.GetID())
}

func (h *Handler) handleEndRound(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.EndRoundPayload](msg)
	if err != nil {
		return apperrors.ErrInvalidMessage
	}

	target, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		return err
	}
	return target.EndRound(client.GetID())
}

func (h *Handler) handleSubmitAnswer(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.SubmitAnswerPayload](msg)
	if err != nil {
		return apperrors.ErrInvalidMessage
	}

	target, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		return err
	}
	return target.SubmitAnswer(client.GetID(), payload.Answer)
}

// resolveRoom finds the target room, falling back to the client's current
// room when the payload does not name one.
func (h *Handler) resolveRoom(client types.ClientInterface, roomID string) (*room.Room, error) {
	if roomID == "" {
		roomID = client.GetRoom()
	}
	if roomID == "" {
		return nil, apperrors.ErrNotInRoom
	}

	target := h.server.rooms.Get(roomID)
	if target == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	if !target.HasPlayer(client.GetID()) {
		return nil, apperrors.ErrNotInRoom
	}
	return target, nil
}
