package protocol

import "encoding/json"

// Message is the JSON envelope exchanged over the websocket.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType tags a message variant.
type MessageType string

// Client → server message types.
const (
	MsgPing MessageType = "ping"

	MsgJoinRoom     MessageType = "join_room"
	MsgLeaveRoom    MessageType = "leave_room"
	MsgStartGame    MessageType = "start_game"
	MsgNextRound    MessageType = "next_round"
	MsgEndRound     MessageType = "end_round"
	MsgSubmitAnswer MessageType = "submit_answer"
)

// Server → client message types.
const (
	MsgPong MessageType = "pong"

	MsgRoomJoined    MessageType = "room_joined"
	MsgPlayerJoined  MessageType = "player_joined"
	MsgPlayerLeft    MessageType = "player_left"
	MsgPlayersUpdate MessageType = "players_update"

	MsgGameStarted      MessageType = "game_started"
	MsgRoundStart       MessageType = "round_start"
	MsgAnswerCorrect    MessageType = "answer_correct"
	MsgAnswerIncorrect  MessageType = "answer_incorrect"
	MsgPlayerGotCorrect MessageType = "player_got_correct"
	MsgPlayerAnswered   MessageType = "player_answered"
	MsgRoundEnd         MessageType = "round_end"

	MsgError MessageType = "error"
)
