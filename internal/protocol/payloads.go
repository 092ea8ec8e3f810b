package protocol

// --- Client request payloads ---

// PingPayload carries the client timestamp for latency measurement.
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // client clock, milliseconds
}

// JoinRoomPayload joins (or creates) a room under a display name.
type JoinRoomPayload struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

// StartGamePayload asks the host to start the game in a room.
type StartGamePayload struct {
	RoomID string `json:"room_id"`
}

// NextRoundPayload asks the host to start the next round.
type NextRoundPayload struct {
	RoomID string `json:"room_id"`
}

// EndRoundPayload asks the host to close the current round before the timer.
type EndRoundPayload struct {
	RoomID string `json:"room_id"`
}

// SubmitAnswerPayload submits a free-text answer for the active round.
type SubmitAnswerPayload struct {
	RoomID string `json:"room_id"`
	Answer string `json:"answer"`
}

// --- Server response payloads ---

// PongPayload answers a ping.
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"` // server clock, milliseconds
}

// RoomJoinedPayload confirms a join to the joining player.
type RoomJoinedPayload struct {
	RoomID      string `json:"room_id"`
	PlayerName  string `json:"player_name"`
	IsHost      bool   `json:"is_host"`
	GameStarted bool   `json:"game_started"`
}

// PlayerJoinedPayload announces a new player to the room.
type PlayerJoinedPayload struct {
	Name string `json:"name"`
}

// PlayerLeftPayload announces that a player left the room.
type PlayerLeftPayload struct {
	Name string `json:"name"`
}

// PlayersUpdatePayload carries the room's full member list.
type PlayersUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
}

// GameStartedPayload announces the start of a game.
type GameStartedPayload struct{}

// RoundStartPayload announces a new round. It never carries the accepted
// answers: clients must not see them before grading.
type RoundStartPayload struct {
	ID       int    `json:"id"`
	Kind     string `json:"kind"` // "text" or "image"
	Duration int    `json:"duration"`
	Prompt   string `json:"prompt"`
	Image    string `json:"image,omitempty"` // URL, only for image questions
}

// AnswerResultPayload echoes a graded answer back to its submitter.
type AnswerResultPayload struct {
	Answer string `json:"answer"`
}

// PlayerGotCorrectPayload announces that a player answered correctly,
// without revealing the answer.
type PlayerGotCorrectPayload struct {
	Name string `json:"name"`
}

// PlayerAnsweredPayload announces that a player submitted an answer,
// without revealing whether it was correct.
type PlayerAnsweredPayload struct {
	Name string `json:"name"`
}

// RoundResult is one ranked entry of a round.
type RoundResult struct {
	Rank    int    `json:"rank"`
	Name    string `json:"name"`
	Answer  string `json:"answer"`
	Points  int    `json:"points"`
	IsFirst bool   `json:"is_first"`
}

// RoundEndPayload reveals the accepted answers and the round outcome.
type RoundEndPayload struct {
	Prompt          string         `json:"prompt"`
	AcceptedAnswers []string       `json:"accepted_answers"`
	Results         []RoundResult  `json:"results"`
	Scores          map[string]int `json:"scores"`
	GameFinished    bool           `json:"game_finished"`
	Winner          string         `json:"winner,omitempty"`
}

// ErrorPayload reports a recoverable failure to a client.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PlayerInfo describes one room member.
type PlayerInfo struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}
