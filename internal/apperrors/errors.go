package apperrors

import (
	"trivialan/internal/protocol"
)

// GameError is a recoverable, player-facing failure. The message is what the
// client sees; the code lets clients branch without parsing text.
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newErr(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// Predefined errors.
var (
	ErrInvalidMessage = newErr(protocol.ErrCodeInvalidMsg)

	ErrRoomNotFound = newErr(protocol.ErrCodeRoomNotFound)
	ErrRoomFull     = newErr(protocol.ErrCodeRoomFull)
	ErrNotInRoom    = newErr(protocol.ErrCodeNotInRoom)
	ErrNameTaken    = newErr(protocol.ErrCodeNameTaken)

	ErrNotHost         = newErr(protocol.ErrCodeNotHost)
	ErrAlreadyStarted  = newErr(protocol.ErrCodeAlreadyStarted)
	ErrNotStarted      = newErr(protocol.ErrCodeNotStarted)
	ErrNeedPlayers     = newErr(protocol.ErrCodeNeedPlayers)
	ErrRoundInProgress = newErr(protocol.ErrCodeRoundInProgress)
	ErrNoActiveRound   = newErr(protocol.ErrCodeNoActiveRound)
	ErrAlreadyCorrect  = newErr(protocol.ErrCodeAlreadyCorrect)
	ErrEmptyAnswer     = newErr(protocol.ErrCodeEmptyAnswer)
	ErrRateLimited     = newErr(protocol.ErrCodeRateLimited)
	ErrNoQuestions     = newErr(protocol.ErrCodeNoQuestions)

	// Same code as ErrNotHost; next_round has its own wording.
	ErrNotHostRound = &GameError{Code: protocol.ErrCodeNotHost, Message: "Solo el host puede iniciar rondas"}
)
