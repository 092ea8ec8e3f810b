package protocol

// Error codes.
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001

	ErrCodeRoomNotFound = 2001
	ErrCodeRoomFull     = 2002
	ErrCodeNotInRoom    = 2003
	ErrCodeNameTaken    = 2004

	ErrCodeNotHost         = 3001
	ErrCodeAlreadyStarted  = 3002
	ErrCodeNotStarted      = 3003
	ErrCodeNeedPlayers     = 3004
	ErrCodeRoundInProgress = 3005
	ErrCodeNoActiveRound   = 3006
	ErrCodeAlreadyCorrect  = 3007
	ErrCodeEmptyAnswer     = 3008
	ErrCodeRateLimited     = 3009
	ErrCodeNoQuestions     = 3010
)

// ErrorMessages is the static player-facing message table.
var ErrorMessages = map[int]string{
	ErrCodeUnknown:    "Error interno del servidor",
	ErrCodeInvalidMsg: "Formato de mensaje inválido",

	ErrCodeRoomNotFound: "Sala no encontrada",
	ErrCodeRoomFull:     "La sala está llena",
	ErrCodeNotInRoom:    "No estás en esta sala",
	ErrCodeNameTaken:    "Nombre de jugador ya en uso",

	ErrCodeNotHost:         "Solo el host puede iniciar el juego",
	ErrCodeAlreadyStarted:  "El juego ya está iniciado",
	ErrCodeNotStarted:      "El juego no está activo",
	ErrCodeNeedPlayers:     "Se necesita al menos 1 jugador",
	ErrCodeRoundInProgress: "Ya hay una ronda en curso",
	ErrCodeNoActiveRound:   "No hay ronda activa",
	ErrCodeAlreadyCorrect:  "Ya acertaste en esta ronda",
	ErrCodeEmptyAnswer:     "La respuesta no puede estar vacía",
	ErrCodeRateLimited:     "Enviando respuestas muy rápido, espera un momento",
	ErrCodeNoQuestions:     "No hay preguntas disponibles",
}
