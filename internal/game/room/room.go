// Package room implements game rooms: membership, the round state machine,
// answer grading, scoring, and the process-wide room registry.
package room

import (
	"sync"
	"time"

	"trivialan/internal/apperrors"
	"trivialan/internal/config"
	"trivialan/internal/match"
	"trivialan/internal/protocol"
	"trivialan/internal/protocol/codec"
	"trivialan/internal/question"
	"trivialan/internal/server/types"
	"trivialan/internal/text"
)

// Player is one room member. Owned exclusively by its Room.
type Player struct {
	Client    types.ClientInterface
	Name      string
	Score     int
	Connected bool
}

// Room is one isolated game session. All state lives behind mu: membership,
// round lifecycle, grading and scoring are serialized by the room lock, so
// concurrent submissions, the round timer and membership changes never
// interleave. Different rooms share nothing.
type Room struct {
	ID string

	mu       sync.Mutex
	host     string             // connection ID of the host
	players  map[string]*Player // connection ID -> player
	order    []string           // connection IDs in join order
	started  bool
	finished bool
	winner   string
	used     map[int]struct{} // question IDs already asked this game
	round    *Round
	roundGen uint64 // bumped per round; stale timers compare against it

	cfg     *config.GameConfig
	pool    *question.Pool
	matcher *match.Matcher
	limiter *submissionLimiter
}

func newRoom(id, host string, cfg *config.GameConfig, pool *question.Pool, matcher *match.Matcher) *Room {
	return &Room{
		ID:      id,
		host:    host,
		players: make(map[string]*Player),
		used:    make(map[int]struct{}),
		cfg:     cfg,
		pool:    pool,
		matcher: matcher,
		limiter: newSubmissionLimiter(cfg.MaxSubmissionsPerSecond, time.Second),
	}
}

// StartGame begins a new game: every score resets to zero, the used-question
// set clears, and the first round starts immediately. Host only.
func (r *Room) StartGame(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.host != requester {
		return apperrors.ErrNotHost
	}
	if r.started {
		return apperrors.ErrAlreadyStarted
	}
	if len(r.players) == 0 {
		return apperrors.ErrNeedPlayers
	}

	r.started = true
	r.finished = false
	r.winner = ""
	clear(r.used)
	r.limiter.reset()
	for _, p := range r.players {
		p.Score = 0
	}

	r.broadcast(codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{}))

	if err := r.startRoundLocked(); err != nil {
		r.started = false
		return err
	}
	return nil
}

// NextRound starts another round once the previous one has ended. Host only.
func (r *Room) NextRound(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.host != requester {
		return apperrors.ErrNotHostRound
	}
	if !r.started || r.finished {
		return apperrors.ErrNotStarted
	}
	if r.round != nil {
		return apperrors.ErrRoundInProgress
	}

	return r.startRoundLocked()
}

// HasPlayer reports whether the connection is a member of the room.
func (r *Room) HasPlayer(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[connID]
	return ok
}

// Host returns the connection ID of the current host.
func (r *Room) Host() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// Started reports whether a game is running in the room.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Finished reports whether the game ended with a winner.
func (r *Room) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Winner returns the winner's name, or "" while the game is undecided.
func (r *Room) Winner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winner
}

// RoundActive reports whether a round is currently collecting answers.
func (r *Room) RoundActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round != nil
}

// PlayerCount returns the number of members.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Scores returns the current scoreboard keyed by display name.
func (r *Room) Scores() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scoresLocked()
}

func (r *Room) scoresLocked() map[string]int {
	scores := make(map[string]int, len(r.players))
	for _, p := range r.players {
		scores[p.Name] = p.Score
	}
	return scores
}

// join adds a player and announces it. Caller must not hold r.mu.
func (r *Room) join(client types.ClientInterface, name string, maxPlayers int) (isHost, started bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxPlayers > 0 && len(r.players) >= maxPlayers {
		return false, false, apperrors.ErrRoomFull
	}

	// Display names are unique case- and accent-insensitively.
	for _, p := range r.players {
		if text.Normalize(p.Name) == text.Normalize(name) {
			return false, false, apperrors.ErrNameTaken
		}
	}

	r.players[client.GetID()] = &Player{
		Client:    client,
		Name:      name,
		Connected: true,
	}
	r.order = append(r.order, client.GetID())
	client.SetRoom(r.ID)

	r.broadcast(codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{Name: name}))
	r.broadcastPlayersLocked()

	return r.host == client.GetID(), r.started, nil
}

// leave removes a player, promoting the longest-standing member to host when
// the host goes. It reports whether the room is now empty and should be
// dropped from the registry. Caller must not hold r.mu.
func (r *Room) leave(connID string) (name string, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[connID]
	if !ok {
		return "", len(r.players) == 0
	}

	delete(r.players, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.limiter.forget(connID)

	if r.host == connID && len(r.order) > 0 {
		r.host = r.order[0]
	}

	if len(r.players) == 0 {
		r.stopTimerLocked()
		return player.Name, true
	}

	r.broadcast(codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{Name: player.Name}))
	r.broadcastPlayersLocked()

	return player.Name, false
}

// broadcast fans a message out to every member. Sends land in per-client
// buffered channels, so holding r.mu here never blocks on the network.
func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.players {
		if p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

func (r *Room) sendTo(connID string, msg *protocol.Message) {
	if p, ok := r.players[connID]; ok && p.Client != nil {
		p.Client.SendMessage(msg)
	}
}

func (r *Room) broadcastPlayersLocked() {
	infos := make([]protocol.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		infos = append(infos, protocol.PlayerInfo{
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.Connected,
		})
	}
	r.broadcast(codec.MustNewMessage(protocol.MsgPlayersUpdate, protocol.PlayersUpdatePayload{Players: infos}))
}
