package room

import (
	"sort"
	"strings"
	"time"

	"trivialan/internal/apperrors"
	"trivialan/internal/protocol"
	"trivialan/internal/protocol/codec"
	"trivialan/internal/question"
)

// Round holds the live state of one question being played. It exists only
// between round_start and round_end and is always accessed under Room.mu.
type Round struct {
	question *question.Question
	gen      uint64
	duration time.Duration
	timer    *time.Timer

	// correct holds who answered right, in arrival order. That order is the
	// podium: first correct gets the top rank.
	correct []correctEntry
	solved  map[string]struct{} // connection IDs already graded correct
}

type correctEntry struct {
	connID string
	name   string
	answer string
}

// startRoundLocked draws an unused question and opens a round. The timeout
// timer carries the round generation so a timer that fires after the round
// already ended does nothing. Caller holds r.mu.
func (r *Room) startRoundLocked() error {
	q := r.pool.PickUnused(r.used)
	if q == nil {
		r.broadcast(codec.NewErrorMessage(protocol.ErrCodeNoQuestions))
		return apperrors.ErrNoQuestions
	}
	r.used[q.ID] = struct{}{}

	r.roundGen++
	gen := r.roundGen
	duration := r.cfg.RoundDuration()

	r.round = &Round{
		question: q,
		gen:      gen,
		duration: duration,
		solved:   make(map[string]struct{}),
	}
	r.round.timer = time.AfterFunc(duration, func() {
		r.timeoutRound(gen)
	})

	r.broadcast(codec.MustNewMessage(protocol.MsgRoundStart, protocol.RoundStartPayload{
		ID:       q.ID,
		Kind:     string(q.Kind),
		Duration: int(duration / time.Second),
		Prompt:   q.Prompt,
		Image:    imageURL(q.Image),
	}))
	return nil
}

// imageURL maps a CSV image reference to the URL clients fetch it from.
// Absolute URLs pass through untouched.
func imageURL(image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return "/images/" + strings.TrimPrefix(image, "images/")
}

// timeoutRound closes the round when its timer fires. A stale generation
// means the round was already ended by hand or by everyone answering.
func (r *Room) timeoutRound(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.round == nil || r.round.gen != gen {
		return
	}
	r.endRoundLocked()
}

// EndRound lets the host close the current round before the timer fires.
func (r *Room) EndRound(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.host != requester {
		return apperrors.ErrNotHostRound
	}
	if r.round == nil {
		return apperrors.ErrNoActiveRound
	}
	r.endRoundLocked()
	return nil
}

// SubmitAnswer grades one free-text answer from a player. Wrong answers do
// not lock the player out; they can retry until the round ends, subject to
// the per-player submission rate limit.
func (r *Room) SubmitAnswer(connID, answer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[connID]
	if !ok {
		return apperrors.ErrNotInRoom
	}
	if r.round == nil {
		return apperrors.ErrNoActiveRound
	}
	if _, done := r.round.solved[connID]; done {
		return apperrors.ErrAlreadyCorrect
	}
	if !r.limiter.allow(connID, time.Now()) {
		return apperrors.ErrRateLimited
	}
	if strings.TrimSpace(answer) == "" {
		return apperrors.ErrEmptyAnswer
	}

	if !r.matcher.IsCorrect(answer, r.round.question.Answers) {
		r.sendTo(connID, codec.MustNewMessage(protocol.MsgAnswerIncorrect, protocol.AnswerResultPayload{Answer: answer}))
		r.broadcastExceptLocked(connID, codec.MustNewMessage(protocol.MsgPlayerAnswered, protocol.PlayerAnsweredPayload{Name: player.Name}))
		return nil
	}

	r.round.solved[connID] = struct{}{}
	r.round.correct = append(r.round.correct, correctEntry{
		connID: connID,
		name:   player.Name,
		answer: answer,
	})

	r.sendTo(connID, codec.MustNewMessage(protocol.MsgAnswerCorrect, protocol.AnswerResultPayload{Answer: answer}))
	r.broadcastExceptLocked(connID, codec.MustNewMessage(protocol.MsgPlayerGotCorrect, protocol.PlayerGotCorrectPayload{Name: player.Name}))

	// Everyone solved it: no reason to wait out the clock.
	if len(r.round.solved) >= len(r.players) {
		r.endRoundLocked()
	}
	return nil
}

func (r *Room) broadcastExceptLocked(skip string, msg *protocol.Message) {
	for id, p := range r.players {
		if id == skip || p.Client == nil {
			continue
		}
		p.Client.SendMessage(msg)
	}
}

// endRoundLocked scores the round and publishes the results. Podium points
// go by arrival order of correct answers; ties cannot happen because grading
// is serialized by the room lock. Caller holds r.mu.
func (r *Room) endRoundLocked() {
	round := r.round
	if round == nil {
		return
	}
	r.round = nil
	if round.timer != nil {
		round.timer.Stop()
	}

	results := make([]protocol.RoundResult, 0, len(round.correct))
	for i, entry := range round.correct {
		rank := i + 1
		points := r.cfg.PointsForRank(rank)
		if p, ok := r.players[entry.connID]; ok {
			p.Score += points
		}
		results = append(results, protocol.RoundResult{
			Rank:    rank,
			Name:    entry.name,
			Answer:  entry.answer,
			Points:  points,
			IsFirst: rank == 1,
		})
	}

	winner := r.winnerLocked()
	if winner != "" {
		r.finished = true
		r.started = false
		r.winner = winner
	}

	r.broadcast(codec.MustNewMessage(protocol.MsgRoundEnd, protocol.RoundEndPayload{
		Prompt:          round.question.Prompt,
		AcceptedAnswers: round.question.Answers,
		Results:         results,
		Scores:          r.scoresLocked(),
		GameFinished:    winner != "",
		Winner:          winner,
	}))
	r.broadcastPlayersLocked()
}

// winnerLocked returns the name of the first player in join order whose
// score reached the target, or "" if nobody has yet.
func (r *Room) winnerLocked() string {
	for _, id := range r.order {
		if p, ok := r.players[id]; ok && p.Score >= r.cfg.TargetPoints {
			return p.Name
		}
	}
	return ""
}

// FinalStandings returns the scoreboard sorted by score descending. Equal
// scores keep join order, so the ordering is deterministic.
func (r *Room) FinalStandings() []protocol.PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]protocol.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		infos = append(infos, protocol.PlayerInfo{
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.Connected,
		})
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Score > infos[j].Score
	})
	return infos
}

// stopTimerLocked cancels any pending round timer. Caller holds r.mu.
func (r *Room) stopTimerLocked() {
	if r.round != nil && r.round.timer != nil {
		r.round.timer.Stop()
	}
}
