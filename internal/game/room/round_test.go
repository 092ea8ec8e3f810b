package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivialan/internal/apperrors"
	"trivialan/internal/protocol"
	"trivialan/internal/protocol/codec"
	"trivialan/internal/question"
	"trivialan/internal/testutil"
)

// singleQuestionManager makes rounds deterministic: every round asks the
// relativity question.
func singleQuestionManager(target int) *Manager {
	pool := question.NewPool([]question.Question{
		{ID: 1, Kind: question.KindText, Prompt: "¿Quién formuló la teoría de la relatividad?", Answers: []string{"Einstein", "Albert Einstein"}},
	})
	return NewManager(testGameConfig(target), pool)
}

func lastRoundEnd(t *testing.T, c *testutil.SimpleClient) *protocol.RoundEndPayload {
	t.Helper()
	ends := c.MessagesOfType(protocol.MsgRoundEnd)
	require.NotEmpty(t, ends, "no round_end received")
	payload, err := codec.ParsePayload[protocol.RoundEndPayload](ends[len(ends)-1])
	require.NoError(t, err)
	return payload
}

func TestRoundStartBroadcast(t *testing.T) {
	m := singleQuestionManager(15)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	beto, _ := joinPlayer(t, m, "sala1", "Beto")

	require.NoError(t, r.StartGame(ana.GetID()))
	require.True(t, r.RoundActive())

	for _, c := range []*testutil.SimpleClient{ana, beto} {
		starts := c.MessagesOfType(protocol.MsgRoundStart)
		require.Len(t, starts, 1)

		payload, err := codec.ParsePayload[protocol.RoundStartPayload](starts[0])
		require.NoError(t, err)
		assert.Equal(t, "¿Quién formuló la teoría de la relatividad?", payload.Prompt)
		assert.Equal(t, 30, payload.Duration)
		assert.Empty(t, payload.Image)
	}
}

func TestSubmitRequiresActiveRound(t *testing.T) {
	m := singleQuestionManager(15)
	ana, r := joinPlayer(t, m, "sala1", "Ana")

	err := r.SubmitAnswer(ana.GetID(), "Einstein")
	assert.ErrorIs(t, err, apperrors.ErrNoActiveRound)
}

func TestSubmitRejectsOutsiders(t *testing.T) {
	m := singleQuestionManager(15)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	joinPlayer(t, m, "sala1", "Beto")
	require.NoError(t, r.StartGame(ana.GetID()))

	err := r.SubmitAnswer("conn-stranger", "Einstein")
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
}

func TestSubmitRejectsEmptyAnswer(t *testing.T) {
	m := singleQuestionManager(15)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	joinPlayer(t, m, "sala1", "Beto")
	require.NoError(t, r.StartGame(ana.GetID()))

	assert.ErrorIs(t, r.SubmitAnswer(ana.GetID(), ""), apperrors.ErrEmptyAnswer)
	assert.ErrorIs(t, r.SubmitAnswer(ana.GetID(), "   "), apperrors.ErrEmptyAnswer)
}

func TestWrongAnswerAllowsRetry(t *testing.T) {
	m := singleQuestionManager(15)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	beto, _ := joinPlayer(t, m, "sala1", "Beto")
	require.NoError(t, r.StartGame(ana.GetID()))

	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Newton"))
	assert.Len(t, ana.MessagesOfType(protocol.MsgAnswerIncorrect), 1)
	// Others learn that Ana tried, not what she wrote.
	assert.Len(t, beto.MessagesOfType(protocol.MsgPlayerAnswered), 1)
	assert.Empty(t, beto.MessagesOfType(protocol.MsgAnswerIncorrect))

	// The retry succeeds.
	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Einstein"))
	assert.Len(t, ana.MessagesOfType(protocol.MsgAnswerCorrect), 1)
	assert.Len(t, beto.MessagesOfType(protocol.MsgPlayerGotCorrect), 1)
}

func TestSubmitAfterCorrectRejected(t *testing.T) {
	m := singleQuestionManager(15)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	joinPlayer(t, m, "sala1", "Beto")
	require.NoError(t, r.StartGame(ana.GetID()))

	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Einstein"))
	assert.ErrorIs(t, r.SubmitAnswer(ana.GetID(), "Einstein"), apperrors.ErrAlreadyCorrect)
}

func TestPodiumScoring(t *testing.T) {
	m := singleQuestionManager(100)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	beto, _ := joinPlayer(t, m, "sala1", "Beto")
	carla, _ := joinPlayer(t, m, "sala1", "Carla")
	dani, _ := joinPlayer(t, m, "sala1", "Dani")
	require.NoError(t, r.StartGame(ana.GetID()))

	// Correct answers arrive in a known order.
	require.NoError(t, r.SubmitAnswer(beto.GetID(), "Einstein"))
	require.NoError(t, r.SubmitAnswer(dani.GetID(), "einstein"))
	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Albert Einstein"))
	require.NoError(t, r.SubmitAnswer(carla.GetID(), "Einstein"))

	// Everyone answered, so the round ended on its own.
	require.False(t, r.RoundActive())

	end := lastRoundEnd(t, ana)
	require.Len(t, end.Results, 4)

	assert.Equal(t, protocol.RoundResult{Rank: 1, Name: "Beto", Answer: "Einstein", Points: 3, IsFirst: true}, end.Results[0])
	assert.Equal(t, 2, end.Results[1].Points)
	assert.Equal(t, "Dani", end.Results[1].Name)
	assert.Equal(t, 1, end.Results[2].Points)
	assert.Equal(t, "Ana", end.Results[2].Name)
	// Fourth place is off the podium.
	assert.Equal(t, 0, end.Results[3].Points)
	assert.Equal(t, "Carla", end.Results[3].Name)

	assert.Equal(t, map[string]int{"Beto": 3, "Dani": 2, "Ana": 1, "Carla": 0}, end.Scores)
	assert.False(t, end.GameFinished)
	assert.Equal(t, []string{"Einstein", "Albert Einstein"}, end.AcceptedAnswers)
}

func TestRoundEndsWhenEveryoneCorrect(t *testing.T) {
	m := singleQuestionManager(15)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	beto, _ := joinPlayer(t, m, "sala1", "Beto")
	require.NoError(t, r.StartGame(ana.GetID()))

	require.NoError(t, r.SubmitAnswer(ana.GetID(), "einstein"))
	assert.True(t, r.RoundActive(), "round must wait for the second player")

	require.NoError(t, r.SubmitAnswer(beto.GetID(), "Eisntein"))
	assert.False(t, r.RoundActive())

	end := lastRoundEnd(t, beto)
	assert.Equal(t, map[string]int{"Ana": 3, "Beto": 2}, end.Scores)
}

func TestHostEndsRoundEarly(t *testing.T) {
	m := singleQuestionManager(15)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	beto, _ := joinPlayer(t, m, "sala1", "Beto")
	require.NoError(t, r.StartGame(ana.GetID()))

	assert.ErrorIs(t, r.EndRound(beto.GetID()), apperrors.ErrNotHostRound)

	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Einstein"))
	require.NoError(t, r.EndRound(ana.GetID()))
	assert.False(t, r.RoundActive())

	end := lastRoundEnd(t, ana)
	require.Len(t, end.Results, 1)
	assert.Equal(t, "Ana", end.Results[0].Name)
	assert.Equal(t, map[string]int{"Ana": 3, "Beto": 0}, end.Scores)
}

func TestNextRoundLifecycle(t *testing.T) {
	m := singleQuestionManager(100)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	beto, _ := joinPlayer(t, m, "sala1", "Beto")

	assert.ErrorIs(t, r.NextRound(ana.GetID()), apperrors.ErrNotStarted)

	require.NoError(t, r.StartGame(ana.GetID()))
	assert.ErrorIs(t, r.NextRound(ana.GetID()), apperrors.ErrRoundInProgress)
	assert.ErrorIs(t, r.NextRound(beto.GetID()), apperrors.ErrNotHostRound)

	require.NoError(t, r.EndRound(ana.GetID()))
	require.NoError(t, r.NextRound(ana.GetID()))
	assert.True(t, r.RoundActive())
	assert.Len(t, ana.MessagesOfType(protocol.MsgRoundStart), 2)
}

func TestWinnerAtTarget(t *testing.T) {
	m := singleQuestionManager(6)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	beto, _ := joinPlayer(t, m, "sala1", "Beto")
	require.NoError(t, r.StartGame(ana.GetID()))

	// Round 1: Ana 3, Beto 2. Nobody at 6 yet.
	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Einstein"))
	require.NoError(t, r.SubmitAnswer(beto.GetID(), "Einstein"))
	assert.False(t, r.Finished())

	// Round 2: Ana reaches exactly 6 and wins.
	require.NoError(t, r.NextRound(ana.GetID()))
	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Einstein"))
	require.NoError(t, r.SubmitAnswer(beto.GetID(), "Einstein"))

	assert.True(t, r.Finished())
	assert.Equal(t, "Ana", r.Winner())

	end := lastRoundEnd(t, beto)
	assert.True(t, end.GameFinished)
	assert.Equal(t, "Ana", end.Winner)

	// A finished game accepts no more rounds until a fresh start.
	assert.ErrorIs(t, r.NextRound(ana.GetID()), apperrors.ErrNotStarted)
}

func TestFinalStandings(t *testing.T) {
	m := singleQuestionManager(100)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	beto, _ := joinPlayer(t, m, "sala1", "Beto")
	carla, _ := joinPlayer(t, m, "sala1", "Carla")
	require.NoError(t, r.StartGame(ana.GetID()))

	require.NoError(t, r.SubmitAnswer(carla.GetID(), "Einstein"))
	require.NoError(t, r.SubmitAnswer(beto.GetID(), "Einstein"))
	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Einstein"))

	standings := r.FinalStandings()
	require.Len(t, standings, 3)
	assert.Equal(t, "Carla", standings[0].Name)
	assert.Equal(t, 3, standings[0].Score)
	assert.Equal(t, "Beto", standings[1].Name)
	assert.Equal(t, "Ana", standings[2].Name)

	// Equal scores keep join order.
	require.NoError(t, r.NextRound(ana.GetID()))
	require.NoError(t, r.SubmitAnswer(ana.GetID(), "Einstein"))
	require.NoError(t, r.SubmitAnswer(beto.GetID(), "Einstein"))
	require.NoError(t, r.SubmitAnswer(carla.GetID(), "Einstein"))

	// Ana 1+3=4, Beto 2+2=4, Carla 3+1=4: all tied, join order decides.
	standings = r.FinalStandings()
	assert.Equal(t, []string{"Ana", "Beto", "Carla"},
		[]string{standings[0].Name, standings[1].Name, standings[2].Name})
}

func TestStaleTimerDoesNothing(t *testing.T) {
	m := singleQuestionManager(100)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	require.NoError(t, r.StartGame(ana.GetID()))

	r.mu.Lock()
	oldGen := r.round.gen
	r.mu.Unlock()

	require.NoError(t, r.EndRound(ana.GetID()))
	require.NoError(t, r.NextRound(ana.GetID()))

	// A timer left over from the first round must not end the second.
	r.timeoutRound(oldGen)
	assert.True(t, r.RoundActive())

	endsBefore := len(ana.MessagesOfType(protocol.MsgRoundEnd))
	r.timeoutRound(oldGen)
	assert.Equal(t, endsBefore, len(ana.MessagesOfType(protocol.MsgRoundEnd)))
}

func TestTimeoutEndsRound(t *testing.T) {
	m := singleQuestionManager(100)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	joinPlayer(t, m, "sala1", "Beto")
	require.NoError(t, r.StartGame(ana.GetID()))

	r.mu.Lock()
	gen := r.round.gen
	r.mu.Unlock()

	// Fire the timeout directly instead of waiting 30 seconds.
	r.timeoutRound(gen)
	assert.False(t, r.RoundActive())

	end := lastRoundEnd(t, ana)
	assert.Empty(t, end.Results)
	assert.Equal(t, map[string]int{"Ana": 0, "Beto": 0}, end.Scores)
}

func TestNoQuestionsAvailable(t *testing.T) {
	m := NewManager(testGameConfig(15), question.NewPool(nil))
	ana, r := joinPlayer(t, m, "sala1", "Ana")

	err := r.StartGame(ana.GetID())
	assert.ErrorIs(t, err, apperrors.ErrNoQuestions)
	assert.False(t, r.RoundActive())
}

func TestRepeatAvoidanceAcrossRounds(t *testing.T) {
	m := testManager(1000)
	ana, r := joinPlayer(t, m, "sala1", "Ana")
	require.NoError(t, r.StartGame(ana.GetID()))

	seen := make(map[string]int)
	total := question.NewPool(testQuestions()).Len()

	for i := 0; i < total; i++ {
		starts := ana.MessagesOfType(protocol.MsgRoundStart)
		payload, err := codec.ParsePayload[protocol.RoundStartPayload](starts[len(starts)-1])
		require.NoError(t, err)
		seen[payload.Prompt]++

		require.NoError(t, r.EndRound(ana.GetID()))
		if i < total-1 {
			require.NoError(t, r.NextRound(ana.GetID()))
		}
	}

	// Within one pass of the pool no question repeats.
	for prompt, n := range seen {
		assert.Equal(t, 1, n, "question %q repeated", prompt)
	}
	assert.Len(t, seen, total)
}
