package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/foresight/internal/generation"
	"github.com/harrison/foresight/internal/models"
	"github.com/harrison/foresight/internal/orchestrator"
	"github.com/harrison/foresight/internal/session"
)

const deepQuestion = "What might I find myself thinking about in quiet moments?"

func newChatPipeline() (*orchestrator.Orchestrator, *session.Controller) {
	controller := session.NewController(session.NewMemoryStore())
	orch := orchestrator.New(controller, session.NewLocks(), generation.NewEngine(nil, time.Second, nil))
	return orch, controller
}

func TestChatLoopQuitAbandonsSession(t *testing.T) {
	orch, controller := newChatPipeline()
	in := strings.NewReader(strings.Join([]string{
		"I'm deciding what to eat for lunch",
		careerDecision,
		deepQuestion,
		"quit",
	}, "\n") + "\n")
	out := new(bytes.Buffer)

	require.NoError(t, chatLoop(context.Background(), in, out, orch, controller, nil))

	transcript := out.String()
	assert.Contains(t, transcript, "Turn 1 of 9, 8 remaining")
	assert.Contains(t, transcript, "Turn 2 of 9, 7 remaining")
	assert.Contains(t, transcript, generation.InitialFallback(careerDecision))

	sessions := controller.List()
	require.Len(t, sessions, 2, "the refused lunch decision burned its own session id")
	var completedTurns []int
	for _, s := range sessions {
		if s.CurrentTurn > 0 {
			assert.Equal(t, models.StatusTerminated, s.Status)
			assert.Equal(t, models.TerminationAbandoned, s.TerminationReason)
			completedTurns = append(completedTurns, s.CurrentTurn)
		}
	}
	assert.Equal(t, []int{2}, completedTurns)
}

func TestChatLoopRunsToCompletion(t *testing.T) {
	orch, controller := newChatPipeline()
	lines := []string{careerDecision}
	for i := 0; i < models.MaxTurns-1; i++ {
		lines = append(lines, deepQuestion)
	}
	out := new(bytes.Buffer)

	require.NoError(t, chatLoop(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), out, orch, controller, nil))

	sessions := controller.List()
	require.Len(t, sessions, 1)
	assert.Equal(t, models.StatusCompleted, sessions[0].Status)
	assert.NotContains(t, out.String(), "Turn 9 of 9", "the final turn shows the closure message instead")
}

func TestChatLoopEndOfInputBeforeDecision(t *testing.T) {
	orch, controller := newChatPipeline()
	require.NoError(t, chatLoop(context.Background(), strings.NewReader(""), new(bytes.Buffer), orch, controller, nil))
	assert.Empty(t, controller.List())
}

func TestSessionEnded(t *testing.T) {
	assert.True(t, sessionEnded(models.RefusalMaxTurnsReached))
	assert.True(t, sessionEnded(models.RefusalShallowResponse))
	assert.False(t, sessionEnded(models.RefusalAdviceSeekingQuestion))
	assert.False(t, sessionEnded(models.RefusalValidationFailed))
}

type failingCloser struct{}

func (failingCloser) TerminateSession(id string, _ models.TerminationReason) error {
	return fmt.Errorf("session %s: store unavailable", id)
}

type warnRecorder struct{ warnings []string }

func (w *warnRecorder) LogWarn(message string) { w.warnings = append(w.warnings, message) }

func TestChatLoopLogsFailedAbandonment(t *testing.T) {
	orch, _ := newChatPipeline()
	warns := &warnRecorder{}
	in := strings.NewReader(careerDecision + "\nquit\n")

	require.NoError(t, chatLoop(context.Background(), in, new(bytes.Buffer), orch, failingCloser{}, warns))

	require.Len(t, warns.warnings, 1)
	assert.Contains(t, warns.warnings[0], "failed to abandon session")
	assert.Contains(t, warns.warnings[0], "store unavailable")
}
