package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/foresight/internal/gate"
	"github.com/harrison/foresight/internal/models"
)

const careerDecision = "I'm going to quit my job and start a company"

func TestScoreCommandJSON(t *testing.T) {
	out, err := execute(t, "score", "gravity", "--json", careerDecision)
	require.NoError(t, err)

	var score models.Score
	require.NoError(t, json.Unmarshal([]byte(out), &score))
	want := gate.Gravity.Evaluate(careerDecision)
	assert.Equal(t, want.Combined, score.Combined)
	assert.Equal(t, want.Pass, score.Pass)
	assert.Len(t, score.Dimensions, len(want.Dimensions))
}

func TestScoreCommandText(t *testing.T) {
	out, err := execute(t, "score", "gravity", "I'm", "deciding", "what", "to", "eat", "for", "lunch")
	require.NoError(t, err)

	assert.Contains(t, out, "gravity gate")
	assert.Contains(t, out, "combined")
	assert.Contains(t, out, "threshold")
	assert.Contains(t, out, "FAIL")
}

func TestScoreCommandErrors(t *testing.T) {
	_, err := execute(t, "score", "vibes", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown gate")

	_, err = execute(t, "score", "gravity")
	require.Error(t, err)
}
