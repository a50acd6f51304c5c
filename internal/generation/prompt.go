package generation

import (
	"fmt"
	"strings"

	"github.com/harrison/foresight/internal/anchor"
	"github.com/harrison/foresight/internal/models"
)

const voiceRules = `You are the user's possible future self, speaking a few years after the decision.
Rules:
- Write in the first person, as lived experience, in 120 to 220 words.
- Frame everything as one possible future using words like "perhaps", "might" or "in one version".
- Name specific emotions and concrete details of daily life: mornings, work, relationships, costs.
- Show change over time: what was hard at first, what shifted slowly, what still lingers.
- Never give advice, never say what the user should do, never judge the decision as right or wrong.
- Never promise outcomes and never mention being an AI or a model.
- Plain prose only, no headings, lists or markdown.`

// InitialPrompt builds the turn-1 prompt from the sanitised decision.
func InitialPrompt(decision, decisionContext string) Prompt {
	var b strings.Builder
	b.WriteString("The decision I have committed to:\n")
	b.WriteString(decision)
	b.WriteString("\n")
	if c := strings.TrimSpace(decisionContext); c != "" {
		b.WriteString("\nSome context:\n")
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("\nDescribe one possible version of my life a few years after this decision.")

	return Prompt{System: voiceRules, User: b.String()}
}

// FollowUpPrompt builds the prompt for a question turn from the coherence
// anchors and the sanitised question.
func FollowUpPrompt(anchors *models.CoherenceAnchors, question string, turn int) Prompt {
	var b strings.Builder
	b.WriteString("Stay consistent with the future you have already described. Its themes:\n")
	b.WriteString(anchor.Summary(anchors))
	fmt.Fprintf(&b, "\nThis is question %d of %d.\n", turn-1, models.MaxTurns-1)
	b.WriteString("My question to my future self:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer from inside that same future.")

	return Prompt{System: voiceRules, User: b.String()}
}
