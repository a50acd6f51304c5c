package generation

import (
	"regexp"
)

// theme keys a fallback reflection on lexical cues in the input.
type theme struct {
	name string
	re   *regexp.Regexp
	text string
}

func newTheme(name, pattern, text string) theme {
	return theme{name: name, re: regexp.MustCompile(`(?i)` + pattern), text: text}
}

var initialThemes = []theme{
	newTheme("career", `\b(job|career|company|business|startup|quit\w*|resign\w*|retir\w*|boss|work)\b`,
		"In one version of this future, I am writing to you from the third year after I left that job. "+
			"The first year was harder than I expected, because the savings went faster than the spreadsheet promised, "+
			"which meant saying no to trips and small comforts. I remember the strange quiet of the first Monday mornings "+
			"without a commute, a mix of relief and fear that sat in my chest for weeks. Some days I still miss the colleagues "+
			"who knew how I took my coffee. But slowly I became someone who could sit with uncertainty without rushing to fix it. "+
			"Perhaps what surprised me most was the pride: quieter than I imagined, and it arrived on ordinary afternoons rather than at milestones."),
	newTheme("relationship", `\b(marr\w*|divorc\w*|partner|relationship|break(ing)?\s+up|engag\w*|husband|wife)\b`,
		"Perhaps this is one possible future, seen from a few years on. Because we chose this together, the first year asked "+
			"more of us than either of us admitted, which meant long evenings of talking in the kitchen after work. "+
			"I remember the tenderness of those early mornings and also the fear that I had misread something important. "+
			"Some days I still feel a small ache for the independence I gave up, the weekends that used to be only mine. "+
			"But slowly the relationship became a place where I could be seen without performing. What I didn't expect was "+
			"how much relief came from being known, and how proud I could feel of the ordinary repair after an argument."),
	newTheme("relocation", `\b(move|moving|relocat\w*|abroad|country|city|emigrat\w*|overseas)\b`,
		"In one version of this future, I have lived in the new city for almost three years. The first winter was lonely, "+
			"because I knew no one and every errand took twice as long in a language I was still learning. I remember walking "+
			"home in the evenings past windows full of families, feeling an ache I could not name. Some days I still miss the "+
			"old streets and the friends who knew my history without explanation. But slowly the neighbourhood learned my face, "+
			"and the baker started setting aside bread before I asked. The cost was real, which meant fewer visits home and a "+
			"thinner savings account. Perhaps the surprise was how much pride I found in building a life from nothing familiar."),
	newTheme("education", `\b(degree|school|study\w*|universit\w*|college|phd|enroll\w*|masters?)\b`,
		"Maybe this is how it looks from a few years on. Going back to study meant the first year was a tangle of deadlines "+
			"and doubt, because I was older than most people in the room and felt it every day. I remember late evenings at the "+
			"desk with cold tea, a low anxiety humming under everything. Some days I still miss the certainty of the work I left, "+
			"the salary that arrived without question. But slowly the material started to feel like mine, and I learned to ask "+
			"questions without apologising. The trade-off was real, which meant fewer dinners out and a careful eye on rent. "+
			"Perhaps what I carry most is a quiet pride and some relief at finally taking myself seriously."),
	newTheme("family", `\b(baby|child|children|kids?|pregnan\w*|adopt\w*|parent\w*)\b`,
		"In one version of this future, the house is louder than I ever imagined. The first year blurred together, because "+
			"sleep became a memory and every plan bent around someone small. I remember the fear of those first nights, checking "+
			"a breath in the dark, and the strange tenderness that followed me into the mornings. Some days I still miss the "+
			"spontaneity of the old weekends and the version of me who could leave on a whim. But slowly a new rhythm took hold, "+
			"which meant early dinners, shared calendars and fewer late nights with friends. Perhaps what surprised me was the joy "+
			"hiding inside the exhaustion, and the pride I felt watching us become a family."),
}

const initialDefault = "Perhaps this is one possible future, seen from a few years after the choice. The first year was uneven, " +
	"because the old routines fell away before new ones could take their place, which meant many mornings of not quite knowing " +
	"who I was becoming. I remember a particular ache on the evenings when the doubt was loudest, and the fear that I had traded " +
	"something solid for something vague. Some days I still miss parts of the life I left. But slowly the new shape of my days " +
	"became familiar, and I learned which worries deserved attention. What I didn't expect was the relief of having decided, " +
	"and a quiet pride in living with the consequences honestly."

var followUpThemes = []theme{
	newTheme("regret", `\b(regret\w*|miss\w*|lose|losing|lost|gave\s+up|give\s+up|grie\w*|sacrific\w*)\b`,
		"Perhaps the honest answer is that regret visits, but it does not stay. In the first year it came most often in the "+
			"evenings, because that was when the old life used to feel easiest, which meant those hours were where the longing "+
			"gathered. I remember one winter afternoon when the grief for what I had given up arrived all at once, sharp and "+
			"specific. Some days I still miss it. But slowly I noticed the regret changing shape, becoming less an accusation and "+
			"more a kind of tenderness toward the person I was before. What surprised me was the relief of letting both lives be "+
			"real at once, and the quiet pride of not pretending the cost away."),
	newTheme("identity", `\b(identity|who\s+i|myself|sense\s+of\s+self|becom\w*|person)\b`,
		"Maybe the change in who I am happened quietly, below the level of decisions. In the first year I kept introducing "+
			"myself the old way, because the new words felt borrowed, which meant a small jolt of unease every time someone asked "+
			"what I did. I remember the first morning I answered without hesitating, and the pride that followed me through the "+
			"day. Some days I still feel a flicker of longing for the clarity of the old title. But slowly the part of me that "+
			"needed outside permission grew quieter. What I didn't expect was how much relief there was in being less certain, "+
			"and how tender I became toward my own mistakes."),
	newTheme("relationships", `\b(partner|friends?|family|relationships?|parents?|children|people|colleagues)\b`,
		"Perhaps the people closest to me changed the most in this future. In the first year some friendships thinned out, "+
			"because our days no longer overlapped, which meant fewer easy evenings and more deliberate phone calls. I remember "+
			"the ache of realising that one old friend and I had simply drifted. Some days I still miss that shorthand. But slowly "+
			"new connections formed around the life I was actually living, and my family began to understand what this choice "+
			"gave me. What surprised me was the gratitude I felt for the people who stayed curious, and the relief of no longer "+
			"explaining myself to everyone."),
	newTheme("daily_life", `\b(days?|mornings?|routines?|evenings?|weekends?|daily|ordinary|habits?)\b`,
		"Maybe the texture of an ordinary day is where this future shows itself most. In the first month my mornings felt "+
			"unfamiliar, because the old routine had been stripped away, which meant building new habits from scratch. I remember "+
			"the restlessness of those early weeks, the urge to fill every hour. Some days I still reach for the old commute out "+
			"of habit, and I miss it less each season. But slowly the days found a shape: coffee by the window, work that asked "+
			"more of me, evenings that belonged to me again. What I didn't expect was the joy hiding in small repetitions, and a "+
			"kind of relief when an ordinary Tuesday felt like mine."),
}

const followUpDefault = "Perhaps this question has more than one answer, and this is only one of them. In the first year the " +
	"answer would have sounded different, because I was still measuring everything against the life I left, which meant many " +
	"evenings spent weighing what was gained and lost. I remember the fear that I would never feel settled, and the ache when " +
	"old plans surfaced unexpectedly. Some days I still miss what could have been. But slowly the question itself began to " +
	"feel less urgent. What surprised me was the relief of not needing a final answer, and the pride of living my way into one."

// InitialFallback returns the template reflection for a decision.
func InitialFallback(decision string) string {
	return pickTheme(initialThemes, decision, initialDefault)
}

// FollowUpFallback returns the template reflection for a question.
func FollowUpFallback(question string) string {
	return pickTheme(followUpThemes, question, followUpDefault)
}

func pickTheme(themes []theme, input, fallback string) string {
	for _, t := range themes {
		if t.re.MatchString(input) {
			return t.text
		}
	}
	return fallback
}

// FallbackTexts lists every template, for validation against the gates.
func FallbackTexts() map[string]string {
	out := map[string]string{
		"initial_default":   initialDefault,
		"follow_up_default": followUpDefault,
	}
	for _, t := range initialThemes {
		out["initial_"+t.name] = t.text
	}
	for _, t := range followUpThemes {
		out["follow_up_"+t.name] = t.text
	}
	return out
}
