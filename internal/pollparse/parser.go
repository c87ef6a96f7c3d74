// Package pollparse classifies poll replies without an LLM call. It is the
// fast path the poll handler tries before asking the classifier.
package pollparse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/saapai/jarvis-sub001/internal/model"
)

// Result is the parsed verdict plus whatever free text was left over.
type Result struct {
	Verdict model.Verdict
	Note    *string
}

// Pattern order is a policy choice: negative wins over affirmative wins over
// hedging, and a standalone "late" implies yes. "no but running late" must
// resolve to No with the trailing clause as the note.
var (
	negativePatterns = compileAll(
		`can't`, `cant`, `cannot`, `won't`, `wont`, `not coming`,
		`no`, `nope`, `nah`,
	)
	affirmativePatterns = compileAll(
		`coming`, `yes`, `yeah`, `yep`, `yup`, `y`,
	)
	hedgePatterns = compileAll(
		`maybe`, `not sure`, `unsure`, `depends`, `possibly`, `might`,
	)
	latePattern = regexp.MustCompile(`\blate\b`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`\b` + p + `\b`)
	}
	return compiled
}

// Parse classifies a poll reply. Unmatched text yields VerdictUnknown with
// the full original text as the note so the caller can escalate instead of
// silently discarding the reply.
func Parse(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Verdict: model.VerdictUnknown}
	}
	lower, back := lowered(trimmed)

	if loc := matchAny(lower, negativePatterns); loc != nil {
		return Result{Verdict: model.VerdictNo, Note: leftover(trimmed, back, loc)}
	}
	if loc := matchAny(lower, affirmativePatterns); loc != nil {
		return Result{Verdict: model.VerdictYes, Note: leftover(trimmed, back, loc)}
	}
	if loc := matchAny(lower, hedgePatterns); loc != nil {
		return Result{Verdict: model.VerdictMaybe, Note: leftover(trimmed, back, loc)}
	}
	// "running late" with nothing else matched still means they are coming.
	if latePattern.MatchString(lower) {
		note := trimmed
		return Result{Verdict: model.VerdictYes, Note: &note}
	}

	note := trimmed
	return Result{Verdict: model.VerdictUnknown, Note: &note}
}

// lowered lowercases s rune by rune and records, for every rune boundary of
// the lowered string, the byte offset of the same boundary in s. Lowercasing
// can change a rune's byte length, so match positions found in the lowered
// text must be translated back before slicing the original.
func lowered(s string) (string, map[int]int) {
	var b strings.Builder
	b.Grow(len(s))
	back := make(map[int]int, len(s)+1)
	for i, r := range s {
		back[b.Len()] = i
		b.WriteRune(unicode.ToLower(r))
	}
	back[b.Len()] = len(s)
	return b.String(), back
}

func matchAny(lower string, patterns []*regexp.Regexp) []int {
	for _, p := range patterns {
		if loc := p.FindStringIndex(lower); loc != nil {
			return loc
		}
	}
	return nil
}

// leftover strips the matched keyword out of the original text; what remains
// becomes the note, or nil when nothing is left. loc indexes the lowered
// text; back maps it onto the original.
func leftover(original string, back map[int]int, loc []int) *string {
	rest := original[:back[loc[0]]] + original[back[loc[1]]:]
	rest = strings.Trim(rest, " \t,.!?-")
	if rest == "" {
		return nil
	}
	return &rest
}
