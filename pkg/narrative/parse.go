package narrative

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedReply marks a backend reply that could not be parsed.
// Interpret recovers from it locally; callers only see it for logging.
var ErrMalformedReply = errors.New("malformed backend reply")

// FallbackNarrative is shown when the backend returns something the
// parser cannot make sense of. The game must never hard-crash on a
// garbled reply.
const FallbackNarrative = "The world flickers and dissolves into static. " +
	"For a moment nothing is real. Then the scene reassembles itself " +
	"around you, almost as it was. Something out there misspoke."

// Fallback returns the designated glitch response: neutral outcome,
// no state changes, no choices.
func Fallback() *Response {
	return &Response{
		Narrative: FallbackNarrative,
		Outcome:   OutcomeNeutral,
	}
}

// Interpret turns a raw backend reply into a typed Response. It never
// fails: a reply that cannot be parsed, or that parses but carries no
// narrative, yields the glitch fallback plus a non-nil error for
// logging. State-mutating fields never leak out of a bad reply.
func Interpret(raw string) (*Response, error) {
	text := stripFences(raw)
	if text == "" {
		return Fallback(), fmt.Errorf("%w: empty reply", ErrMalformedReply)
	}

	var resp Response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		// Models sometimes wrap the JSON object in prose. Retry on
		// the outermost brace span before giving up.
		if inner, ok := braceSpan(text); ok {
			if err2 := json.Unmarshal([]byte(inner), &resp); err2 == nil {
				return sanitize(&resp)
			}
		}
		return Fallback(), fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return sanitize(&resp)
}

func sanitize(resp *Response) (*Response, error) {
	if strings.TrimSpace(resp.Narrative) == "" {
		return Fallback(), fmt.Errorf("%w: missing narrative", ErrMalformedReply)
	}
	resp.Outcome = resp.Outcome.normalize()

	// Drop choices a player could not act on.
	choices := resp.Choices[:0]
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Label) == "" {
			continue
		}
		if strings.TrimSpace(c.Action) == "" {
			c.Action = c.Label
		}
		choices = append(choices, c)
	}
	resp.Choices = choices

	if resp.StatsSet != nil {
		resp.StatsSet = resp.StatsSet.Clamped()
	}
	return resp, nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// braceSpan extracts the outermost {...} span from mixed prose.
func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
