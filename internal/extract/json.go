// Package extract turns free-text model output into the structured
// fields of an analysis result. The upstream model is prompted for
// JSON on the authenticity and price stages but is not guaranteed to
// comply, so everything here is written against text: fenced blocks
// are unwrapped, sloppy JSON is repaired once, and narrative fields
// are matched with fixed pattern tables.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// smart punctuation the model sometimes emits inside JSON
var quoteNormalizer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// jsonBlock isolates the JSON object inside raw model output. A fenced
// ```json block wins; otherwise the slice from the first "{" to the
// last "}" is used.
func jsonBlock(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if m := fencedBlockRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// repairJSON normalizes curly quotes and strips trailing commas. It is
// applied only after a verbatim parse has already failed.
func repairJSON(s string) string {
	s = quoteNormalizer.Replace(s)
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// decodeObject parses the JSON object in raw into v, repairing once on
// failure. The error from the verbatim attempt is surfaced when the
// repaired attempt also fails.
func decodeObject(raw string, v any) error {
	block, ok := jsonBlock(raw)
	if !ok {
		return errNoJSONObject
	}
	err := json.Unmarshal([]byte(block), v)
	if err == nil {
		return nil
	}
	if rerr := json.Unmarshal([]byte(repairJSON(block)), v); rerr == nil {
		return nil
	}
	return err
}

var errNoJSONObject = jsonError("no JSON object in model response")

type jsonError string

func (e jsonError) Error() string { return string(e) }
