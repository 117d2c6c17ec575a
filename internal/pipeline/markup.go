package pipeline

import "strings"

// The rate and pause values are domain constants of the
// cognitive-shuffle technique; the synthesis output must reproduce them
// exactly.
const (
	markupPrologue = `<speak><prosody rate="95%">`
	markupBreak    = `<break time="6s"/>`
	markupEpilogue = `</prosody></speak>`
)

// EncodeMarkup serializes the word sequence into the synthesis
// service's break-annotated markup. Empty input yields just the
// prologue and epilogue.
func EncodeMarkup(words []string) string {
	var b strings.Builder
	b.WriteString(markupPrologue)
	for _, w := range words {
		b.WriteString(w)
		b.WriteString(markupBreak)
	}
	b.WriteString(markupEpilogue)
	return b.String()
}
