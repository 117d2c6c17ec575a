package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
	"github.com/katkatprog/sleepApp-sub000/pkg/llm"
)

// wordCountTarget is roughly what one completion yields before the
// generative service starts truncating.
const wordCountTarget = 200

// wordSeparators are the delimiters the generative service is known to
// use: ASCII comma, ideographic comma, full-width comma.
const wordSeparators = ",、，"

// WordListGenerator obtains a themed word list from the generative
// service and normalizes entries the synthesis voice tends to misread.
type WordListGenerator struct {
	client      llm.Client
	transformer Transformer
	log         *zap.Logger
}

// NewWordListGenerator creates a generator. transformer may be nil, in
// which case single-character words are kept as generated.
func NewWordListGenerator(client llm.Client, transformer Transformer, log *zap.Logger) *WordListGenerator {
	return &WordListGenerator{client: client, transformer: transformer, log: log}
}

// Generate produces the normalized word list for a theme. An empty
// theme yields an untargeted list. Generation failures are fatal to the
// calling batch run; normalization failures never are.
func (g *WordListGenerator) Generate(ctx context.Context, theme string) ([]string, error) {
	text, err := g.client.Complete(ctx, buildPrompt(theme))
	if err != nil {
		return nil, errors.WrapCode(errors.CodeGeneration, err, "word list generation failed")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.WithCode(errors.CodeGeneration, "generative service returned empty text")
	}

	words := splitWordList(text)
	if len(words) == 0 {
		return nil, errors.WithCode(errors.CodeGeneration, "no usable words in generated text")
	}

	words = g.normalizeSingleCharacterWords(ctx, words)
	g.log.Info("word list generated",
		zap.String("theme", theme),
		zap.Int("count", len(words)))
	return words, nil
}

func buildPrompt(theme string) string {
	if theme == "" {
		return fmt.Sprintf(
			"ジャンルを問わず、互いに関連のない日本語の名詞を%d個、カンマ区切りで出力してください。説明や番号は不要です。",
			wordCountTarget)
	}
	return fmt.Sprintf(
		"「%s」に関連する日本語の名詞を%d個、カンマ区切りで出力してください。説明や番号は不要です。",
		theme, wordCountTarget)
}

// splitWordList strips whitespace, splits on the delimiter set and
// drops the first and last fragment. The dropped fragments are
// boundary-noise heuristics (prompt echo, trailing punctuation), not a
// guarantee about the service's output shape.
func splitWordList(text string) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	fragments := strings.FieldsFunc(stripped, func(r rune) bool {
		return strings.ContainsRune(wordSeparators, r)
	})
	if len(fragments) <= 2 {
		return nil
	}
	fragments = fragments[1 : len(fragments)-1]

	words := make([]string, 0, len(fragments))
	for _, f := range fragments {
		w := norm.NFKC.String(f)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// normalizeSingleCharacterWords converts one-character words to a
// phonetic form. Single-character kanji are disproportionately read
// with the wrong pronunciation, so those go through the transform
// service; anything longer is kept as generated. A failed or
// count-mismatched transform falls back to the original words.
func (g *WordListGenerator) normalizeSingleCharacterWords(ctx context.Context, words []string) []string {
	singles := make([]string, 0)
	rest := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) == 1 {
			singles = append(singles, w)
		} else {
			rest = append(rest, w)
		}
	}
	if len(singles) == 0 || g.transformer == nil {
		return append(singles, rest...)
	}

	phonetic, err := g.transformer.ToPhonetic(ctx, singles)
	if err != nil {
		g.log.Info("phonetic normalization failed, keeping original words",
			zap.Int("code", errors.CodeNormalization),
			zap.Error(err))
		return append(singles, rest...)
	}
	if len(phonetic) != len(singles) {
		g.log.Info("phonetic normalization returned mismatched count, keeping original words",
			zap.Int("code", errors.CodeNormalization),
			zap.Int("sent", len(singles)),
			zap.Int("received", len(phonetic)))
		return append(singles, rest...)
	}
	return append(phonetic, rest...)
}
