package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
)

type fakeLLM struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type fakeTransformer struct {
	out []string
	err error
	got []string
}

func (f *fakeTransformer) ToPhonetic(ctx context.Context, words []string) ([]string, error) {
	f.got = append([]string(nil), words...)
	return f.out, f.err
}

func TestGenerateDropsBoundaryFragments(t *testing.T) {
	client := &fakeLLM{text: "dummy1, 空, テーブル, 椅子, 水, コンピュータ, dummy2"}
	g := NewWordListGenerator(client, nil, zap.NewNop())

	words, err := g.Generate(context.Background(), "")
	require.NoError(t, err)

	assert.NotContains(t, words, "dummy1")
	assert.NotContains(t, words, "dummy2")
	assert.ElementsMatch(t, []string{"空", "テーブル", "椅子", "水", "コンピュータ"}, words)
}

func TestGenerateSplitsOnAllCommaVariants(t *testing.T) {
	client := &fakeLLM{text: "x、りんご，みかん,ぶどう、y"}
	g := NewWordListGenerator(client, nil, zap.NewNop())

	words, err := g.Generate(context.Background(), "果物")
	require.NoError(t, err)
	assert.Equal(t, []string{"りんご", "みかん", "ぶどう"}, words)
}

func TestGenerateStripsWhitespaceAndNewlines(t *testing.T) {
	client := &fakeLLM{text: "head,\n りんご ,\nみかん\n, tail"}
	g := NewWordListGenerator(client, nil, zap.NewNop())

	words, err := g.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"りんご", "みかん"}, words)
}

func TestGenerateEmbedsThemeInPrompt(t *testing.T) {
	client := &fakeLLM{text: "a,b,c,d"}
	g := NewWordListGenerator(client, nil, zap.NewNop())

	_, err := g.Generate(context.Background(), "宇宙")
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "宇宙")
}

func TestGenerateNormalizesSingleCharacterWords(t *testing.T) {
	client := &fakeLLM{text: "head,空,テーブル,水,tail"}
	tr := &fakeTransformer{out: []string{"ソラ", "ミズ"}}
	g := NewWordListGenerator(client, tr, zap.NewNop())

	words, err := g.Generate(context.Background(), "")
	require.NoError(t, err)

	// Only the one-character words reach the transformer.
	assert.Equal(t, []string{"空", "水"}, tr.got)
	// Normalized singles come first, longer words keep their order.
	assert.Equal(t, []string{"ソラ", "ミズ", "テーブル"}, words)
}

func TestGenerateFallsBackOnCountMismatch(t *testing.T) {
	client := &fakeLLM{text: "head,空,テーブル,水,tail"}
	tr := &fakeTransformer{out: []string{"ソラ"}} // one short
	g := NewWordListGenerator(client, tr, zap.NewNop())

	words, err := g.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"空", "水", "テーブル"}, words)
}

func TestGenerateFallsBackOnTransformerError(t *testing.T) {
	client := &fakeLLM{text: "head,空,テーブル,水,tail"}
	tr := &fakeTransformer{err: assert.AnError}
	g := NewWordListGenerator(client, tr, zap.NewNop())

	words, err := g.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"空", "水", "テーブル"}, words)
}

func TestGenerateSkipsTransformerWithoutSingles(t *testing.T) {
	client := &fakeLLM{text: "head,りんご,みかん,tail"}
	tr := &fakeTransformer{out: []string{"unused"}}
	g := NewWordListGenerator(client, tr, zap.NewNop())

	words, err := g.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"りんご", "みかん"}, words)
	assert.Nil(t, tr.got)
}

func TestGenerateFailsOnEmptyCompletion(t *testing.T) {
	g := NewWordListGenerator(&fakeLLM{text: "  \n "}, nil, zap.NewNop())

	_, err := g.Generate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeGeneration, errors.GetCode(err))
}

func TestGenerateFailsOnServiceError(t *testing.T) {
	g := NewWordListGenerator(&fakeLLM{err: assert.AnError}, nil, zap.NewNop())

	_, err := g.Generate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeGeneration, errors.GetCode(err))
}

func TestGenerateFailsWhenOnlyBoundaryFragments(t *testing.T) {
	g := NewWordListGenerator(&fakeLLM{text: "a,b"}, nil, zap.NewNop())

	_, err := g.Generate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeGeneration, errors.GetCode(err))
}
