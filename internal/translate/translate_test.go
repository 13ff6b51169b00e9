package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	response  string
	err       error
	available bool
	prompt    string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ float64, _ int) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeGenerator) Available() bool { return f.available }

func TestTranslateSuccess(t *testing.T) {
	gen := &fakeGenerator{available: true, response: "  Work Instruction - Assembly Procedure, translated.  "}
	tr := New(gen, nil)

	result := tr.Translate(context.Background(), "作業指示書", "ja", "en")

	assert.False(t, result.DemoMode)
	assert.Equal(t, "Work Instruction - Assembly Procedure, translated.", result.TranslatedContent)
	assert.Equal(t, "作業指示書", result.OriginalContent)
	assert.Equal(t, "ja", result.SourceLanguage)
	assert.Equal(t, "en", result.TargetLanguage)
	assert.Equal(t, len("作業指示書"), result.CharacterCount)
}

func TestTranslatePromptPreservesContent(t *testing.T) {
	gen := &fakeGenerator{available: true, response: "long enough translation"}
	tr := New(gen, nil)

	tr.Translate(context.Background(), "M6×20mm ボルト", "ja", "en")

	require.NotEmpty(t, gen.prompt)
	assert.Contains(t, gen.prompt, "M6×20mm ボルト")
	assert.Contains(t, gen.prompt, "translate the following ja technical work instruction document to en")
}

func TestTranslateUnavailableGeneratorUsesDemo(t *testing.T) {
	tr := New(&fakeGenerator{available: false}, nil)

	result := tr.Translate(context.Background(), "text", "ja", "en")

	assert.True(t, result.DemoMode)
	assert.Equal(t, DemoTranslation(), result.TranslatedContent)
}

func TestTranslateNilGeneratorUsesDemo(t *testing.T) {
	tr := New(nil, nil)

	result := tr.Translate(context.Background(), "text", "ja", "en")

	assert.True(t, result.DemoMode)
}

func TestTranslateErrorUsesDemo(t *testing.T) {
	gen := &fakeGenerator{available: true, err: errors.New("api down")}
	tr := New(gen, nil)

	result := tr.Translate(context.Background(), "text", "ja", "en")

	assert.True(t, result.DemoMode)
	assert.Equal(t, DemoTranslation(), result.TranslatedContent)
}

func TestTranslateShortResponseUsesDemo(t *testing.T) {
	gen := &fakeGenerator{available: true, response: "ok"}
	tr := New(gen, nil)

	result := tr.Translate(context.Background(), "text", "ja", "en")

	assert.True(t, result.DemoMode)
}
