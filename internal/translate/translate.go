// Package translate renders technical documents into English ahead of
// extraction, preserving part numbers and measurements verbatim.
package translate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/bomatch/internal/extraction"
)

const (
	translationTemperature = 0.1
	translationMaxTokens   = 4000

	// minTranslationLength guards against degenerate one-token responses.
	minTranslationLength = 10
)

// Result is the outcome of translating one document.
type Result struct {
	OriginalContent   string `json:"original_content"`
	TranslatedContent string `json:"translated_content"`
	SourceLanguage    string `json:"source_language"`
	TargetLanguage    string `json:"target_language"`
	CharacterCount    int    `json:"character_count"`
	DemoMode          bool   `json:"demo_mode"`
}

// Translator translates documents through a text generator.
type Translator struct {
	gen    extraction.Generator
	logger *zap.Logger
}

// New creates a Translator. A nil generator degrades to the demo
// translation.
func New(gen extraction.Generator, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{gen: gen, logger: logger}
}

// Translate converts content from sourceLang to targetLang. Generator
// failures, unavailability and implausibly short responses all degrade to
// the demo translation rather than failing the run.
func (t *Translator) Translate(ctx context.Context, content, sourceLang, targetLang string) *Result {
	result := &Result{
		OriginalContent: content,
		SourceLanguage:  sourceLang,
		TargetLanguage:  targetLang,
		CharacterCount:  len(content),
	}

	if t.gen == nil || !t.gen.Available() {
		t.logger.Info("generator not available, using demo translation")
		result.TranslatedContent = DemoTranslation()
		result.DemoMode = true
		return result
	}

	response, err := t.gen.Generate(ctx, buildTranslationPrompt(content, sourceLang, targetLang),
		translationTemperature, translationMaxTokens)
	if err != nil {
		t.logger.Warn("translation failed, using demo translation", zap.Error(err))
		result.TranslatedContent = DemoTranslation()
		result.DemoMode = true
		return result
	}

	translated := strings.TrimSpace(response)
	if len(translated) <= minTranslationLength {
		t.logger.Warn("translation response too short, using demo translation",
			zap.Int("length", len(translated)),
		)
		result.TranslatedContent = DemoTranslation()
		result.DemoMode = true
		return result
	}

	t.logger.Info("document translated",
		zap.Int("source_chars", len(content)),
		zap.Int("translated_chars", len(translated)),
	)
	result.TranslatedContent = translated
	return result
}

func buildTranslationPrompt(content, sourceLang, targetLang string) string {
	return fmt.Sprintf(`
Please translate the following %s technical work instruction document to %s.

IMPORTANT INSTRUCTIONS:
- Maintain technical accuracy and preserve any part numbers, measurements, or technical specifications EXACTLY
- Keep numerical values unchanged (e.g., M6×20mm, 8-10 N·m, 25mm, etc.)
- Preserve part numbers and model codes exactly as written
- Translate procedural steps clearly while maintaining technical precision
- Keep quality control terminology consistent

Text to translate:
%s

Provide only the translated text without any additional commentary.
`, sourceLang, targetLang, content)
}

// DemoTranslation returns the fixed English translation used when the
// generator cannot produce one.
func DemoTranslation() string {
	return `Work Instruction - Assembly Procedure

Step 1: Part Preparation
- M6×20mm hex bolts x 4 pieces
- Industrial adhesive tape 25mm width x 2 rolls
- Sealing material (silicone type) x 1 tube

Step 2: Chassis Assembly
Use M6×20mm bolts to secure the chassis.
Tightening torque: 8-10 N·m

Step 3: Wiring Work
Use adhesive tape to secure cable harnesses.
Wrap with tape width 25mm, length 50mm.

Step 4: Sealing Process
Apply silicone sealing material to joint areas.
Curing time: 24 hours

Quality Control Checkpoints:
- Verify bolt tightening
- Confirm wiring securing condition
- Check sealing material application condition

Tools Used:
- Torque wrench (10N·m compatible)
- Cable cutter
- Sealing material application gun`
}
