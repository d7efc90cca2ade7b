package translation

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const autoLanguage = "auto"

var stripPolicy = bluemonday.StrictPolicy()

// buildPrompt asks for a JSON object so both providers can run in JSON mode.
func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a translation engine for language learners. ")
	if req.SourceLanguage == "" || strings.EqualFold(req.SourceLanguage, autoLanguage) {
		b.WriteString("Detect the language of the text and translate it ")
	} else {
		fmt.Fprintf(&b, "Translate the %s text ", req.SourceLanguage)
	}
	fmt.Fprintf(&b, "into %s. ", req.TargetLanguage)
	b.WriteString(`Respond with only a JSON object of the form `)
	b.WriteString(`{"source_language": "<language name>", "translated_text": "<translation>"}. `)
	b.WriteString("Text:\n")
	b.WriteString(req.Text)
	return b.String()
}

type modelAnswer struct {
	SourceLanguage string `json:"source_language"`
	TranslatedText string `json:"translated_text"`
}

// parseAnswer decodes the model's JSON answer. Models sometimes wrap it in
// a markdown fence; that is tolerated.
func parseAnswer(raw string, req Request) (Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var ans modelAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &ans); err != nil {
		return Result{}, fmt.Errorf("failed to parse model answer: %w", err)
	}

	text := Clean(ans.TranslatedText)
	if text == "" {
		return Result{}, fmt.Errorf("no translation returned")
	}

	source := Clean(ans.SourceLanguage)
	if source == "" {
		source = req.SourceLanguage
	}
	return Result{
		SourceLanguage: source,
		TargetLanguage: req.TargetLanguage,
		TranslatedText: text,
	}, nil
}

// Clean strips any markup from model output and collapses it to plain text.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}
