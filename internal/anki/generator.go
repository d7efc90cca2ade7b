package anki

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Card represents a single Anki flashcard
type Card struct {
	Word        string   // The saved word or phrase
	Translation string   // Optional translation
	Notes       string   // Optional notes
	Tags        []string // Anki tags, without spaces
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	DeckName       string // Deck the notes are imported into
	IncludeHeaders bool   // Include Anki file headers
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "glossa_vocabulary.csv",
		DeckName:       "Glossa Vocabulary",
		IncludeHeaders: true,
	}
}

// Generator creates Anki-compatible import files
type Generator struct {
	options *GeneratorOptions
	cards   []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		cards:   make([]Card, 0),
	}
}

// AddCard adds a card to the collection. Cards without a word are ignored.
func (g *Generator) AddCard(card Card) {
	card.Word = strings.TrimSpace(card.Word)
	if card.Word == "" {
		return
	}
	g.cards = append(g.cards, card)
}

// GetCards returns a slice of all cards for modification
func (g *Generator) GetCards() []Card {
	return g.cards
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV() error {
	if dir := filepath.Dir(g.options.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Create output file
	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	return g.WriteCSV(file)
}

// WriteCSV writes the cards in Anki's text import format
func (g *Generator) WriteCSV(w io.Writer) error {
	// Anki reads these directives instead of asking in the import dialog
	if g.options.IncludeHeaders {
		headers := []string{
			"#separator:Comma",
			"#html:false",
			"#columns:Word,Translation,Notes,Tags",
			"#tags column:4",
		}
		if g.options.DeckName != "" {
			headers = append(headers, "#deck:"+g.options.DeckName)
		}
		for _, h := range headers {
			if _, err := fmt.Fprintln(w, h); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
	}

	// Create CSV writer
	writer := csv.NewWriter(w)

	// Write cards
	for _, card := range g.cards {
		record := []string{
			card.Word,
			card.Translation,
			card.Notes,
			formatTags(card.Tags),
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatTags joins tags with spaces, replacing spaces inside a tag
func formatTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(tag), "_")
		if tag != "" {
			out = append(out, tag)
		}
	}
	return strings.Join(out, " ")
}

// Stats returns statistics about the card collection
func (g *Generator) Stats() (totalCards, withTranslation int) {
	totalCards = len(g.cards)

	for _, card := range g.cards {
		if card.Translation != "" {
			withTranslation++
		}
	}

	return
}
