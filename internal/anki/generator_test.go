package anki

import (
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/glossa/internal/testutil"
)

func TestDefaultGeneratorOptions(t *testing.T) {
	opts := DefaultGeneratorOptions()

	if opts.OutputPath != "glossa_vocabulary.csv" {
		t.Errorf("Expected output path 'glossa_vocabulary.csv', got '%s'", opts.OutputPath)
	}

	if opts.DeckName != "Glossa Vocabulary" {
		t.Errorf("Expected deck 'Glossa Vocabulary', got '%s'", opts.DeckName)
	}

	if !opts.IncludeHeaders {
		t.Error("Expected IncludeHeaders to be true")
	}
}

func TestNewGenerator(t *testing.T) {
	// Test with nil options
	gen := NewGenerator(nil)
	if gen == nil {
		t.Fatal("NewGenerator returned nil")
	}
	if gen.options == nil {
		t.Error("Generator options should not be nil")
	}

	// Test with custom options
	opts := &GeneratorOptions{
		OutputPath: "custom.csv",
	}
	gen = NewGenerator(opts)
	if gen.options.OutputPath != "custom.csv" {
		t.Errorf("Expected custom output path, got '%s'", gen.options.OutputPath)
	}
}

func TestAddCard(t *testing.T) {
	gen := NewGenerator(nil)

	gen.AddCard(Card{Word: " perro ", Translation: "dog", Notes: "test note"})
	gen.AddCard(Card{Word: "   "})

	if len(gen.cards) != 1 {
		t.Fatalf("Expected 1 card, got %d", len(gen.cards))
	}

	if gen.cards[0].Word != "perro" {
		t.Errorf("Expected word 'perro', got '%s'", gen.cards[0].Word)
	}
}

func TestGetCards(t *testing.T) {
	gen := NewGenerator(nil)

	gen.AddCard(Card{Word: "perro"})
	gen.AddCard(Card{Word: "gato"})

	cards := gen.GetCards()
	if len(cards) != 2 {
		t.Errorf("Expected 2 cards, got %d", len(cards))
	}

	// Test that we can modify the returned slice
	cards[0].Translation = "dog"
	if gen.cards[0].Translation != "dog" {
		t.Error("GetCards should return the actual slice, not a copy")
	}
}

func TestFormatTags(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{"nil", nil, ""},
		{"single", []string{"glossa"}, "glossa"},
		{"spaces inside tag", []string{"glossa", "user alice"}, "glossa user_alice"},
		{"blank dropped", []string{"", "  ", "x"}, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTags(tt.input); got != tt.expected {
				t.Errorf("formatTags(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	gen := NewGenerator(&GeneratorOptions{DeckName: "Spanish", IncludeHeaders: true})
	gen.AddCard(Card{Word: "perro", Translation: "dog", Tags: []string{"glossa", "alice"}})
	gen.AddCard(Card{Word: "hola, amigo", Translation: "hello, friend"})

	var out strings.Builder
	if err := gen.WriteCSV(&out); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	expected := "#separator:Comma\n" +
		"#html:false\n" +
		"#columns:Word,Translation,Notes,Tags\n" +
		"#tags column:4\n" +
		"#deck:Spanish\n" +
		"perro,dog,,glossa alice\n" +
		"\"hola, amigo\",\"hello, friend\",,\n"
	if out.String() != expected {
		t.Errorf("Unexpected CSV:\n%s\nwant:\n%s", out.String(), expected)
	}
}

func TestWriteCSV_NoHeaders(t *testing.T) {
	gen := NewGenerator(&GeneratorOptions{})
	gen.AddCard(Card{Word: "perro"})

	var out strings.Builder
	if err := gen.WriteCSV(&out); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if out.String() != "perro,,,\n" {
		t.Errorf("Expected a single record, got %q", out.String())
	}
}

func TestGenerateCSV(t *testing.T) {
	tempDir := testutil.CreateTestDirectory(t)
	path := filepath.Join(tempDir, "export", "words.csv")

	gen := NewGenerator(&GeneratorOptions{OutputPath: path, IncludeHeaders: true})
	gen.AddCard(Card{Word: "perro", Translation: "dog"})

	if err := gen.GenerateCSV(); err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}

	testutil.AssertFileExists(t, path)
	testutil.AssertFileContains(t, path, "perro,dog,,")
}

func TestStats(t *testing.T) {
	gen := NewGenerator(nil)
	gen.AddCard(Card{Word: "perro", Translation: "dog"})
	gen.AddCard(Card{Word: "gato"})

	total, translated := gen.Stats()
	if total != 2 {
		t.Errorf("Expected 2 cards, got %d", total)
	}
	if translated != 1 {
		t.Errorf("Expected 1 translated card, got %d", translated)
	}
}
