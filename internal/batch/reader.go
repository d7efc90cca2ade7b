package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// WordEntry is one line of a word list
type WordEntry struct {
	Word string
	// Note is the text after '=', usually a translation
	Note string
}

// ReadWordFile reads words from a file and returns WordEntry slice
// Supports formats:
// - Word only: "perro"
// - With a note: "perro = dog"
// Blank lines, lines starting with '#' and lines without a word are skipped.
func ReadWordFile(filename string) ([]WordEntry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word file: %w", err)
	}
	defer file.Close()

	entries, err := ParseWords(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read word file: %w", err)
	}
	return entries, nil
}

// ParseWords reads a word list from r
func ParseWords(r io.Reader) ([]WordEntry, error) {
	var entries []WordEntry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, note, _ := strings.Cut(line, "=")
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		entries = append(entries, WordEntry{Word: word, Note: strings.TrimSpace(note)})
	}

	return entries, scanner.Err()
}
