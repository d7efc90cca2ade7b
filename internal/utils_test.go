package internal

import "testing"

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"gato", 10, "gato"},
		{"  el   gato\n negro ", 40, "el gato negro"},
		{"abcdefghij", 6, "abc..."},
		{"ябълка", 3, "ябъ"},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		if got := Preview(tt.in, tt.n); got != tt.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"vocab":            "vocab",
		"my vocab.db":      "my_vocab_db",
		"котка-1":          "котка-1",
		"../../etc/passwd": "______etc_passwd",
	}

	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
