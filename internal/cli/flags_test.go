package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"BackendURL", flags.BackendURL, "http://localhost:8000"},
		{"LogLevel", flags.LogLevel, "info"},
		{"Stealth", flags.Stealth, true},
		{"SaveKey", flags.SaveKey, "Shift"},
		{"Locale", flags.Locale, "en"},
		{"Addr", flags.Addr, ":8000"},
		{"Provider", flags.Provider, "openai"},
		{"Output", flags.Output, "glossa_vocabulary.csv"},
		{"DeckName", flags.DeckName, "Glossa Vocabulary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Headless", flags.Headless},
		{"ListModels", flags.ListModels},
		{"TranslateCards", flags.TranslateCards},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"IdentityDB", flags.IdentityDB},
		{"Remote", flags.Remote},
		{"DB", flags.DB},
		{"DisplayName", flags.DisplayName},
		{"User", flags.User},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}

func TestFlagsStructure(t *testing.T) {
	// Test that Flags struct has all expected fields
	flags := &Flags{}
	flagsType := reflect.TypeOf(*flags)

	expectedFields := []string{
		"CfgFile", "BackendURL", "IdentityDB", "LogLevel",
		"Headless", "Remote", "Stealth", "SaveKey", "Locale",
		"Addr", "DB", "Provider", "ListModels",
		"DisplayName", "User", "Output", "DeckName", "TranslateCards",
	}

	for _, fieldName := range expectedFields {
		t.Run("has_field_"+fieldName, func(t *testing.T) {
			if _, ok := flagsType.FieldByName(fieldName); !ok {
				t.Errorf("Flags struct missing field: %s", fieldName)
			}
		})
	}
}
