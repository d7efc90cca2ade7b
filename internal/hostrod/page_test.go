package hostrod

import (
	"strings"
	"testing"

	"codeberg.org/snonux/glossa/internal/highlighter"
	"codeberg.org/snonux/glossa/internal/overlay"
)

func TestDecodeBindingPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantType  highlighter.EventType
		wantKey   string
		prevented bool
		selectAll bool
	}{
		{
			name:     "pointer up",
			payload:  `{"type":"pointerup"}`,
			wantType: highlighter.EventPointerUp,
		},
		{
			name:      "select all key up",
			payload:   `{"type":"keyup","key":"a","ctrl":true}`,
			wantType:  highlighter.EventKeyUp,
			wantKey:   "a",
			selectAll: true,
		},
		{
			name:      "save key cancelled in page",
			payload:   `{"type":"keydown","key":"Shift","shift":true,"prevented":true}`,
			wantType:  highlighter.EventKeyDown,
			wantKey:   "Shift",
			prevented: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeBindingPayload(tt.payload)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ev.Type != tt.wantType {
				t.Errorf("Expected type %v, got %v", tt.wantType, ev.Type)
			}
			if tt.wantType == highlighter.EventPointerUp {
				if ev.Key != nil {
					t.Errorf("Expected no key for pointer event, got %+v", ev.Key)
				}
				return
			}
			if ev.Key == nil {
				t.Fatal("Expected key event")
			}
			if ev.Key.Key != tt.wantKey {
				t.Errorf("Expected key %q, got %q", tt.wantKey, ev.Key.Key)
			}
			if ev.Key.Prevented != tt.prevented {
				t.Errorf("Expected prevented %v, got %v", tt.prevented, ev.Key.Prevented)
			}
			if ev.Key.Ctrl != tt.selectAll {
				t.Errorf("Expected ctrl %v, got %v", tt.selectAll, ev.Key.Ctrl)
			}
		})
	}
}

func TestDecodeBindingPayload_Errors(t *testing.T) {
	for _, payload := range []string{`not json`, `{"type":"scroll"}`, `{}`} {
		if _, err := decodeBindingPayload(payload); err == nil {
			t.Errorf("Expected error for payload %q", payload)
		}
	}
}

func TestBridgeCall(t *testing.T) {
	script, err := bridgeCall(`Sh"ift`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasSuffix(script, `)(...["Sh\"ift","__glossa_binding"]);`) {
		t.Errorf("Expected quoted arguments at the end, got %q", script[len(script)-60:])
	}
	if !strings.HasPrefix(script, "((saveKey, bindingName) =>") {
		t.Errorf("Expected the bridge function first, got %q", script[:40])
	}
}

func TestToView(t *testing.T) {
	v := toView(overlay.Popup{
		ID:       7,
		Top:      50,
		Left:     12,
		Original: "perro",
		Status:   "dog",
		State:    overlay.State{Phase: overlay.PhaseResolved, Text: "dog"},
	})
	if v.ID != 7 || v.Top != 50 || v.Left != 12 {
		t.Errorf("Expected id 7 at 50/12, got %+v", v)
	}
	if v.Phase != "resolved" {
		t.Errorf("Expected phase resolved, got %q", v.Phase)
	}
}
