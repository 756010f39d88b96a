package message

import (
	"strings"
	"testing"

	"go.klb.dev/smartclip/internal/config"
)

func TestEncodeOmitsEmptyFields(t *testing.T) {
	raw, err := (&Message{Type: TypeStatus}).Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(raw) != `{"type":"STATUS"}` {
		t.Fatalf("expected bare status request, got %s", raw)
	}
}

func TestDecodeSettings(t *testing.T) {
	s := config.Defaults()
	raw, _ := (&Message{Type: TypeOK, Settings: &s}).Encode()
	if !strings.Contains(string(raw), `"primary_hotkey":"ctrl+g"`) {
		t.Fatalf("expected settings fields in %s", raw)
	}
	m, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Settings == nil || *m.Settings != s {
		t.Fatalf("expected %+v, got %+v", s, m.Settings)
	}
}

func TestErr(t *testing.T) {
	if OK().Err() != nil {
		t.Fatalf("expected no error from OK")
	}
	err := Errorf("index %d out of range", 7).Err()
	if err == nil || !strings.Contains(err.Error(), "index 7 out of range") {
		t.Fatalf("expected error text, got %v", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("{")); err == nil {
		t.Fatalf("expected error")
	}
}
