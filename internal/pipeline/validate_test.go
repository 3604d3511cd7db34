package pipeline

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestValidateCardAcceptsTaggedObject(t *testing.T) {
	in := `{"type":"AdaptiveCard","body":[]}`
	card, err := validateCard(in)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var got, want map[string]any
	if err := json.Unmarshal(card, &got); err != nil {
		t.Fatalf("unmarshal artifact: %v", err)
	}
	if err := json.Unmarshal([]byte(in), &want); err != nil {
		t.Fatalf("unmarshal input: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("artifact = %v, want %v", got, want)
	}
}

func TestValidateCardTrimsSurroundingWhitespace(t *testing.T) {
	card, err := validateCard("\n  {\"type\":\"AdaptiveCard\",\"version\":\"1.5\"}  \n")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if card[0] != '{' {
		t.Fatalf("artifact should start at the object, got %q", card[0])
	}
}

func TestValidateCardRejections(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"not json", "here is your card!"},
		{"json array", `[{"type":"AdaptiveCard"}]`},
		{"json scalar", `"AdaptiveCard"`},
		{"null", "null"},
		{"missing tag", `{"body":[]}`},
		{"wrong tag", `{"type":"HeroCard","body":[]}`},
		{"non-string tag", `{"type":42}`},
		{"markdown fenced", "```json\n{\"type\":\"AdaptiveCard\"}\n```"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card, err := validateCard(tc.in)
			if err == nil {
				t.Fatalf("expected rejection, got artifact %s", card)
			}
			if !IsMalformedResponse(err) {
				t.Fatalf("expected malformed-response error, got %v", err)
			}
			if card != nil {
				t.Fatalf("no partial artifact may be returned, got %s", card)
			}
			raw, ok := MalformedRaw(err)
			if !ok || raw != tc.in {
				t.Fatalf("raw text not retained for diagnostics: %q", raw)
			}
		})
	}
}

func TestMalformedErrorHidesRawFromMessage(t *testing.T) {
	secret := `{"internal":"do-not-leak"}`
	_, err := validateCard(secret)
	if err == nil {
		t.Fatalf("expected error")
	}
	if msg := err.Error(); strings.Contains(msg, "do-not-leak") {
		t.Fatalf("error message leaks raw payload: %q", msg)
	}
}
