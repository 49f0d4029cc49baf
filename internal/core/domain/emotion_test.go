package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		want    Emotion
		wantErr error
	}{
		{name: "canonical name", label: "happy", want: EmotionHappy},
		{name: "mixed case with spaces", label: "  Calm ", want: EmotionCalm},
		{name: "alias fear", label: "fear", want: EmotionScared},
		{name: "alias joy", label: "Joy", want: EmotionHappy},
		{name: "none is not classifiable", label: "none", wantErr: ErrUnknownEmotion},
		{name: "unknown label", label: "bored", wantErr: ErrUnknownEmotion},
		{name: "empty label", label: "", wantErr: ErrUnknownEmotion},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEmotion(tc.label)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected error %v, got %v", tc.wantErr, err)
				}
				if got != EmotionNone {
					t.Fatalf("expected EmotionNone on error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestEmotions_ClosedSet(t *testing.T) {
	all := Emotions()
	if len(all) != 9 {
		t.Fatalf("expected 9 emotions, got %d", len(all))
	}
	for _, e := range all {
		if !e.Valid() {
			t.Fatalf("%s should be valid", e)
		}
		parsed, err := ParseEmotion(e.String())
		if err != nil || parsed != e {
			t.Fatalf("round trip failed for %s: %v", e, err)
		}
		if e.Color() == "" {
			t.Fatalf("%s has no colour", e)
		}
	}
	if EmotionNone.Valid() {
		t.Fatal("EmotionNone must not be classifiable")
	}
	if Emotion(200).Valid() {
		t.Fatal("out of range emotion must not be valid")
	}
}

func TestEmotion_Display(t *testing.T) {
	if got := EmotionHappy.Display(0.875); got != "Happy (87.5%)" {
		t.Fatalf("unexpected display %q", got)
	}
	if got := EmotionNone.Display(0.5); got != "None" {
		t.Fatalf("unexpected display %q", got)
	}
}

func TestEmotion_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		E Emotion `json:"e"`
	}{E: EmotionSurprised})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"e":"surprised"}` {
		t.Fatalf("unexpected json %s", data)
	}

	var out struct {
		E Emotion `json:"e"`
	}
	if err := json.Unmarshal([]byte(`{"e":"none"}`), &out); err != nil {
		t.Fatal(err)
	}
	if out.E != EmotionNone {
		t.Fatalf("expected none, got %s", out.E)
	}
	if err := json.Unmarshal([]byte(`{"e":"grumpy"}`), &out); err == nil {
		t.Fatal("expected error for unknown emotion")
	}
}
