package domain

import (
	"fmt"
	"strings"
)

// Emotion is one mood from the closed set the classifier can produce.
// The zero value EmotionNone means "nothing detected yet".
type Emotion uint8

const (
	EmotionNone Emotion = iota
	EmotionHappy
	EmotionSad
	EmotionAngry
	EmotionNeutral
	EmotionCalm
	EmotionEnergetic
	EmotionScared
	EmotionSurprised
	EmotionDisgust
)

var emotionNames = [...]string{
	EmotionNone:      "none",
	EmotionHappy:     "happy",
	EmotionSad:       "sad",
	EmotionAngry:     "angry",
	EmotionNeutral:   "neutral",
	EmotionCalm:      "calm",
	EmotionEnergetic: "energetic",
	EmotionScared:    "scared",
	EmotionSurprised: "surprised",
	EmotionDisgust:   "disgust",
}

// Display colours used for placeholder album art.
var emotionColors = [...]string{
	EmotionNone:      "#4b2996",
	EmotionHappy:     "#ffd166",
	EmotionSad:       "#118ab2",
	EmotionAngry:     "#ef476f",
	EmotionNeutral:   "#8d99ae",
	EmotionCalm:      "#83c5be",
	EmotionEnergetic: "#f77f00",
	EmotionScared:    "#7209b7",
	EmotionSurprised: "#06d6a0",
	EmotionDisgust:   "#6a994e",
}

// Aliases accepted by ParseEmotion in addition to the canonical names.
// Anything not listed here is rejected, never mapped to a default.
var emotionAliases = map[string]Emotion{
	"happiness": EmotionHappy,
	"joy":       EmotionHappy,
	"joyful":    EmotionHappy,
	"sadness":   EmotionSad,
	"anger":     EmotionAngry,
	"relaxed":   EmotionCalm,
	"fear":      EmotionScared,
	"afraid":    EmotionScared,
	"fearful":   EmotionScared,
	"surprise":  EmotionSurprised,
	"disgusted": EmotionDisgust,
	"excited":   EmotionEnergetic,
}

// Emotions returns every classifiable emotion in declaration order.
func Emotions() []Emotion {
	out := make([]Emotion, 0, len(emotionNames)-1)
	for e := EmotionHappy; int(e) < len(emotionNames); e++ {
		out = append(out, e)
	}
	return out
}

// Valid reports whether e is a member of the classifiable set.
func (e Emotion) Valid() bool {
	return e > EmotionNone && int(e) < len(emotionNames)
}

func (e Emotion) String() string {
	if int(e) < len(emotionNames) {
		return emotionNames[e]
	}
	return fmt.Sprintf("emotion(%d)", uint8(e))
}

// Title returns the capitalised name, e.g. "Happy".
func (e Emotion) Title() string {
	name := e.String()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Color returns the hex colour associated with the emotion.
func (e Emotion) Color() string {
	if int(e) < len(emotionColors) {
		return emotionColors[e]
	}
	return emotionColors[EmotionNone]
}

// Display formats the emotion with its confidence, e.g. "Happy (87.5%)".
func (e Emotion) Display(confidence float64) string {
	if !e.Valid() {
		return "None"
	}
	return fmt.Sprintf("%s (%.1f%%)", e.Title(), confidence*100)
}

// ParseEmotion converts a label into an Emotion. Unrecognised labels fail
// with ErrUnknownEmotion.
func ParseEmotion(label string) (Emotion, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	for i, name := range emotionNames {
		if i > 0 && key == name {
			return Emotion(i), nil
		}
	}
	if e, ok := emotionAliases[key]; ok {
		return e, nil
	}
	return EmotionNone, &AnalysisError{
		Kind: KindUnknownEmotion,
		Op:   "parse emotion",
		Err:  fmt.Errorf("label %q", label),
	}
}

func (e Emotion) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Emotion) UnmarshalText(text []byte) error {
	if strings.EqualFold(strings.TrimSpace(string(text)), "none") || len(text) == 0 {
		*e = EmotionNone
		return nil
	}
	parsed, err := ParseEmotion(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
