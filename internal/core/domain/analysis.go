package domain

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

// Image is a captured upload. It is owned by a single analysis request and
// must not be mutated after capture.
type Image struct {
	Data        []byte
	ContentType string
}

// NewImage copies data and sniffs the content type when none is given.
func NewImage(data []byte, contentType string) (*Image, error) {
	img := &Image{
		Data:        append([]byte(nil), data...),
		ContentType: normalizeContentType(contentType),
	}
	if img.ContentType == "" || img.ContentType == "application/octet-stream" {
		img.ContentType = normalizeContentType(http.DetectContentType(data))
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate rejects empty payloads and unsupported formats.
func (i *Image) Validate() error {
	if i == nil {
		return &AnalysisError{Kind: KindNoImageSelected, Op: "validate image"}
	}
	if len(i.Data) == 0 {
		return &AnalysisError{Kind: KindInvalidInput, Op: "validate image", Err: fmt.Errorf("empty image")}
	}
	switch i.ContentType {
	case ContentTypeJPEG, ContentTypePNG:
		return nil
	default:
		return &AnalysisError{Kind: KindInvalidInput, Op: "validate image", Err: fmt.Errorf("unsupported content type %q", i.ContentType)}
	}
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if ct == "image/jpg" {
		return ContentTypeJPEG
	}
	return ct
}

// ClassificationResult is the single label the classifier settled on.
type ClassificationResult struct {
	Label      Emotion `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Validate checks the label is classifiable and the confidence is a finite
// value in [0,1].
func (r ClassificationResult) Validate() error {
	if !r.Label.Valid() {
		return &AnalysisError{Kind: KindUnknownEmotion, Op: "validate result", Err: fmt.Errorf("label %s", r.Label)}
	}
	if math.IsNaN(r.Confidence) || math.IsInf(r.Confidence, 0) || r.Confidence < 0 || r.Confidence > 1 {
		return &AnalysisError{Kind: KindClassifierUnavailable, Op: "validate result", Err: fmt.Errorf("confidence %v out of range", r.Confidence)}
	}
	return nil
}

// AnalysisRequest is one trigger of the pipeline. ID is monotonic per
// coordinator; only the highest issued ID may change state.
type AnalysisRequest struct {
	ID            uint64
	CorrelationID uuid.UUID
	Image         *Image
	IssuedAt      time.Time
}

// Status is the coordinator's lifecycle position.
type Status uint8

const (
	StatusIdle Status = iota
	StatusAnalyzing
	StatusReady
	StatusFailed
)

var statusNames = [...]string{
	StatusIdle:      "idle",
	StatusAnalyzing: "analyzing",
	StatusReady:     "ready",
	StatusFailed:    "failed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if string(text) == name {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("domain: unknown status %q", string(text))
}

// Terminal reports whether a request has finished in this status.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Source records how the current emotion was chosen.
type Source string

const (
	SourceNone       Source = ""
	SourceClassifier Source = "classifier"
	SourceManual     Source = "manual"
)

// PresentationState is everything the presentation layer renders. Values
// are copied out of the coordinator; mutating one has no effect on it.
type PresentationState struct {
	Status        Status   `json:"status"`
	Emotion       Emotion  `json:"emotion"`
	Confidence    float64  `json:"confidence"`
	Display       string   `json:"display"`
	Song          Song     `json:"song"`
	Stale         bool     `json:"stale"`
	LowConfidence bool     `json:"lowConfidence"`
	Failure       *Failure `json:"failure,omitempty"`
	RequestID     uint64   `json:"requestId"`
	Language      string   `json:"language"`
	Source        Source   `json:"source,omitempty"`
}

// IdleState is the initial state: no emotion and the placeholder song.
func IdleState(language string) PresentationState {
	return PresentationState{
		Status:   StatusIdle,
		Emotion:  EmotionNone,
		Display:  EmotionNone.Display(0),
		Song:     Placeholder,
		Language: NormalizeLanguage(language),
	}
}

// Clone returns a deep copy.
func (s PresentationState) Clone() PresentationState {
	if s.Failure != nil {
		f := *s.Failure
		s.Failure = &f
	}
	return s
}
