package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind names a failure category of the analysis pipeline.
type ErrorKind string

const (
	KindInvalidInput          ErrorKind = "invalid_input"
	KindClassifierUnavailable ErrorKind = "classifier_unavailable"
	KindTimeout               ErrorKind = "timeout"
	KindUnknownEmotion        ErrorKind = "unknown_emotion"
	KindNoImageSelected       ErrorKind = "no_image_selected"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrTimeout               = errors.New("classification timed out")
	ErrUnknownEmotion        = errors.New("unknown emotion")
	ErrNoImageSelected       = errors.New("no image selected")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidInput:          ErrInvalidInput,
	KindClassifierUnavailable: ErrClassifierUnavailable,
	KindTimeout:               ErrTimeout,
	KindUnknownEmotion:        ErrUnknownEmotion,
	KindNoImageSelected:       ErrNoImageSelected,
}

// Transient reports whether a manual retry with the same input may succeed.
func (k ErrorKind) Transient() bool {
	return k == KindClassifierUnavailable || k == KindTimeout
}

// Remedy tells the presentation layer what the user can do next.
type Remedy string

const (
	RemedyRetry              Remedy = "retry"
	RemedyChooseAnotherImage Remedy = "choose_another_image"
	RemedyNone               Remedy = "none"
)

// Remedy maps the kind to the action offered to the user.
func (k ErrorKind) Remedy() Remedy {
	switch k {
	case KindClassifierUnavailable, KindTimeout:
		return RemedyRetry
	case KindInvalidInput, KindNoImageSelected:
		return RemedyChooseAnotherImage
	default:
		return RemedyNone
	}
}

// AnalysisError carries a kind plus the operation that failed. errors.Is
// matches it against the kind's sentinel.
type AnalysisError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *AnalysisError) Error() string {
	base := string(e.Kind)
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		base = sentinel.Error()
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, base, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, base)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", base, e.Err)
	default:
		return base
	}
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func (e *AnalysisError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// NewError wraps err with a kind.
func NewError(kind ErrorKind, op string, err error) error {
	return &AnalysisError{Kind: kind, Op: op, Err: err}
}

// KindOf classifies any error from the pipeline. Deadline expiry counts as
// a timeout; anything unrecognised is treated as the classifier being
// unavailable.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindClassifierUnavailable
}

// Failure is the user-facing description of a failed analysis.
type Failure struct {
	Kind      ErrorKind `json:"kind"`
	Retryable bool      `json:"retryable"`
	Remedy    Remedy    `json:"remedy"`
	Message   string    `json:"message"`
}

// FailureFrom builds the presentation failure for err.
func FailureFrom(err error) *Failure {
	kind := KindOf(err)
	return &Failure{
		Kind:      kind,
		Retryable: kind.Transient(),
		Remedy:    kind.Remedy(),
		Message:   failureMessage(kind),
	}
}

func failureMessage(kind ErrorKind) string {
	switch kind {
	case KindInvalidInput:
		return "We couldn't read a face in that image. Please pick a different photo."
	case KindNoImageSelected:
		return "Please upload an image first."
	case KindTimeout:
		return "Analysis took too long. Please try again."
	case KindClassifierUnavailable:
		return "The emotion service is unavailable right now. Please try again."
	default:
		return "Something went wrong while matching your mood."
	}
}
