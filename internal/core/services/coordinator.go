package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/ports"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

const DefaultClassifyTimeout = 15 * time.Second

var (
	// ErrSuperseded is returned by Wait when a later trigger, selection or
	// reset replaced the awaited request.
	ErrSuperseded = errors.New("coordinator: request superseded")
	// ErrUnknownRequest is returned by Wait for IDs that were never issued.
	ErrUnknownRequest = errors.New("coordinator: unknown request")
	// ErrClosed is returned once the coordinator has been closed.
	ErrClosed = errors.New("coordinator: closed")
)

// FailurePolicy decides what a failed analysis does to the previously
// displayed emotion and song.
type FailurePolicy string

const (
	FailurePolicyKeepStale FailurePolicy = "keep_stale"
	FailurePolicyClear     FailurePolicy = "clear"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", FailurePolicyKeepStale:
		return FailurePolicyKeepStale, nil
	case FailurePolicyClear:
		return p, nil
	default:
		return "", fmt.Errorf("coordinator: unknown failure policy %q", s)
	}
}

// CoordinatorConfig holds the tunables and optional collaborators of a
// Coordinator. Zero values select the defaults.
type CoordinatorConfig struct {
	Timeout       time.Duration
	MinConfidence float64
	FailurePolicy FailurePolicy
	Language      string
	Executor      ports.Executor
	Recorder      ports.AnalysisRecorder
}

// Coordinator owns the analysis lifecycle of one presentation session:
// Idle -> Analyzing -> Ready|Failed. Every trigger gets a higher request ID
// and only the outcome of the latest ID is applied.
type Coordinator struct {
	classifier ports.Classifier
	matcher    *Matcher
	executor   ports.Executor
	recorder   ports.AnalysisRecorder

	timeout       time.Duration
	minConfidence float64
	policy        FailurePolicy

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	state   domain.PresentationState
	latest  uint64
	changed chan struct{}
	subs    map[int]chan domain.PresentationState
	nextSub int
	closed  bool
}

// NewCoordinator wires a coordinator around classifier and matcher.
func NewCoordinator(classifier ports.Classifier, matcher *Matcher, cfg CoordinatorConfig) *Coordinator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClassifyTimeout
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = FailurePolicyKeepStale
	}
	if cfg.Executor == nil {
		cfg.Executor = goExecutor{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
	lang := domain.NormalizeLanguage(cfg.Language)
	if lang == "" {
		lang = matcher.store.Snapshot().DefaultLanguage()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		classifier:    classifier,
		matcher:       matcher,
		executor:      cfg.Executor,
		recorder:      cfg.Recorder,
		timeout:       cfg.Timeout,
		minConfidence: cfg.MinConfidence,
		policy:        cfg.FailurePolicy,
		baseCtx:       ctx,
		cancel:        cancel,
		state:         domain.IdleState(lang),
		changed:       make(chan struct{}),
		subs:          make(map[int]chan domain.PresentationState),
	}
}

// State returns a copy of the current presentation state.
func (c *Coordinator) State() domain.PresentationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Trigger starts analysing img and returns its request ID. A nil image is
// rejected with NoImageSelected and leaves the state untouched. Any
// in-flight request is superseded.
func (c *Coordinator) Trigger(img *domain.Image) (uint64, error) {
	if img == nil {
		c.recorder.TriggerRejected(domain.KindNoImageSelected)
		return 0, &domain.AnalysisError{Kind: domain.KindNoImageSelected, Op: "trigger"}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	req := domain.AnalysisRequest{
		ID:            c.supersedeLocked(),
		CorrelationID: uuid.New(),
		Image:         img,
		IssuedAt:      time.Now(),
	}
	prev := c.state
	next := prev.Clone()
	next.Status = domain.StatusAnalyzing
	next.RequestID = req.ID
	next.Failure = nil
	next.Stale = prev.Emotion.Valid()
	c.publishLocked(next)
	c.mu.Unlock()

	c.recorder.TriggerAccepted()
	logger.Debug("analysis triggered",
		logger.Uint64("request_id", req.ID),
		logger.String("correlation_id", req.CorrelationID.String()),
		logger.Int("image_bytes", len(img.Data)),
	)

	deadline := req.IssuedAt.Add(c.timeout)
	c.recorder.InFlight(1)
	if err := c.executor.Submit(func() { c.run(req, deadline) }); err != nil {
		c.recorder.InFlight(-1)
		failure := &domain.AnalysisError{Kind: domain.KindClassifierUnavailable, Op: "trigger", Err: err}
		c.fail(req, failure)
		return req.ID, failure
	}
	return req.ID, nil
}

// run executes on the executor. The image reference is dropped when it
// returns.
func (c *Coordinator) run(req domain.AnalysisRequest, deadline time.Time) {
	defer c.recorder.InFlight(-1)

	if err := req.Image.Validate(); err != nil {
		c.fail(req, err)
		return
	}

	ctx, cancel := context.WithDeadline(c.baseCtx, deadline)
	defer cancel()

	type outcome struct {
		result domain.ClassificationResult
		err    error
	}
	done := make(chan outcome, 1)
	img := *req.Image
	started := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("classifier panicked",
					logger.Uint64("request_id", req.ID),
					logger.Any("panic", r),
				)
				done <- outcome{err: &domain.AnalysisError{
					Kind: domain.KindClassifierUnavailable,
					Op:   "classify",
					Err:  fmt.Errorf("panic: %v", r),
				}}
			}
		}()
		res, err := c.classifier.Classify(ctx, img)
		done <- outcome{result: res, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}
	c.recorder.ClassifyDuration(time.Since(started))

	if out.err == nil {
		out.err = out.result.Validate()
	}
	if out.err != nil {
		var ae *domain.AnalysisError
		if errors.Is(out.err, context.DeadlineExceeded) && !errors.As(out.err, &ae) {
			out.err = &domain.AnalysisError{Kind: domain.KindTimeout, Op: "classify", Err: out.err}
		}
		c.fail(req, out.err)
		return
	}
	c.succeed(req, out.result)
}

func (c *Coordinator) succeed(req domain.AnalysisRequest, result domain.ClassificationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(req.ID) {
		return
	}

	list, err := c.matcher.RecommendIn(c.state.Language, result.Label)
	if err != nil {
		logger.Error("matcher rejected classifier label",
			logger.Uint64("request_id", req.ID),
			logger.Stringer("label", result.Label),
			logger.ErrorField(err),
		)
		c.failLocked(req, err)
		return
	}

	next := domain.PresentationState{
		Status:        domain.StatusReady,
		Emotion:       result.Label,
		Confidence:    result.Confidence,
		Display:       result.Label.Display(result.Confidence),
		Song:          list.Top(),
		LowConfidence: c.minConfidence > 0 && result.Confidence < c.minConfidence,
		RequestID:     req.ID,
		Language:      c.state.Language,
		Source:        domain.SourceClassifier,
	}
	c.publishLocked(next)
	c.recorder.Outcome(domain.StatusReady, "")
	logger.Info("analysis ready",
		logger.Uint64("request_id", req.ID),
		logger.String("correlation_id", req.CorrelationID.String()),
		logger.Stringer("emotion", result.Label),
		logger.Float64("confidence", result.Confidence),
		logger.Bool("placeholder", next.Song.IsPlaceholder()),
	)
}

func (c *Coordinator) fail(req domain.AnalysisRequest, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(req.ID) {
		return
	}
	c.failLocked(req, err)
}

func (c *Coordinator) failLocked(req domain.AnalysisRequest, err error) {
	failure := domain.FailureFrom(err)
	next := c.state.Clone()
	next.Status = domain.StatusFailed
	next.Failure = failure
	next.RequestID = req.ID
	if c.policy == FailurePolicyClear {
		next.Emotion = domain.EmotionNone
		next.Confidence = 0
		next.Display = domain.EmotionNone.Display(0)
		next.Song = domain.Placeholder
		next.LowConfidence = false
		next.Source = domain.SourceNone
		next.Stale = false
	} else {
		next.Stale = next.Emotion.Valid()
	}
	c.publishLocked(next)
	c.recorder.Outcome(domain.StatusFailed, failure.Kind)
	log := logger.Warn
	if failure.Kind == domain.KindUnknownEmotion {
		log = logger.Error
	}
	log("analysis failed",
		logger.Uint64("request_id", req.ID),
		logger.String("correlation_id", req.CorrelationID.String()),
		logger.String("kind", string(failure.Kind)),
		logger.ErrorField(err),
	)
}

// currentLocked reports whether id is still the latest request; a stale
// outcome is counted and dropped.
func (c *Coordinator) currentLocked(id uint64) bool {
	if id == c.latest && !c.closed {
		return true
	}
	c.recorder.Superseded()
	logger.Debug("discarding superseded outcome",
		logger.Uint64("request_id", id),
		logger.Uint64("latest", c.latest),
	)
	return false
}

// Reset returns to Idle, keeping the selected language, and supersedes any
// in-flight request. Calling it repeatedly has no further effect.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.supersedeLocked()
	idle := domain.IdleState(c.state.Language)
	if c.state == idle {
		return
	}
	c.publishLocked(idle)
}

// SelectEmotion bypasses the classifier: the label goes straight to Ready
// with full confidence. Unknown labels fail with UnknownEmotion and leave
// the state unchanged.
func (c *Coordinator) SelectEmotion(label string) (domain.PresentationState, error) {
	e, err := domain.ParseEmotion(label)
	if err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state.Clone(), ErrClosed
	}
	list, err := c.matcher.RecommendIn(c.state.Language, e)
	if err != nil {
		return c.state.Clone(), err
	}
	id := c.supersedeLocked()
	c.publishLocked(domain.PresentationState{
		Status:     domain.StatusReady,
		Emotion:    e,
		Confidence: 1,
		Display:    e.Display(1),
		Song:       list.Top(),
		RequestID:  id,
		Language:   c.state.Language,
		Source:     domain.SourceManual,
	})
	c.recorder.Outcome(domain.StatusReady, "")
	return c.state.Clone(), nil
}

// SelectLanguage switches the catalog language. Languages the catalog does
// not carry resolve to its default language. A Ready state re-resolves its
// song for the new language in the same mutation; in-flight requests are not
// superseded and will resolve against the new language.
func (c *Coordinator) SelectLanguage(language string) (domain.PresentationState, error) {
	if domain.NormalizeLanguage(language) == "" {
		return c.State(), domain.ErrInvalidLanguage
	}
	lang := c.matcher.store.Snapshot().ResolveLanguage(language)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state.Clone(), ErrClosed
	}
	next := c.state.Clone()
	next.Language = lang
	if next.Status == domain.StatusReady && next.Emotion.Valid() {
		list, err := c.matcher.RecommendIn(lang, next.Emotion)
		if err != nil {
			return c.state.Clone(), err
		}
		next.Song = list.Top()
	}
	c.publishLocked(next)
	return c.state.Clone(), nil
}

// Subscribe returns a channel receiving every published state. The channel
// keeps only the newest undelivered state. The returned func unsubscribes
// and closes the channel.
func (c *Coordinator) Subscribe() (<-chan domain.PresentationState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan domain.PresentationState, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state.Clone()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Wait blocks until request id reaches Ready or Failed, or is superseded.
func (c *Coordinator) Wait(ctx context.Context, id uint64) (domain.PresentationState, error) {
	for {
		c.mu.Lock()
		state, err, changed := c.waitStatusLocked(id)
		c.mu.Unlock()
		if changed == nil {
			return state, err
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return c.State(), ctx.Err()
		}
	}
}

// waitStatusLocked returns a nil channel once Wait can return.
func (c *Coordinator) waitStatusLocked(id uint64) (domain.PresentationState, error, <-chan struct{}) {
	state := c.state.Clone()
	switch {
	case id == 0 || id > c.latest:
		return state, ErrUnknownRequest, nil
	case state.RequestID == id && state.Status.Terminal():
		return state, nil, nil
	case c.closed:
		return state, ErrClosed, nil
	case c.latest != id:
		return state, ErrSuperseded, nil
	default:
		return state, nil, c.changed
	}
}

// Close cancels in-flight classifier calls, drops their outcomes and closes
// all subscriber channels.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.latest++
	c.cancel()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *Coordinator) supersedeLocked() uint64 {
	c.latest++
	return c.latest
}

// publishLocked is the single state transition path.
func (c *Coordinator) publishLocked(next domain.PresentationState) {
	c.state = next
	close(c.changed)
	c.changed = make(chan struct{})
	for _, ch := range c.subs {
		snapshot := next.Clone()
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

type goExecutor struct{}

func (goExecutor) Submit(job func()) error {
	go job()
	return nil
}

type noopRecorder struct{}

func (noopRecorder) TriggerAccepted()                        {}
func (noopRecorder) TriggerRejected(domain.ErrorKind)        {}
func (noopRecorder) Outcome(domain.Status, domain.ErrorKind) {}
func (noopRecorder) Superseded()                             {}
func (noopRecorder) ClassifyDuration(time.Duration)          {}
func (noopRecorder) InFlight(int)                            {}
