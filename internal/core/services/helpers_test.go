package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/ports"
)

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	b := domain.NewCatalogBuilder("english")
	add := func(lang string, e domain.Emotion, id, title, artist string, popularity int) {
		s, err := domain.NewSong(id, title, artist, "covers/"+e.String()+".png", "play:"+id)
		require.NoError(t, err)
		s.Popularity = popularity
		require.NoError(t, b.Add(lang, e, s))
	}
	add("english", domain.EmotionCalm, "c1", "Weightless", "Marconi Union", 10)
	add("english", domain.EmotionCalm, "c2", "Clair de Lune", "Debussy", 50)
	add("english", domain.EmotionCalm, "c3", "Gymnopedie No.1", "Satie", 50)
	add("english", domain.EmotionHappy, "h1", "Happy", "Pharrell Williams", 90)
	add("english", domain.EmotionHappy, "h2", "Walking on Sunshine", "Katrina and the Waves", 70)
	add("english", domain.EmotionSad, "s1", "Someone Like You", "Adele", 80)
	add("hindi", domain.EmotionHappy, "hh1", "Badtameez Dil", "Benny Dayal", 60)
	return b.Build("test")
}

func img(key string) *domain.Image {
	return &domain.Image{Data: []byte(key), ContentType: domain.ContentTypePNG}
}

type classifierFunc func(ctx context.Context, img domain.Image) (domain.ClassificationResult, error)

func (f classifierFunc) Classify(ctx context.Context, img domain.Image) (domain.ClassificationResult, error) {
	return f(ctx, img)
}

func fixed(label domain.Emotion, confidence float64) classifierFunc {
	return func(context.Context, domain.Image) (domain.ClassificationResult, error) {
		return domain.ClassificationResult{Label: label, Confidence: confidence}, nil
	}
}

type gateResult struct {
	res domain.ClassificationResult
	err error
}

// gatedClassifier blocks each call until the test releases the image's key.
type gatedClassifier struct {
	mu      sync.Mutex
	gates   map[string]chan gateResult
	calls   atomic.Int32
	started chan string
}

func newGatedClassifier() *gatedClassifier {
	return &gatedClassifier{gates: make(map[string]chan gateResult), started: make(chan string, 16)}
}

func (g *gatedClassifier) gate(key string) chan gateResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[key]
	if !ok {
		ch = make(chan gateResult, 1)
		g.gates[key] = ch
	}
	return ch
}

func (g *gatedClassifier) Classify(ctx context.Context, img domain.Image) (domain.ClassificationResult, error) {
	g.calls.Add(1)
	key := string(img.Data)
	gate := g.gate(key)
	g.started <- key
	select {
	case r := <-gate:
		return r.res, r.err
	case <-ctx.Done():
		return domain.ClassificationResult{}, ctx.Err()
	}
}

func (g *gatedClassifier) release(key string, label domain.Emotion, confidence float64) {
	g.gate(key) <- gateResult{res: domain.ClassificationResult{Label: label, Confidence: confidence}}
}

func (g *gatedClassifier) fail(key string, err error) {
	g.gate(key) <- gateResult{err: err}
}

func (g *gatedClassifier) awaitStarted(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-g.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("classifier call %d never started", i+1)
		}
	}
}

type countingRecorder struct {
	accepted   atomic.Int32
	rejected   atomic.Int32
	ready      atomic.Int32
	failed     atomic.Int32
	superseded atomic.Int32
	inFlight   atomic.Int32
}

func (r *countingRecorder) TriggerAccepted()                 { r.accepted.Add(1) }
func (r *countingRecorder) TriggerRejected(domain.ErrorKind) { r.rejected.Add(1) }
func (r *countingRecorder) Superseded()                      { r.superseded.Add(1) }
func (r *countingRecorder) ClassifyDuration(time.Duration)   {}
func (r *countingRecorder) InFlight(delta int)               { r.inFlight.Add(int32(delta)) }
func (r *countingRecorder) Outcome(status domain.Status, _ domain.ErrorKind) {
	if status == domain.StatusReady {
		r.ready.Add(1)
	} else {
		r.failed.Add(1)
	}
}

type rejectingExecutor struct{ err error }

func (e rejectingExecutor) Submit(func()) error { return e.err }

func newTestCoordinator(t *testing.T, classifier ports.Classifier, cfg CoordinatorConfig) *Coordinator {
	t.Helper()
	matcher := NewMatcher(NewCatalogStore(testCatalog(t)), RankingInsertion)
	c := NewCoordinator(classifier, matcher, cfg)
	t.Cleanup(c.Close)
	return c
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return ctx
}
