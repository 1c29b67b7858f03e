// Package progress defines the callback contract the analysis core reports
// through, and the cooperative cancellation token it accepts (spec.md §5,
// §6). It replaces the teacher's ProgressTracker goroutine-and-ticker
// pattern (scanner/progress.go in the teacher repo) with a synchronous
// callback invoked by the core at well-defined points, matching spec.md
// §9's "coroutine-like progress reporting maps to an injected callback".
package progress

import (
	"context"
	"time"
)

// Stage names the canonical pipeline stage a progress update belongs to.
type Stage string

const (
	StageValidate Stage = "validate"
	StageScan     Stage = "scan"
	StageNormalize Stage = "normalize"
	StageMetrics  Stage = "metrics"
	StageRecommend Stage = "recommend"
	StageDedupe   Stage = "dedupe"
	StageFinalize Stage = "finalize"
	StageFailed   Stage = "failed"
)

// stageOrder fixes the canonical ordering used to enforce monotonically
// non-decreasing percent across a run.
var stageOrder = map[Stage]int{
	StageValidate:  0,
	StageScan:      1,
	StageNormalize: 2,
	StageMetrics:   3,
	StageRecommend: 4,
	StageDedupe:    5,
	StageFinalize:  6,
	StageFailed:    7,
}

// Rank returns the canonical ordinal of a stage, for callers that want to
// assert monotonic progress.
func Rank(s Stage) int { return stageOrder[s] }

// Update is one point-in-time report emitted by the core.
type Update struct {
	Percent float64   `json:"percent"`
	Stage   Stage     `json:"stage"`
	Message string    `json:"message"`
	AtUTC   time.Time `json:"atUtc"`
}

// Sink receives Update values as the core advances through the pipeline.
// Implementations must not block for long; the core calls Report
// synchronously from the goroutine running the pipeline.
type Sink interface {
	Report(Update)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(Update)

func (f SinkFunc) Report(u Update) { f(u) }

// Noop is a Sink that discards every update.
var Noop Sink = SinkFunc(func(Update) {})

// Reporter wraps a Sink with the bookkeeping the core needs: it stamps
// AtUTC and clamps percent into [0, 100], and never lets percent regress
// once emitted within a single run.
type Reporter struct {
	sink   Sink
	best   float64
}

// NewReporter builds a Reporter over sink. A nil sink is replaced with Noop.
func NewReporter(sink Sink) *Reporter {
	if sink == nil {
		sink = Noop
	}
	return &Reporter{sink: sink}
}

// Best returns the highest percent reported so far.
func (r *Reporter) Best() float64 { return r.best }

// Report emits an update, clamping percent to [best, 100] so consumers
// always observe monotonically non-decreasing values (spec.md §6).
func (r *Reporter) Report(stage Stage, percent float64, message string) {
	if percent < r.best {
		percent = r.best
	}
	if percent > 100 {
		percent = 100
	}
	r.best = percent
	r.sink.Report(Update{
		Percent: percent,
		Stage:   stage,
		Message: message,
		AtUTC:   time.Now().UTC(),
	})
}

// CancelToken is a cooperative cancellation handle. context.Context does not
// implement it directly: FromContext adapts a context to it, and Static is a
// token that is never cancelled.
type CancelToken interface {
	// Cancelled reports whether cancellation has been requested.
	Cancelled() bool
}

// FromContext adapts a context.Context to a CancelToken.
func FromContext(ctx context.Context) CancelToken {
	return ctxToken{ctx}
}

type ctxToken struct{ ctx context.Context }

func (c ctxToken) Cancelled() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Static is a CancelToken that is never cancelled; useful in tests.
var Static CancelToken = staticToken{}

type staticToken struct{}

func (staticToken) Cancelled() bool { return false }
