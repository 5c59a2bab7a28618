// Package orchestrate implements the top-level retrieval pipeline: it
// interprets a worker's question into multiple search angles, fans them out
// across the hybrid searcher, merges and expands the results, and attaches
// a wage lookup when the question calls for one (spec.md §4.11).
package orchestrate

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"manifold/internal/chunk"
	"manifold/internal/concept"
	"manifold/internal/hybrid"
	"manifold/internal/hypothesis"
	"manifold/internal/intent"
	"manifold/internal/interpret"
	"manifold/internal/manifest"
	"manifold/internal/rerank"
	"manifold/internal/store"
	"manifold/internal/vectorindex"
	"manifold/internal/wage"
)

// tracer names every orchestrator-stage span, per the teacher's
// internal/observability/otel.go tracing setup.
var tracer = otel.Tracer("manifold/internal/orchestrate")

// Clock abstracts time the way the teacher's service.Clock does.
type Clock interface{ Now() time.Time }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Logger is the minimal structured-logging contract, matching the shape
// the teacher's rag/service.Logger expects zerolog to satisfy.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Metrics is the observability surface for per-stage timings.
type Metrics interface {
	ObserveHistogram(name string, value float64, labels map[string]string)
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]any) {}
func (noopLogger) Info(string, map[string]any)  {}
func (noopLogger) Error(string, map[string]any) {}

type noopMetrics struct{}

func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// Tunables bundles the magic numbers spec.md §4.11 pins, exposed so config
// can override them per deployment instead of leaving them hardcoded.
type Tunables struct {
	TotalCap              int
	MaxConcurrentAngles    int
	FullArticleThreshold  int
	FullArticleCap        int
	SiblingSectionCap     int
	SiblingSectionsPerArticle int
	DominantWindow        int
}

// DefaultTunables matches spec.md §4.11's stated defaults.
func DefaultTunables() Tunables {
	return Tunables{
		TotalCap:                  20,
		MaxConcurrentAngles:       3,
		FullArticleThreshold:      2,
		FullArticleCap:            15,
		SiblingSectionCap:         10,
		SiblingSectionsPerArticle: 2,
		DominantWindow:            10,
	}
}

// Orchestrator wires every retrieval-stage dependency together, the way
// the teacher's rag/service.Service wires search/vector/graph/rerank.
type Orchestrator struct {
	Hybrid      *hybrid.Searcher
	Vector      *vectorindex.Index
	Interpreter *interpret.Interpreter
	Hypothesis  *hypothesis.Layer
	Reranker    *rerank.Reranker
	Concepts    *concept.Index
	Manifest    *manifest.Manifest
	Chunks      store.ChunkStore
	WageTable   wage.Table

	tunables Tunables
	log      Logger
	metrics  Metrics
	clock    Clock
}

// Option configures an Orchestrator during construction.
type Option func(*Orchestrator)

func WithLogger(l Logger) Option     { return func(o *Orchestrator) { o.log = l } }
func WithMetrics(m Metrics) Option   { return func(o *Orchestrator) { o.metrics = m } }
func WithClock(c Clock) Option       { return func(o *Orchestrator) { o.clock = c } }
func WithTunables(t Tunables) Option { return func(o *Orchestrator) { o.tunables = t } }
func WithHypothesis(h *hypothesis.Layer) Option {
	return func(o *Orchestrator) { o.Hypothesis = h }
}
func WithReranker(r *rerank.Reranker) Option { return func(o *Orchestrator) { o.Reranker = r } }
func WithConcepts(c *concept.Index) Option   { return func(o *Orchestrator) { o.Concepts = c } }
func WithChunks(cs store.ChunkStore) Option  { return func(o *Orchestrator) { o.Chunks = cs } }
func WithWageTable(t wage.Table) Option      { return func(o *Orchestrator) { o.WageTable = t } }

// New constructs an Orchestrator around the required hybrid searcher,
// vector index, and interpreter; everything else is optional and can be
// attached via Option.
func New(h *hybrid.Searcher, v *vectorindex.Index, interp *interpret.Interpreter, m *manifest.Manifest, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		Hybrid:      h,
		Vector:      v,
		Interpreter: interp,
		Manifest:    m,
		tunables:    DefaultTunables(),
		log:         noopLogger{},
		metrics:     noopMetrics{},
		clock:       systemClock{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Request carries the inputs to one Retrieve call.
type Request struct {
	Query          string
	ContractID     string
	Classification string
	HoursWorked    float64
	MonthsEmployed float64
	EffectiveDate  string
}

// ResultChunk is one chunk in the final response, carrying the angle that
// surfaced it and whether it was added by a post-fusion expansion step.
type ResultChunk struct {
	Chunk              chunk.Chunk
	Score              float64
	SearchAngle        string
	IsSupplemental     bool
	SupplementalReason string
}

// Response is the retrieval-request output shape from spec.md §6.
type Response struct {
	Chunks                  []ResultChunk
	WageInfo                *wage.Result
	Intent                  intent.Intent
	EscalationRequired      bool
	Interpretation          interpret.Interpretation
	HypothesisResult        hypothesis.Result
	RerankerResult          rerank.Result
	SearchAnglesUsed        []string
	ExplicitArticlesFetched []int
}

const explicitArticleSimilarity = 0.95

// Retrieve runs the full pipeline: interpret, fan out across search
// angles, merge, rerank, expand, and attach a wage lookup when relevant.
func (o *Orchestrator) Retrieve(ctx context.Context, req Request) (Response, error) {
	ctx, rootSpan := tracer.Start(ctx, "retrieve")
	defer rootSpan.End()

	start := o.clock.Now()
	it := intent.Classify(req.Query, o.Manifest)

	interp := stage(ctx, o, "interpret", func(ctx context.Context) interpret.Interpretation {
		return o.interpret(ctx, req.Query)
	})
	if interp.Error != "" {
		o.log.Error("query interpretation fell back to minimal mode", map[string]any{"error": interp.Error})
	}
	o.observeStage("interpret", start)

	var hypResult hypothesis.Result
	if o.Hypothesis != nil {
		t0 := o.clock.Now()
		hypResult = stage(ctx, o, "hypothesis", func(ctx context.Context) hypothesis.Result {
			return o.Hypothesis.Predict(ctx, req.Query)
		})
		o.observeStage("hypothesis", t0)
	}

	var wageResult *wage.Result
	var wg errgroup.Group
	if it.Type == intent.Wage && req.Classification != "" {
		wg.Go(func() error {
			_, span := tracer.Start(ctx, "wage_lookup")
			defer span.End()
			if res, ok := wage.Lookup(o.WageTable, req.Classification, req.HoursWorked, req.MonthsEmployed, req.EffectiveDate); ok {
				wageResult = &res
			}
			return nil
		})
	}

	explicitArticles := interp.ExplicitArticles
	explicitChunks, angleOf := o.fetchExplicitArticles(ctx, req.ContractID, explicitArticles)

	angles := interp.GetAllSearchQueries()
	t0 := o.clock.Now()
	candidates := stage(ctx, o, "fan_out", func(ctx context.Context) []hybrid.Result {
		return o.fanOutAngles(ctx, req, it, interp, hypResult, angles, angleOf)
	})
	o.observeStage("fan_out", t0)

	merged := mergeByChunkID(append(explicitChunks, candidates...))
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].RRFScore != merged[j].RRFScore {
			return merged[i].RRFScore > merged[j].RRFScore
		}
		return merged[i].ChunkID < merged[j].ChunkID
	})
	if len(merged) > o.tunables.TotalCap {
		merged = merged[:o.tunables.TotalCap]
	}

	var rerankResult rerank.Result
	if o.Reranker != nil {
		t0 := o.clock.Now()
		rerankResult = stage(ctx, o, "rerank", func(ctx context.Context) rerank.Result {
			return o.Reranker.Rerank(ctx, req.Query, merged)
		})
		merged = rerankResult.Chunks
		o.observeStage("rerank", t0)
	}

	supplemental := map[string]string{}
	expanded := stage(ctx, o, "expand", func(ctx context.Context) []hybrid.Result {
		e := o.expandFullArticles(ctx, req.ContractID, merged, angleOf, supplemental)
		return o.expandSiblingSections(ctx, req.ContractID, e, angleOf, supplemental)
	})

	_ = wg.Wait()

	resp := Response{
		Chunks:                  toResultChunks(expanded, angleOf, supplemental),
		WageInfo:                wageResult,
		Intent:                  it,
		EscalationRequired:      it.RequiresEscalation,
		Interpretation:          interp,
		HypothesisResult:        hypResult,
		RerankerResult:          rerankResult,
		SearchAnglesUsed:        angles,
		ExplicitArticlesFetched: explicitArticles,
	}
	o.observeStage("total", start)
	return resp, nil
}

// stage opens a span named after the pipeline stage, logs its start/end at
// debug, and runs fn inside it. Go methods can't carry their own type
// parameters, so this is a free function taking the orchestrator explicitly.
func stage[T any](ctx context.Context, o *Orchestrator, name string, fn func(context.Context) T) T {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	o.log.Debug("stage start", map[string]any{"stage": name})
	result := fn(ctx)
	span.SetStatus(codes.Ok, "")
	o.log.Debug("stage done", map[string]any{"stage": name})
	return result
}

func (o *Orchestrator) interpret(ctx context.Context, query string) interpret.Interpretation {
	if o.Interpreter == nil {
		return interpret.Interpretation{OriginalQuery: query, SearchQueries: []string{query}}
	}
	return o.Interpreter.Interpret(ctx, query)
}

func (o *Orchestrator) observeStage(stage string, since time.Time) {
	o.metrics.ObserveHistogram("retrieval_stage_ms", float64(o.clock.Now().Sub(since).Milliseconds()), map[string]string{"stage": stage})
}
