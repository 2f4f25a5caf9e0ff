package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/aperturegate/auth"
	"github.com/jonwraymond/aperturegate/cache"
	"github.com/jonwraymond/aperturegate/capgraph"
	"github.com/jonwraymond/aperturegate/embedding"
	"github.com/jonwraymond/aperturegate/gate"
	"github.com/jonwraymond/aperturegate/observe"
	"github.com/jonwraymond/aperturegate/planner"
	"github.com/jonwraymond/aperturegate/semindex"
	"github.com/jonwraymond/aperturegate/toolcat"
)

// SemanticOrchestrator owns the tool vector index, context filter, scorer,
// dependency analyser and planner. It consumes a gate.Registry and
// CapabilityGraph rather than owning them, so callers can share both
// across other components of the gateway.
type SemanticOrchestrator struct {
	config Config

	registry toolcat.Registry
	model    embedding.Model
	index    semindex.Index
	cache    cache.Cache
	gates    *gate.Registry
	graph    *capgraph.CapabilityGraph

	observer   observe.Observer
	authorizer auth.Authorizer
	middleware *observe.Middleware

	hist *history

	mu          sync.RWMutex
	indexed     map[int]indexedTool
	initialized bool

	discoverGroup singleflight.Group
	rebuildGroup  singleflight.Group
}

// indexedTool pairs a tool record with the embedding vector of its own
// "name + description" text, precomputed at Rebuild time so Discover never
// re-embeds the catalog on the hot path.
type indexedTool struct {
	Tool toolcat.Tool
	// ScoreVector is the embedding of "<name> <description>" used for the
	// §4.4 cosine tool-score. It deliberately excludes the backend name,
	// which is only part of the index-construction text (§4.3).
	ScoreVector []float32
}

// Option configures optional SemanticOrchestrator collaborators.
type Option func(*SemanticOrchestrator)

// WithObserver attaches tracing/metrics/logging.
func WithObserver(o observe.Observer) Option {
	return func(s *SemanticOrchestrator) { s.observer = o }
}

// WithAuthorizer attaches an optional RBAC filter applied on top of the
// core's capability/auth-required predicates.
func WithAuthorizer(a auth.Authorizer) Option {
	return func(s *SemanticOrchestrator) { s.authorizer = a }
}

// New creates a SemanticOrchestrator. registry, model, index, cacheStore,
// gates and graph are required collaborators; observer and authorizer are
// optional and nil-safe.
func New(
	registry toolcat.Registry,
	model embedding.Model,
	index semindex.Index,
	cacheStore cache.Cache,
	gates *gate.Registry,
	graph *capgraph.CapabilityGraph,
	config Config,
	opts ...Option,
) *SemanticOrchestrator {
	s := &SemanticOrchestrator{
		config:   config.withDefaults(),
		registry: registry,
		model:    model,
		index:    index,
		cache:    cacheStore,
		gates:    gates,
		graph:    graph,
		hist:     newHistory(),
		indexed:  make(map[int]indexedTool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer != nil {
		// Reuses the teacher's tool-execution middleware around the
		// embed->search->filter->score pipeline: Discover is treated as a
		// synthetic "tool" so it gets the same span/metric/log wrapping a
		// real backend call would.
		if mw, err := observe.MiddlewareFromObserver(s.observer); err == nil {
			s.middleware = mw
		}
	}
	return s
}

// Initialize builds the tool index for the first time. Calling it again
// behaves like Rebuild.
func (s *SemanticOrchestrator) Initialize(ctx context.Context) error {
	return s.Rebuild(ctx)
}

// Rebuild fetches every tool from the registry, embeds
// "<backend_name> <tool_name> <description>" for each, and (re)inserts
// them into the vector index with a stable handle mapped back to the tool
// record (§4.3 "Index construction"). Concurrent Rebuild calls collapse
// into one in-flight computation via singleflight.
func (s *SemanticOrchestrator) Rebuild(ctx context.Context) error {
	_, err, _ := s.rebuildGroup.Do("rebuild", func() (any, error) {
		tools, err := s.registry.GetAllTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: fetch tools: %w", err)
		}

		indexTexts := make([]string, len(tools))
		scoreTexts := make([]string, len(tools))
		for i, t := range tools {
			indexTexts[i] = t.BackendName + " " + t.Name + " " + t.Description
			scoreTexts[i] = t.Name + " " + t.Description
		}

		var indexVectors, scoreVectors [][]float32
		if len(tools) > 0 {
			indexVectors, err = s.model.Encode(ctx, indexTexts)
			if err != nil {
				return nil, fmt.Errorf("orchestrator: encode tools for indexing: %w", err)
			}
			scoreVectors, err = s.model.Encode(ctx, scoreTexts)
			if err != nil {
				return nil, fmt.Errorf("orchestrator: encode tools for scoring: %w", err)
			}
		}

		var handles []int
		if len(indexVectors) > 0 {
			handles, err = s.index.Add(ctx, indexVectors)
			if err != nil {
				return nil, fmt.Errorf("orchestrator: index tools: %w", err)
			}
		}

		mapping := make(map[int]indexedTool, len(tools))
		for i, handle := range handles {
			mapping[handle] = indexedTool{Tool: tools[i], ScoreVector: scoreVectors[i]}
		}

		s.mu.Lock()
		s.indexed = mapping
		s.initialized = true
		s.mu.Unlock()

		if s.observer != nil {
			s.observer.Logger().Info(ctx, "orchestrator index rebuilt",
				observe.Field{Key: "tool_count", Value: len(tools)})
		}
		return nil, nil
	})
	return err
}

// RecordOutcome feeds the server-score calculation: backendID's recent
// success/latency window, plus the tool-level latency sample the planner
// later draws duration estimates from.
func (s *SemanticOrchestrator) RecordOutcome(backendID, toolID string, success bool, latency time.Duration) {
	s.hist.recordOutcome(backendID, toolID, success, latency)
}

// RecordToolUse feeds the context-relevance calculation: a prior
// successful use of toolID within sessionID earns a ranking bonus on
// future discoveries in that same session.
func (s *SemanticOrchestrator) RecordToolUse(sessionID, toolID string, success bool) {
	s.hist.recordToolUse(sessionID, toolID, success)
}

// Discover ranks tools relevant to intent under dctx, returning up to
// Config.TopK results sorted by combined_score*(1+context_relevance)
// descending, tie-broken by lexicographic tool id (§4.3, §4.4).
func (s *SemanticOrchestrator) Discover(ctx context.Context, intent string, dctx Context) ([]ToolScore, error) {
	s.mu.RLock()
	initialized := s.initialized
	s.mu.RUnlock()
	if !initialized {
		return nil, ErrNotInitialized
	}

	key := cacheKey(intent, dctx)

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached []ToolScore
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			// A corrupt cache entry is treated as a miss, not fatal
			// (§7 "a cache-layer error must not be fatal").
		}
	}

	compute := func() (any, error) {
		return s.discoverUncached(ctx, intent, dctx)
	}
	runCompute := compute
	if s.config.CollapseConcurrentMisses {
		runCompute = func() (any, error) {
			v, err, _ := s.discoverGroup.Do(key, compute)
			return v, err
		}
	}

	var result any
	var err error
	if s.middleware != nil {
		wrapped := s.middleware.Wrap(func(ctx context.Context, _ observe.ToolMeta, _ any) (any, error) {
			return runCompute()
		})
		result, err = wrapped(ctx, observe.ToolMeta{ID: "orchestrator.discover", Name: "discover"}, intent)
	} else {
		result, err = runCompute()
	}
	if err != nil {
		return nil, err
	}
	scores := result.([]ToolScore)

	if s.cache != nil {
		if raw, merr := json.Marshal(scores); merr == nil {
			_ = s.cache.Set(ctx, key, raw, s.config.CacheTTL)
		}
	}

	return scores, nil
}

func (s *SemanticOrchestrator) discoverUncached(ctx context.Context, intent string, dctx Context) ([]ToolScore, error) {
	vectors, err := s.model.Encode(ctx, []string{intent})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: encode intent: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("orchestrator: embedding model returned no vectors")
	}
	intentVec := vectors[0]

	// The L2-distance-to-similarity conversion of §4.3 only governs which
	// 4*TopK candidates Search retrieves (ascending distance = descending
	// similarity); τ itself is the fresh cosine similarity of §4.4, so the
	// raw distances are not needed past this call.
	searchK := 4 * s.config.TopK
	ids, _, err := s.index.Search(ctx, intentVec, searchK)
	if err != nil {
		if err == semindex.ErrEmptyIndex {
			return nil, ErrEmptyIndex
		}
		return nil, fmt.Errorf("orchestrator: search index: %w", err)
	}

	s.mu.RLock()
	indexed := s.indexed
	s.mu.RUnlock()

	var candidates []ToolScore
	for _, id := range ids {
		entry, ok := indexed[id]
		if !ok {
			continue
		}
		tool := entry.Tool
		if !s.matchesContext(ctx, tool, dctx) {
			continue
		}

		cosine := toolScore(intentVec, entry.ScoreVector)

		backendHistory := s.hist.backendHistory(tool.BackendID)
		server := serverScore(backendHistory)

		inWorkflow := dctx.WorkflowType != "" && s.graph != nil && s.graph.ToolInWorkflow(dctx.WorkflowType, tool.ID)
		priorUses := s.hist.priorSuccessfulUses(dctx.SessionID, tool.ID)
		relevance := contextRelevance(priorUses, inWorkflow)

		combined := combinedScore(server, cosine)

		candidates = append(candidates, ToolScore{
			Tool:             tool,
			ServerScore:      server,
			ToolScore:        cosine,
			CombinedScore:    combined,
			ContextRelevance: relevance,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		ki, kj := candidates[i].rankKey(), candidates[j].rankKey()
		if ki != kj {
			return ki > kj
		}
		return candidates[i].Tool.ID < candidates[j].Tool.ID
	})

	if len(candidates) > s.config.TopK {
		candidates = candidates[:s.config.TopK]
	}
	return candidates, nil
}

// matchesContext applies the context filter (§4.3): capability superset,
// auth-required, gate availability, and an optional RBAC check.
func (s *SemanticOrchestrator) matchesContext(ctx context.Context, tool toolcat.Tool, dctx Context) bool {
	if !tool.HasAllCapabilities(dctx.RequiredCapabilities) {
		return false
	}
	if dctx.AuthRequired && !tool.RequiresAuth {
		return false
	}
	if s.gates != nil && !s.gates.IsAvailable(tool.BackendID) {
		return false
	}
	if s.authorizer != nil && dctx.Identity != nil {
		req := &auth.AuthzRequest{
			Subject:      dctx.Identity,
			Resource:     "tool:" + tool.ID,
			Action:       auth.ActionDiscoverTool,
			ResourceType: "tool",
		}
		if err := s.authorizer.Authorize(ctx, req); err != nil {
			return false
		}
	}
	return true
}

// Plan delegates to planner.Plan, supplying the orchestrator's per-tool
// latency history as the duration estimator's lookup (§4.5).
func (s *SemanticOrchestrator) Plan(ctx context.Context, calls []planner.CallDescriptor) (planner.ExecutionPlan, error) {
	cfg := planner.Config{MaxParallel: s.config.MaxParallel}
	return planner.Plan(ctx, calls, cfg, s.hist.meanToolLatency)
}
