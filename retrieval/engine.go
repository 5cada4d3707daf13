package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/loreseek/ai"
	"github.com/hrygo/loreseek/metrics"
	"github.com/hrygo/loreseek/store"
)

// vectorSource is the vector channel surface the engine needs: the generic
// channel contract plus collection-scoped search for the smart scheme's
// coarse first phase.
type vectorSource interface {
	Channel
	SearchCollections(ctx context.Context, query string, groupIDs []string, collections []string, topK int, minScore float64) ([]*Result, error)
}

// Engine orchestrates the retrieval pipeline: concurrent channel fan-out,
// weighted RRF fusion, optional reranking and score normalization. A single
// channel failing is absorbed as an empty contribution and logged; the
// caller always gets a result list unless the configuration itself is bad.
type Engine struct {
	vector   vectorSource
	lexical  Channel
	section  Channel
	graph    SeededChannel
	reranker ai.RerankerService
	recorder metrics.Recorder
}

// Options wires the engine's backends.
type Options struct {
	Store     *store.Store
	Embedding ai.EmbeddingService
	Reranker  ai.RerankerService
	Sections  SectionSearcher
	Recorder  metrics.Recorder
}

// NewEngine creates an engine over the given backends. Recorder defaults to
// an in-memory aggregator; Sections and Reranker may be nil to run without
// the section graph channel or reranking.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		vector:   NewVectorChannel(opts.Store, opts.Embedding),
		lexical:  NewLexicalChannel(opts.Store),
		graph:    NewGraphChannel(opts.Store),
		reranker: opts.Reranker,
		recorder: opts.Recorder,
	}
	if opts.Sections != nil {
		e.section = NewSectionChannel(opts.Sections)
	}
	if e.recorder == nil {
		e.recorder = metrics.NewAggregator()
	}
	return e
}

// Retrieve runs the configured pipeline for one query. A nil config means
// the default scheme. Configuration errors are returned synchronously
// before any channel runs; backend failures never surface as errors.
func (e *Engine) Retrieve(ctx context.Context, query string, groupIDs []string, cfg *Config) ([]*Result, error) {
	cfg, err := e.resolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query must not be empty")
	}

	if cfg.Scheme == SchemeSmart {
		return e.smartRetrieve(ctx, query, groupIDs, cfg)
	}
	return e.retrieve(ctx, query, groupIDs, cfg)
}

// SmartRetrieve forces the two-phase strategy regardless of cfg.Scheme.
func (e *Engine) SmartRetrieve(ctx context.Context, query string, groupIDs []string, cfg *Config) ([]*Result, error) {
	cfg, err := e.resolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query must not be empty")
	}
	return e.smartRetrieve(ctx, query, groupIDs, cfg)
}

// Stats returns aggregated pipeline metrics.
func (e *Engine) Stats(ctx context.Context) (*metrics.RetrievalMetrics, error) {
	return e.recorder.GetStats(ctx)
}

func (e *Engine) resolveConfig(cfg *Config) (*Config, error) {
	if cfg == nil {
		return NewConfig(SchemeDefault)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// retrieve is the full multi-channel pipeline.
func (e *Engine) retrieve(ctx context.Context, query string, groupIDs []string, cfg *Config) ([]*Result, error) {
	start := time.Now()
	logger := slog.With(
		"request_id", shortuuid.New(),
		"scheme", string(cfg.Scheme),
		"groups", len(groupIDs))

	var vectorResults, lexicalResults, sectionResults []*Result

	// The section channel runs fully parallel on its own barrier; graph
	// expansion only needs vector and lexical to finish first.
	section := new(errgroup.Group)
	if cfg.EnableSectionGraph && cfg.Weights.SectionGraph > 0 && e.section != nil {
		section.Go(func() error {
			sectionResults = e.runChannel(ctx, logger, cfg, e.section, query, groupIDs)
			return nil
		})
	}

	g := new(errgroup.Group)
	if cfg.Weights.Vector > 0 {
		g.Go(func() error {
			vectorResults = e.runChannel(ctx, logger, cfg, e.vector, query, groupIDs)
			return nil
		})
	}
	if cfg.Weights.Lexical > 0 {
		g.Go(func() error {
			lexicalResults = e.runChannel(ctx, logger, cfg, e.lexical, query, groupIDs)
			return nil
		})
	}
	_ = g.Wait()

	// The graph channel traverses outward from what the other two found,
	// so it runs after their barrier, never in parallel with them.
	var graphResults []*Result
	if cfg.Weights.Graph > 0 {
		seeds := seedIDs(vectorResults, lexicalResults)
		graphResults = e.runGraphChannel(ctx, logger, cfg, seeds, groupIDs)
	}

	_ = section.Wait()

	fused := FuseWithRRF([]ChannelResults{
		{Channel: ChannelVector, Weight: cfg.Weights.Vector, Results: vectorResults},
		{Channel: ChannelLexical, Weight: cfg.Weights.Lexical, Results: lexicalResults},
		{Channel: ChannelGraph, Weight: cfg.Weights.Graph, Results: graphResults},
		{Channel: ChannelSectionGraph, Weight: cfg.Weights.SectionGraph, Results: sectionResults},
	}, cfg.RRFK)

	if cfg.EnableRerank && e.reranker != nil && e.reranker.IsEnabled() && len(fused) > 0 {
		reranked, err := rerankResults(ctx, e.reranker, query, fused, cfg.FinalTopK)
		if err != nil {
			logger.Warn("rerank failed, keeping fused order", "error", err)
			e.recorder.RecordRerankFallback(ctx)
		} else {
			fused = reranked
		}
	}

	fused = NormalizeScores(fused)
	if len(fused) > cfg.FinalTopK {
		fused = fused[:cfg.FinalTopK]
	}

	e.recorder.RecordRetrieval(ctx, string(cfg.Scheme), time.Since(start), true)
	logger.Info("retrieval complete",
		"results", len(fused),
		"vector", len(vectorResults),
		"lexical", len(lexicalResults),
		"graph", len(graphResults),
		"section", len(sectionResults),
		"duration", time.Since(start))

	return fused, nil
}

// smartRetrieve is the two-phase strategy: a coarse document-summary pass
// narrows the corpus to the few most promising document groups, then the
// full pipeline runs scoped to just those groups.
func (e *Engine) smartRetrieve(ctx context.Context, query string, groupIDs []string, cfg *Config) ([]*Result, error) {
	logger := slog.With("request_id", shortuuid.New(), "scheme", "smart")

	summaries, err := e.vector.SearchCollections(ctx, query, groupIDs,
		[]string{store.CollectionDocumentSummary}, cfg.PerChannelTopK, cfg.MinScore)
	if err != nil {
		logger.Warn("smart phase 1 failed, falling back to full retrieval", "error", err)
		summaries = nil
	}

	topGroups := topGroupIDs(summaries, cfg.SmartTopGroups)
	if len(topGroups) == 0 {
		logger.Info("smart phase 1 found no document groups, running unscoped")
		return e.retrieve(ctx, query, groupIDs, cfg)
	}

	logger.Info("smart phase 1 selected groups", "groups", topGroups)
	return e.retrieve(ctx, query, topGroups, cfg)
}

// runChannel executes one channel under its timeout and absorbs failures.
func (e *Engine) runChannel(ctx context.Context, logger *slog.Logger, cfg *Config, channel Channel, query string, groupIDs []string) []*Result {
	channelCtx, cancel := context.WithTimeout(ctx, cfg.ChannelTimeout)
	defer cancel()

	start := time.Now()
	results, err := channel.Search(channelCtx, query, groupIDs, cfg.PerChannelTopK, cfg.MinScore)
	e.recorder.RecordChannel(ctx, channel.Name(), time.Since(start), err == nil)
	if err != nil {
		logger.Warn("channel failed, contributing no results",
			"channel", channel.Name(),
			"error", err)
		return nil
	}
	return results
}

func (e *Engine) runGraphChannel(ctx context.Context, logger *slog.Logger, cfg *Config, seeds []string, groupIDs []string) []*Result {
	if len(seeds) == 0 {
		return nil
	}

	channelCtx, cancel := context.WithTimeout(ctx, cfg.ChannelTimeout)
	defer cancel()

	start := time.Now()
	results, err := e.graph.SearchWithSeeds(channelCtx, seeds, groupIDs, cfg.PerChannelTopK)
	e.recorder.RecordChannel(ctx, e.graph.Name(), time.Since(start), err == nil)
	if err != nil {
		logger.Warn("channel failed, contributing no results",
			"channel", e.graph.Name(),
			"error", err)
		return nil
	}
	return results
}

// seedIDs collects the top vector and lexical hits as traversal seeds.
func seedIDs(vectorResults, lexicalResults []*Result) []string {
	seen := make(map[string]bool)
	var seeds []string
	appendTop := func(results []*Result) {
		for i, result := range results {
			if i >= graphSeedCount {
				break
			}
			if seen[result.ID] {
				continue
			}
			seen[result.ID] = true
			seeds = append(seeds, result.ID)
		}
	}
	appendTop(vectorResults)
	appendTop(lexicalResults)
	return seeds
}

// topGroupIDs aggregates hits by document group and returns the best n
// groups by summed score, ties broken by group ID for determinism.
func topGroupIDs(results []*Result, n int) []string {
	scores := make(map[string]float64)
	for _, result := range results {
		if result.GroupID == "" {
			continue
		}
		scores[result.GroupID] += result.Score
	}
	if len(scores) == 0 {
		return nil
	}

	groups := make([]string, 0, len(scores))
	for groupID := range scores {
		groups = append(groups, groupID)
	}
	sort.Slice(groups, func(i, j int) bool {
		if scores[groups[i]] != scores[groups[j]] {
			return scores[groups[i]] > scores[groups[j]]
		}
		return groups[i] < groups[j]
	})

	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
