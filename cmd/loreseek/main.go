package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/loreseek/ai"
	"github.com/hrygo/loreseek/internal/profile"
	"github.com/hrygo/loreseek/metrics"
	"github.com/hrygo/loreseek/retrieval"
	"github.com/hrygo/loreseek/sectiongraph"
	"github.com/hrygo/loreseek/store"
	"github.com/hrygo/loreseek/store/db"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "loreseek",
	Short: "Hybrid multi-channel retrieval and ranking engine",
}

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Run one retrieval and print the ranked results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

var buildCmd = &cobra.Command{
	Use:   "build [group-id]",
	Short: "Pre-build the section graph for a document group",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregated retrieval metrics",
	RunE:  runStats,
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of the engine: "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver: "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	for _, name := range []string{"mode", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	queryCmd.Flags().String("scheme", "", "retrieval scheme: default, enhanced, smart or fast")
	queryCmd.Flags().StringSlice("group", nil, "restrict retrieval to these document group IDs")
	queryCmd.Flags().Int("top", 0, "override the final result count")
	queryCmd.Flags().Float64("min-score", 0, "override the minimum score floor")
	queryCmd.Flags().Bool("force", false, "retrieve even when the query looks like chitchat")

	rootCmd.AddCommand(queryCmd, buildCmd, statsCmd)

	viper.SetEnvPrefix("loreseek")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles everything a command needs after bootstrap.
type app struct {
	store    *store.Store
	engine   *retrieval.Engine
	sections *sectiongraph.Manager
	metrics  *metrics.Persister
	profile  *profile.Profile
}

func bootstrap() (*app, error) {
	p := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version,
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	st := store.New(driver, p)
	if err := st.Migrate(context.Background()); err != nil {
		return nil, err
	}

	aiCfg := ai.NewConfigFromProfile(p)
	if err := aiCfg.Validate(); err != nil {
		return nil, err
	}
	embedding, err := ai.NewEmbeddingService(&aiCfg.Embedding)
	if err != nil {
		return nil, err
	}
	reranker := ai.NewRerankerService(&aiCfg.Reranker)

	schemeCfg, err := retrieval.NewConfig(retrieval.Scheme(p.RetrievalScheme))
	if err != nil {
		return nil, err
	}

	builder := sectiongraph.NewBuilder(st, embedding, aiCfg.Embedding.Model)
	sections := sectiongraph.NewManager(sectiongraph.NewService(builder, embedding), schemeCfg.SectionGraphBuildTimeout)

	// Metrics survive across runs in the data dir so `stats` aggregates
	// past retrievals, not just this process.
	recorder := metrics.NewAggregator()
	persister := metrics.NewPersister(filepath.Join(p.Data, "loreseek_metrics.json"), recorder, 0)
	if err := persister.Load(); err != nil {
		slog.Warn("failed to load metrics history", "error", err)
	}

	engine := retrieval.NewEngine(retrieval.Options{
		Store:     st,
		Embedding: embedding,
		Reranker:  reranker,
		Sections:  sections,
		Recorder:  recorder,
	})

	return &app{store: st, engine: engine, sections: sections, metrics: persister, profile: p}, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.store.Close()

	query := strings.Join(args, " ")

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if decision := retrieval.DecideRetrieval(query); !decision.ShouldRetrieve {
			fmt.Printf("skipping retrieval (%s, confidence %.2f); pass --force to override\n",
				decision.Reason, decision.Confidence)
			return nil
		}
	}

	scheme, _ := cmd.Flags().GetString("scheme")
	if scheme == "" {
		scheme = a.profile.RetrievalScheme
	}
	cfg, err := retrieval.NewConfig(retrieval.Scheme(scheme))
	if err != nil {
		return err
	}
	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		cfg.FinalTopK = top
	}
	if minScore, _ := cmd.Flags().GetFloat64("min-score"); minScore > 0 {
		cfg.MinScore = minScore
	}
	groups, _ := cmd.Flags().GetStringSlice("group")

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	results, err := a.engine.Retrieve(ctx, query, groups, cfg)
	if err != nil {
		return err
	}
	if err := a.metrics.Flush(); err != nil {
		slog.Warn("failed to persist metrics", "error", err)
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	evaluation := retrieval.EvaluateResults(results)
	fmt.Printf("%d results (%s, suggested action: %s)\n\n",
		len(results), evaluation.Reason, evaluation.SuggestedAction)
	for i, result := range results {
		name := result.DisplayName
		if name == "" {
			name = result.ID
		}
		fmt.Printf("%2d. [%5.1f] %-10s %s\n", i+1, result.Score, result.SourceKind, name)
		if content := firstLine(result.Content); content != "" {
			fmt.Printf("      %s\n", content)
		}
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.store.Close()

	groupID := args[0]
	start := time.Now()
	a.sections.EnsureReady(cmd.Context(), groupID)

	status := a.sections.Status(groupID)
	fmt.Printf("section graph for %s: %s (%.1fs)\n", groupID, status, time.Since(start).Seconds())
	if status != sectiongraph.StatusReady {
		return fmt.Errorf("build did not complete for group %s", groupID)
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.store.Close()

	stats, err := a.engine.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("requests: %d (success %d), p50 %v, p95 %v, rerank fallbacks %d\n",
		stats.RequestCount, stats.SuccessCount, stats.LatencyP50, stats.LatencyP95, stats.RerankFallbacks)
	for name, channel := range stats.ChannelStats {
		fmt.Printf("  %-14s calls %d, success %.0f%%, avg %v\n",
			name, channel.Count, channel.SuccessRate*100, channel.AvgLatency)
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return s
}
