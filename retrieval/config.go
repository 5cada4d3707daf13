package retrieval

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/loreseek/sectiongraph"
)

// Scheme is a named preset over the retrieval configuration.
type Scheme string

const (
	SchemeDefault  Scheme = "default"
	SchemeEnhanced Scheme = "enhanced"
	SchemeSmart    Scheme = "smart"
	SchemeFast     Scheme = "fast"
)

// DefaultRRFK is the reciprocal rank fusion damping constant.
const DefaultRRFK = 60

// DefaultSmartTopGroups is how many document groups the smart scheme keeps
// after its coarse first phase.
const DefaultSmartTopGroups = 3

// ChannelWeights holds the per-channel fusion weights. They need not sum
// to 1; a zero weight disables the channel entirely.
type ChannelWeights struct {
	Vector       float64 `json:"vector"`
	Lexical      float64 `json:"lexical"`
	Graph        float64 `json:"graph"`
	SectionGraph float64 `json:"section_graph"`
}

// Config is the per-call retrieval configuration. It is immutable once
// handed to the engine.
type Config struct {
	Scheme         Scheme
	Weights        ChannelWeights
	PerChannelTopK int
	FinalTopK      int
	MinScore       float64
	RRFK           int
	EnableRerank   bool
	// EnableSectionGraph gates the section graph channel and its
	// build-on-demand side effect independently of its weight.
	EnableSectionGraph bool
	SmartTopGroups     int

	// ChannelTimeout bounds each individual channel call.
	ChannelTimeout time.Duration
	// SectionGraphBuildTimeout bounds an on-demand section graph build.
	SectionGraphBuildTimeout time.Duration
}

// schemeConfigs maps schemes to their presets.
var schemeConfigs = map[Scheme]Config{
	SchemeDefault: {
		Scheme:             SchemeDefault,
		Weights:            ChannelWeights{Vector: 0.4, Lexical: 0.3, Graph: 0.2, SectionGraph: 0.1},
		PerChannelTopK:     20,
		FinalTopK:          10,
		RRFK:               DefaultRRFK,
		EnableRerank:       true,
		EnableSectionGraph: true,
		SmartTopGroups:     DefaultSmartTopGroups,
		ChannelTimeout:     10 * time.Second,

		SectionGraphBuildTimeout: sectiongraph.DefaultBuildTimeout,
	},
	SchemeEnhanced: {
		Scheme:             SchemeEnhanced,
		Weights:            ChannelWeights{Vector: 0.35, Lexical: 0.25, Graph: 0.25, SectionGraph: 0.15},
		PerChannelTopK:     40,
		FinalTopK:          20,
		RRFK:               DefaultRRFK,
		EnableRerank:       true,
		EnableSectionGraph: true,
		SmartTopGroups:     DefaultSmartTopGroups,
		ChannelTimeout:     15 * time.Second,

		SectionGraphBuildTimeout: sectiongraph.DefaultBuildTimeout,
	},
	SchemeSmart: {
		Scheme:             SchemeSmart,
		Weights:            ChannelWeights{Vector: 0.4, Lexical: 0.3, Graph: 0.2, SectionGraph: 0.1},
		PerChannelTopK:     20,
		FinalTopK:          10,
		RRFK:               DefaultRRFK,
		EnableRerank:       true,
		EnableSectionGraph: true,
		SmartTopGroups:     DefaultSmartTopGroups,
		ChannelTimeout:     10 * time.Second,

		SectionGraphBuildTimeout: sectiongraph.DefaultBuildTimeout,
	},
	SchemeFast: {
		Scheme:             SchemeFast,
		Weights:            ChannelWeights{Vector: 0.6, Lexical: 0.4},
		PerChannelTopK:     10,
		FinalTopK:          5,
		RRFK:               DefaultRRFK,
		EnableRerank:       false,
		EnableSectionGraph: false,
		SmartTopGroups:     DefaultSmartTopGroups,
		ChannelTimeout:     5 * time.Second,
	},
}

// NewConfig returns the preset configuration for a scheme. Unknown scheme
// names are a hard error, rejected before any channel runs.
func NewConfig(scheme Scheme) (*Config, error) {
	if scheme == "" {
		scheme = SchemeDefault
	}
	preset, ok := schemeConfigs[scheme]
	if !ok {
		return nil, errors.Errorf("unknown retrieval scheme: %q", scheme)
	}
	return &preset, nil
}

// Validate rejects configurations that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.PerChannelTopK < 1 {
		return errors.Errorf("per-channel top-k must be >= 1, got %d", c.PerChannelTopK)
	}
	if c.FinalTopK < 1 {
		return errors.Errorf("final top-k must be >= 1, got %d", c.FinalTopK)
	}
	if c.RRFK < 1 {
		return errors.Errorf("rrf k must be >= 1, got %d", c.RRFK)
	}
	if c.SmartTopGroups < 1 {
		return errors.Errorf("smart top groups must be >= 1, got %d", c.SmartTopGroups)
	}
	weights := []float64{c.Weights.Vector, c.Weights.Lexical, c.Weights.Graph, c.Weights.SectionGraph}
	for _, w := range weights {
		if w < 0 {
			return errors.Errorf("channel weights must be non-negative, got %f", w)
		}
	}
	if c.Weights.Vector == 0 && c.Weights.Lexical == 0 && c.Weights.Graph == 0 && c.Weights.SectionGraph == 0 {
		return errors.New("at least one channel weight must be positive")
	}
	return nil
}
