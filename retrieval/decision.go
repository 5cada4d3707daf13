package retrieval

import (
	"strings"
)

// Decision is the verdict on whether a query is worth retrieving for.
type Decision struct {
	ShouldRetrieve bool
	Reason         string
	Confidence     float32
}

// Decision reason constants.
const (
	ReasonChitchat         = "chitchat_detected"
	ReasonSystemCommand    = "system_command"
	ReasonRetrievalTrigger = "retrieval_trigger"
	ReasonDefault          = "default"
)

var (
	chitchatPatterns = []string{
		"hi", "hello", "hey", "thanks", "thank you", "bye", "goodbye",
		"ok", "okay", "sure", "got it", "nice", "cool", "great",
	}

	systemCommands = []string{
		"help", "settings", "quit", "exit", "clear", "reset", "cancel",
	}

	retrievalTriggers = []string{
		"search", "find", "look up", "lookup", "show", "list",
		"which", "what", "when", "where", "who", "how", "why",
		"tell me about", "remind me", "mentioned", "wrote", "said",
	}
)

// Decider applies cheap rules to skip retrieval for queries that cannot
// benefit from it.
type Decider struct {
	chitchatPatterns  []string
	systemCommands    []string
	retrievalTriggers []string
}

// NewDecider creates a decider with the default patterns.
func NewDecider() *Decider {
	return &Decider{
		chitchatPatterns:  chitchatPatterns,
		systemCommands:    systemCommands,
		retrievalTriggers: retrievalTriggers,
	}
}

// Decide determines whether retrieval is needed for a query.
func (d *Decider) Decide(query string) *Decision {
	query = strings.TrimSpace(query)
	queryLower := strings.ToLower(query)

	// Very short queries are almost always chitchat.
	if len([]rune(query)) <= 2 {
		return &Decision{ShouldRetrieve: false, Reason: ReasonChitchat, Confidence: 0.9}
	}

	for _, pattern := range d.chitchatPatterns {
		if queryLower == pattern || strings.HasPrefix(queryLower, pattern+" ") {
			return &Decision{ShouldRetrieve: false, Reason: ReasonChitchat, Confidence: 0.95}
		}
	}

	for _, cmd := range d.systemCommands {
		if strings.Contains(queryLower, cmd) && len([]rune(query)) < 12 {
			return &Decision{ShouldRetrieve: false, Reason: ReasonSystemCommand, Confidence: 0.9}
		}
	}

	for _, trigger := range d.retrievalTriggers {
		if strings.Contains(queryLower, trigger) {
			return &Decision{ShouldRetrieve: true, Reason: ReasonRetrievalTrigger, Confidence: 0.9}
		}
	}

	// Longer free-form queries default to retrieving.
	if len([]rune(query)) > 5 {
		return &Decision{ShouldRetrieve: true, Reason: ReasonDefault, Confidence: 0.6}
	}

	return &Decision{ShouldRetrieve: false, Reason: ReasonChitchat, Confidence: 0.5}
}

// DecideRetrieval is a convenience function for quick decisions.
func DecideRetrieval(query string) *Decision {
	return NewDecider().Decide(query)
}
