package domain

import "strings"

// Pipeline limits. MaxConversationTurns and MaxContextSummary are product
// constants, not configuration: the prompt word budget assumes them.
const (
	// DefaultMatchK is the retrieval breadth when the request does not override it.
	DefaultMatchK = 4
	// MaxConversationTurns caps how many trailing conversation turns reach the prompt.
	MaxConversationTurns = 6
	// MaxContextSummary caps how many context lines are echoed back to the caller.
	MaxContextSummary = 6
)

// Turn is a single prior conversation message supplied by the caller.
// The service holds no session state; multi-turn continuity is the caller
// re-sending history.
type Turn struct {
	Role    string
	Content string
}

// ChatRequest is one user question, optionally scoped to a property.
type ChatRequest struct {
	Query        string
	PropertyID   string
	Conversation []Turn
	MatchK       int // retrieval breadth override; <=0 means DefaultMatchK
}

// Validate checks request invariants that gate the pipeline.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// RecentConversation returns at most the last MaxConversationTurns turns,
// oldest of the kept turns first.
func (r ChatRequest) RecentConversation() []Turn {
	if len(r.Conversation) <= MaxConversationTurns {
		return r.Conversation
	}
	return r.Conversation[len(r.Conversation)-MaxConversationTurns:]
}

// ChatResponse is the synthesized answer returned to the caller.
type ChatResponse struct {
	Answer         string
	ContextSummary []string // context lines actually used, capped at MaxContextSummary
	RetrievedCount int      // documents the similarity search returned, before the K-cap
}
