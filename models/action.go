package models

import "encoding/json"

// ActionKind enumerates the AI actions the gateway can perform. The
// set is closed: adding an action requires a prompt builder entry and,
// if it needs one, an enrichment step in the orchestrator. There is no
// generic passthrough action.
type ActionKind string

const (
	ActionSuggestTasks     ActionKind = "suggest_tasks"
	ActionPrioritize       ActionKind = "prioritize"
	ActionSchedule         ActionKind = "schedule"
	ActionBreakdown        ActionKind = "breakdown"
	ActionAutoWriteNote    ActionKind = "auto_write_note"
	ActionCompleteNote     ActionKind = "complete_note"
	ActionYouTubeToNote    ActionKind = "youtube_to_note"
	ActionYouTubeToMindmap ActionKind = "youtube_to_mindmap"
	ActionGenerateMindmap  ActionKind = "generate_mindmap"
)

// KnownActions lists every supported action kind.
var KnownActions = []ActionKind{
	ActionSuggestTasks,
	ActionPrioritize,
	ActionSchedule,
	ActionBreakdown,
	ActionAutoWriteNote,
	ActionCompleteNote,
	ActionYouTubeToNote,
	ActionYouTubeToMindmap,
	ActionGenerateMindmap,
}

// IsValid reports whether a is one of the known action kinds.
func (a ActionKind) IsValid() bool {
	for _, k := range KnownActions {
		if a == k {
			return true
		}
	}
	return false
}

// NeedsTranscript reports whether the action consumes a video
// transcript fetched during context enrichment.
func (a ActionKind) NeedsTranscript() bool {
	return a == ActionYouTubeToNote || a == ActionYouTubeToMindmap
}

// AIRequest is the wire shape of a gateway call. Context is an opaque
// key/value bag whose expected keys depend on the action; it is
// narrowed into a typed per-action context before any prompt is built.
type AIRequest struct {
	Action   ActionKind             `json:"action" binding:"required"`
	Context  map[string]interface{} `json:"context"`
	Language string                 `json:"language"`
}

// TokensUsed reports the provider-authoritative token counts for a
// single model call.
type TokensUsed struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
}

// MonthlyUsage reports the caller's consumption against their plan
// budget. Limit is UnlimitedBudget (-1) when no budget applies.
type MonthlyUsage struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// AIResponse is the uniform success envelope. Result is the parsed
// model output, or {"text": <raw>} when the model returned something
// that is not valid JSON.
type AIResponse struct {
	Result       json.RawMessage `json:"result"`
	TokensUsed   TokensUsed      `json:"tokensUsed"`
	MonthlyUsage MonthlyUsage    `json:"monthlyUsage"`
}
