package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"

	// KnowledgeCheckIdentifier marks the fixed-protocol quiz flow.
	// When a turn's system prompt carries it and the history is still
	// empty, retrieval must stay off so the quiz contract is not
	// contaminated by retrieved context.
	KnowledgeCheckIdentifier = "You are a Socratic quizmaster"

	// Placeholder reply when the generation service returns empty text.
	EmptyReplyPlaceholder = "[No response text from AI]"

	// Session list previews: first user message, cut at 75 chars.
	SessionPreviewLength   = 75
	SessionPreviewEllipsis = "..."
	SessionPreviewFallback = "Chat Session"

	// The session list serves a sidebar; older sessions past this window
	// stay reachable by direct session id.
	SessionListLimit = 100

	ProviderPrefixGemini = "gemini"
	ProviderPrefixGrok   = "grok"

	// Topic for the in-process turn-completed queue.
	ChatTurnCompletedTopic = "CHAT_TURN_COMPLETED"
)
