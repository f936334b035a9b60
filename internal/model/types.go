package model

// Dream is the core journal entity. The ID is assigned by the memory store at
// creation and is immutable, as is OwnerEmail; Analysis and ImageURL are the
// only fields that change after creation, via partial update.
type Dream struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Entry      string `json:"entry"`
	OwnerEmail string `json:"ownerEmail"`
	Analysis   string `json:"analysis,omitempty"`
	ImageURL   string `json:"image,omitempty"`
}

// Message roles used in conversation histories.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a role-tagged message in a per-user conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SearchChatResult is the payload returned by the search-chat workflow: the
// structured arguments produced by the dispatched function plus the raw
// search results used as grounding context. SearchResults is always non-nil.
type SearchChatResult struct {
	Function      string                 `json:"function"`
	Arguments     map[string]interface{} `json:"arguments"`
	SearchResults []Dream                `json:"searchResults"`
}
