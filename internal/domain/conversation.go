package domain

import "time"

// Sender identifies who produced a conversation turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Turn is a single message in a chat session. Turns are never mutated once
// appended to a session.
type Turn struct {
	Sender       Sender        `json:"sender"`
	Text         string        `json:"message"`
	Timestamp    time.Time     `json:"timestamp"`
	IsList       bool          `json:"isList,omitempty"`
	DetailedInfo *DetailedInfo `json:"detailedInfo,omitempty"`
}

// DetailedInfo is the structured product information attached to replies
// about a specific catalog item.
type DetailedInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	InStock     bool   `json:"inStock"`
}

// NewUserTurn builds a user turn stamped with the current UTC time.
func NewUserTurn(text string) Turn {
	return Turn{Sender: SenderUser, Text: text, Timestamp: time.Now().UTC()}
}

// NewBotTurn builds a bot turn stamped with the current UTC time.
func NewBotTurn(text string) Turn {
	return Turn{Sender: SenderBot, Text: text, Timestamp: time.Now().UTC()}
}
