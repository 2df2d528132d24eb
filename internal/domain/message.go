package domain

import "time"

// MessageEnvelope is the transient per-delivery shape of a chat message.
// It is built for fan-out and is distinct from the durable record owned
// by the message store; ID is empty until (and unless) persistence
// succeeds.
type MessageEnvelope struct {
	ID               string    `json:"id,omitempty"`
	From             Identity  `json:"from"`
	FromID           string    `json:"fromId,omitempty"`
	To               Identity  `json:"to,omitempty"`
	Message          string    `json:"message,omitempty"`
	IsGroup          bool      `json:"isGroup"`
	GroupName        GroupName `json:"groupName,omitempty"`
	RoomCode         RoomCode  `json:"roomCode,omitempty"`
	MediaType        string    `json:"mediaType,omitempty"`
	MediaData        string    `json:"mediaData,omitempty"`
	FileName         string    `json:"fileName,omitempty"`
	FileSize         int64     `json:"fileSize,omitempty"`
	SentAt           time.Time `json:"sentAt"`
	Time             string    `json:"time"`
	ReplyToMessageID string    `json:"replyToMessageId,omitempty"`
	ReplyToSender    string    `json:"replyToSender,omitempty"`
	ReplyToText      string    `json:"replyToText,omitempty"`
	ThreadID         string    `json:"threadId,omitempty"`
	ThreadCount      int       `json:"threadCount,omitempty"`
}

// Reaction is one reader's emoji on a message. The store enforces at
// most one per reader per message.
type Reaction struct {
	By    Identity `json:"by"`
	Emoji string   `json:"emoji"`
}

// StoredMessage is the durable record view the core needs back from the
// message store to resolve notification scope.
type StoredMessage struct {
	ID        string     `json:"id"`
	From      Identity   `json:"from"`
	To        Identity   `json:"to,omitempty"`
	IsGroup   bool       `json:"isGroup"`
	GroupName GroupName  `json:"groupName,omitempty"`
	RoomCode  RoomCode   `json:"roomCode,omitempty"`
	Message   string     `json:"message,omitempty"`
	SentAt    time.Time  `json:"sentAt"`
	ReadBy    []Identity `json:"readBy,omitempty"`
	IsRead    bool       `json:"isRead"`
	Reactions []Reaction `json:"reactions,omitempty"`
}
