package domain

import "time"

type MessageKind string

const (
	MessageText   MessageKind = "text"
	MessageFile   MessageKind = "file"
	MessageSystem MessageKind = "system"
)

const StatusDelivered = "delivered"

// Message is append-only once it lands in a room's history. There is
// no update or delete path; only history eviction removes one.
type Message struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Username  string      `json:"username"`
	Avatar    string      `json:"avatar"`
	Color     string      `json:"color"`
	Text      string      `json:"text,omitempty"`
	FileName  string      `json:"fileName,omitempty"`
	FileSize  int64       `json:"fileSize,omitempty"`
	FileType  string      `json:"fileType,omitempty"`
	FileURL   string      `json:"fileUrl,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"type"`
	Room      RoomID      `json:"room"`
	Status    string      `json:"status,omitempty"`
}
