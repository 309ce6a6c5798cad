package messages

import "time"

// Message text is never edited after insert; only IsRead changes.
type Message struct {
	ID          uint      `gorm:"primaryKey"`
	SenderID    uint      `gorm:"not null;index:idx_messages_pair,priority:1"`
	RecipientID uint      `gorm:"not null;index:idx_messages_pair,priority:2"`
	MessageText string    `gorm:"type:text;not null"`
	TimeStamp   time.Time `gorm:"not null;index"`
	IsRead      bool      `gorm:"not null"`
}

func (Message) TableName() string { return "messaging.messages" }
