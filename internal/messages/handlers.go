package messages

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MainePadFinder/padfinder/internal/auth"
	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/utils"
	"gorm.io/gorm"
)

type threadRow struct {
	ID             uint
	SenderID       uint
	RecipientID    uint
	MessageText    string
	TimeStamp      time.Time
	IsRead         bool
	SenderUsername string
}

type ThreadMessage struct {
	MsgID          uint   `json:"msgId"`
	Text           string `json:"text"`
	SenderID       uint   `json:"senderId"`
	RecipientID    uint   `json:"recipientId"`
	SenderUsername string `json:"senderUsername"`
	SentAt         string `json:"sentAt"`
	IsMine         bool   `json:"isMine"`
	IsRead         bool   `json:"isRead"`
}

// threadQuery selects both directions of the conversation, oldest first.
func threadQuery(tx *gorm.DB, me, other uint) *gorm.DB {
	return tx.Table("messaging.messages AS m").
		Select("m.id, m.sender_id, m.recipient_id, m.message_text, m.time_stamp, m.is_read, " +
			"su.username AS sender_username").
		Joins("JOIN app_auth.users AS su ON su.id = m.sender_id").
		Where("(m.sender_id = ? AND m.recipient_id = ?) OR (m.sender_id = ? AND m.recipient_id = ?)",
			me, other, other, me).
		Order("m.time_stamp ASC").
		Order("m.id ASC")
}

func shapeThread(rows []threadRow, me uint) []ThreadMessage {
	out := make([]ThreadMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, ThreadMessage{
			MsgID:          row.ID,
			Text:           row.MessageText,
			SenderID:       row.SenderID,
			RecipientID:    row.RecipientID,
			SenderUsername: row.SenderUsername,
			SentAt:         row.TimeStamp.UTC().Format(time.RFC3339),
			IsMine:         row.SenderID == me,
			IsRead:         row.IsRead,
		})
	}
	return out
}

// unreadFrom lists the unread messages from sender among rows the caller
// was actually shown.
func unreadFrom(rows []threadRow, sender uint) []uint {
	var ids []uint
	for _, row := range rows {
		if row.SenderID == sender && !row.IsRead {
			ids = append(ids, row.ID)
		}
	}
	return ids
}

// markReadQuery only touches the listed ids, so a message that arrives after
// the thread was read stays unread.
func markReadQuery(tx *gorm.DB, ids []uint, sender, recipient uint) *gorm.DB {
	return tx.Model(&Message{}).
		Where("id IN ? AND sender_id = ? AND recipient_id = ?", ids, sender, recipient).
		Update("is_read", true)
}

// lookupUserID returns 0 when no user has the username.
func lookupUserID(tx *gorm.DB, username string) (uint, error) {
	var user auth.User
	err := tx.Select("id").First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return user.UserID, err
}

// ThreadHandler returns the conversation with ?otherUsername=. Messages
// addressed to the caller are marked read once returned; the response carries
// their state from before this fetch.
func ThreadHandler(w http.ResponseWriter, r *http.Request) {
	me, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otherName := strings.TrimSpace(r.URL.Query().Get("otherUsername"))
	if otherName == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing otherUsername parameter")
		return
	}

	tx := db.DB.WithContext(r.Context())
	other, err := lookupUserID(tx, otherName)
	if err != nil {
		log.Printf("[messages] lookup %q: %v", otherName, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}
	if other == 0 {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	var rows []threadRow
	if err := threadQuery(tx, me, other).Find(&rows).Error; err != nil {
		log.Printf("[messages] thread %d<->%d: %v", me, other, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	if ids := unreadFrom(rows, other); len(ids) > 0 {
		if err := markReadQuery(tx, ids, other, me).Error; err != nil {
			// the thread itself loaded fine
			log.Printf("[messages] mark read %d->%d: %v", other, me, err)
		}
	}

	utils.WriteJSON(w, http.StatusOK, shapeThread(rows, me))
}

type sendRequest struct {
	OtherUsername string `json:"otherUsername"`
	Text          string `json:"text"`
}

func SendHandler(w http.ResponseWriter, r *http.Request) {
	me, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req sendRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	req.OtherUsername = strings.TrimSpace(req.OtherUsername)
	req.Text = strings.TrimSpace(req.Text)

	var missing []string
	if req.OtherUsername == "" {
		missing = append(missing, "otherUsername")
	}
	if req.Text == "" {
		missing = append(missing, "text")
	}
	if len(missing) > 0 {
		utils.WriteError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	tx := db.DB.WithContext(r.Context())
	recipient, err := lookupUserID(tx, req.OtherUsername)
	if err != nil {
		log.Printf("[messages] lookup %q: %v", req.OtherUsername, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	if recipient == 0 {
		utils.WriteError(w, http.StatusNotFound, "Recipient not found")
		return
	}
	if recipient == me {
		utils.WriteError(w, http.StatusBadRequest, "Cannot send a message to yourself")
		return
	}

	msg := Message{
		SenderID:    me,
		RecipientID: recipient,
		MessageText: req.Text,
		TimeStamp:   time.Now().UTC(),
	}
	if err := tx.Create(&msg).Error; err != nil {
		log.Printf("[messages] send %d->%d: %v", me, recipient, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Message sent",
		"msgId":   msg.ID,
	})
}
