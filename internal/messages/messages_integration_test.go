package messages

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/MainePadFinder/padfinder/internal/auth"
	"github.com/MainePadFinder/padfinder/internal/config"
	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/utils"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var dbAvailable bool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	if os.Getenv("DATABASE_URL") == "" {
		os.Exit(m.Run())
	}

	cfg := config.Load()
	db.Connect(cfg)
	auth.Init(cfg)
	Init()
	dbAvailable = true

	os.Exit(m.Run())
}

func createUser(t *testing.T) auth.User {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	name := "msg_" + uuid.NewString()[:8]
	user := auth.User{Username: name, Email: name + "@example.test", PasswordHash: "x"}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("sender_id = ? OR recipient_id = ?", user.UserID, user.UserID).Delete(&Message{})
		db.DB.Delete(&user)
	})
	return user
}

func call(t *testing.T, h http.HandlerFunc, as uint, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(utils.WithUserID(req.Context(), as))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSendAndThread(t *testing.T) {
	amy := createUser(t)
	bob := createUser(t)

	sends := []struct {
		from uint
		to   string
		text string
	}{
		{amy.UserID, bob.Username, "is the unit still open?"},
		{bob.UserID, amy.Username, "yes, until June"},
		{amy.UserID, bob.Username, "great"},
	}
	for _, s := range sends {
		body, _ := json.Marshal(map[string]string{"otherUsername": s.to, "text": s.text})
		if rec := call(t, SendHandler, s.from, http.MethodPost, "/messages/send", string(body)); rec.Code != http.StatusCreated {
			t.Fatalf("send: expected 201, got %d; body: %s", rec.Code, rec.Body.String())
		}
	}

	rec := call(t, ThreadHandler, bob.UserID, http.MethodGet, "/messages/thread?otherUsername="+amy.Username, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("thread: expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
	var thread []ThreadMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &thread); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(thread) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(thread))
	}
	for i, s := range sends {
		if thread[i].Text != s.text {
			t.Errorf("message %d: got %q, want %q", i, thread[i].Text, s.text)
		}
		if thread[i].IsMine != (s.from == bob.UserID) {
			t.Errorf("message %d: isMine = %v", i, thread[i].IsMine)
		}
	}
	if thread[0].IsRead {
		t.Error("first fetch should report amy's message as unread")
	}

	var unread int64
	db.DB.Model(&Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", amy.UserID, bob.UserID, false).
		Count(&unread)
	if unread != 0 {
		t.Errorf("expected bob's incoming messages marked read, %d still unread", unread)
	}

	// bob's reply stays unread until amy opens the thread
	var bobReply Message
	db.DB.Where("sender_id = ?", bob.UserID).First(&bobReply)
	if bobReply.IsRead {
		t.Error("outgoing messages must not be marked read by the sender's fetch")
	}
}

func TestThread_LaterMessageStaysUnread(t *testing.T) {
	amy := createUser(t)
	bob := createUser(t)

	send := func(from uint, to, text string) {
		t.Helper()
		body, _ := json.Marshal(map[string]string{"otherUsername": to, "text": text})
		if rec := call(t, SendHandler, from, http.MethodPost, "/messages/send", string(body)); rec.Code != http.StatusCreated {
			t.Fatalf("send: expected 201, got %d; body: %s", rec.Code, rec.Body.String())
		}
	}

	send(amy.UserID, bob.Username, "first")
	if rec := call(t, ThreadHandler, bob.UserID, http.MethodGet, "/messages/thread?otherUsername="+amy.Username, ""); rec.Code != http.StatusOK {
		t.Fatalf("thread: expected 200, got %d", rec.Code)
	}
	send(amy.UserID, bob.Username, "second")

	var msgs []Message
	db.DB.Where("sender_id = ? AND recipient_id = ?", amy.UserID, bob.UserID).Order("id").Find(&msgs)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !msgs[0].IsRead || msgs[1].IsRead {
		t.Errorf("only the message bob was shown should be read: %+v", msgs)
	}
}

func TestThread_UnknownUser(t *testing.T) {
	amy := createUser(t)
	rec := call(t, ThreadHandler, amy.UserID, http.MethodGet, "/messages/thread?otherUsername=nobody_"+uuid.NewString()[:8], "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSend_UnknownRecipient(t *testing.T) {
	amy := createUser(t)
	rec := call(t, SendHandler, amy.UserID, http.MethodPost, "/messages/send",
		`{"otherUsername":"nobody_`+uuid.NewString()[:8]+`","text":"hi"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
