package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/morganstate-cs/morganai/pkg/kv"
)

// HistoryWindow is how many recent messages are replayed into the prompt.
const HistoryWindow = 10

// Role identifies a message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Thread is one conversation between a user and the assistant.
type Thread struct {
	ID        string    `msgpack:"id"`
	UserID    string    `msgpack:"user_id"`
	Title     string    `msgpack:"title"`
	CreatedAt time.Time `msgpack:"created_at"`
	UpdatedAt time.Time `msgpack:"updated_at"`
}

// Message is one turn inside a thread.
type Message struct {
	ID        string    `msgpack:"id"`
	ThreadID  string    `msgpack:"thread_id"`
	Role      Role      `msgpack:"role"`
	Content   string    `msgpack:"content"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// ThreadStore keeps threads and their messages in a kv.Store. Keys are
// "thread/<user>/<thread>" for thread records and
// "msg/<user>/<thread>/<seq>" for messages, where seq is a zero-padded
// monotonic counter so Scan yields messages in send order.
type ThreadStore struct {
	store kv.Store

	mu      sync.Mutex
	lastSeq int64
}

// NewThreadStore creates a ThreadStore over the given kv backend.
func NewThreadStore(store kv.Store) *ThreadStore {
	return &ThreadStore{store: store}
}

func threadKey(userID, threadID string) string {
	return kv.Join("thread", userID, threadID)
}

func messagePrefix(userID, threadID string) string {
	return kv.Join("msg", userID, threadID) + "/"
}

// nextSeq returns a strictly increasing sequence number even when two
// messages land within the same nanosecond.
func (s *ThreadStore) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := time.Now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

// CreateThread starts a new conversation for a user.
func (s *ThreadStore) CreateThread(ctx context.Context, userID, title string) (*Thread, error) {
	if title == "" {
		title = "New Conversation"
	}
	now := time.Now().UTC()
	t := &Thread{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.putThread(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ThreadStore) putThread(ctx context.Context, t *Thread) error {
	data, err := msgpack.Marshal(t)
	if err != nil {
		return fmt.Errorf("chat: encode thread: %w", err)
	}
	return s.store.Put(ctx, threadKey(t.UserID, t.ID), data)
}

// GetThread loads one thread. Returns kv.ErrNotFound if the user has no
// such thread.
func (s *ThreadStore) GetThread(ctx context.Context, userID, threadID string) (*Thread, error) {
	data, err := s.store.Get(ctx, threadKey(userID, threadID))
	if err != nil {
		return nil, err
	}
	var t Thread
	if err := msgpack.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("chat: decode thread %s: %w", threadID, err)
	}
	return &t, nil
}

// ListThreads returns all of a user's threads, most recently updated
// first.
func (s *ThreadStore) ListThreads(ctx context.Context, userID string) ([]*Thread, error) {
	var threads []*Thread
	for entry, err := range s.store.Scan(ctx, kv.Join("thread", userID)+"/") {
		if err != nil {
			return nil, err
		}
		var t Thread
		if err := msgpack.Unmarshal(entry.Value, &t); err != nil {
			return nil, fmt.Errorf("chat: decode thread %s: %w", entry.Key, err)
		}
		threads = append(threads, &t)
	}
	for i := 1; i < len(threads); i++ {
		for j := i; j > 0 && threads[j].UpdatedAt.After(threads[j-1].UpdatedAt); j-- {
			threads[j], threads[j-1] = threads[j-1], threads[j]
		}
	}
	return threads, nil
}

// RenameThread sets a thread's title.
func (s *ThreadStore) RenameThread(ctx context.Context, userID, threadID, title string) error {
	t, err := s.GetThread(ctx, userID, threadID)
	if err != nil {
		return err
	}
	t.Title = title
	t.UpdatedAt = time.Now().UTC()
	return s.putThread(ctx, t)
}

// DeleteThread removes a thread and all of its messages.
func (s *ThreadStore) DeleteThread(ctx context.Context, userID, threadID string) error {
	if err := s.store.DeletePrefix(ctx, messagePrefix(userID, threadID)); err != nil {
		return err
	}
	return s.store.Delete(ctx, threadKey(userID, threadID))
}

// AppendMessage stores one message and bumps the thread's UpdatedAt. The
// first user message also becomes the thread title.
func (s *ThreadStore) AppendMessage(ctx context.Context, userID, threadID string, role Role, content string) (*Message, error) {
	t, err := s.GetThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	data, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("chat: encode message: %w", err)
	}
	key := messagePrefix(userID, threadID) + fmt.Sprintf("%020d", s.nextSeq())
	if err := s.store.Put(ctx, key, data); err != nil {
		return nil, err
	}

	t.UpdatedAt = msg.CreatedAt
	if role == RoleUser && (t.Title == "" || t.Title == "New Conversation") {
		t.Title = titleFrom(content)
	}
	if err := s.putThread(ctx, t); err != nil {
		return nil, err
	}
	return msg, nil
}

// titleFrom derives a thread title from its first user message.
func titleFrom(content string) string {
	title := strings.TrimSpace(content)
	if runes := []rune(title); len(runes) > 50 {
		title = string(runes[:50]) + "..."
	}
	if title == "" {
		return "New Conversation"
	}
	return title
}

// Messages returns every message in a thread in send order.
func (s *ThreadStore) Messages(ctx context.Context, userID, threadID string) ([]*Message, error) {
	var msgs []*Message
	for entry, err := range s.store.Scan(ctx, messagePrefix(userID, threadID)) {
		if err != nil {
			return nil, err
		}
		var m Message
		if err := msgpack.Unmarshal(entry.Value, &m); err != nil {
			return nil, fmt.Errorf("chat: decode message %s: %w", entry.Key, err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}

// History returns the last HistoryWindow messages of a thread.
func (s *ThreadStore) History(ctx context.Context, userID, threadID string) ([]*Message, error) {
	msgs, err := s.Messages(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}
	if len(msgs) > HistoryWindow {
		msgs = msgs[len(msgs)-HistoryWindow:]
	}
	return msgs, nil
}
