package session

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// AddChatMessage appends msg to the thread for doctorID, creating the thread on
// first use, and stamps LastActivity with the store clock.
func (s *Session) AddChatMessage(ctx context.Context, doctorID, doctorName string, msg Message) error {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	now := s.store.now()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	u, err := s.mutateCurrent(ctx, func(u *User) {
		for i := range u.ChatHistory {
			if u.ChatHistory[i].DoctorID == doctorID {
				u.ChatHistory[i].Messages = append(u.ChatHistory[i].Messages, msg)
				u.ChatHistory[i].LastActivity = now
				return
			}
		}
		u.ChatHistory = append(u.ChatHistory, ChatRecord{
			DoctorID:     doctorID,
			DoctorName:   doctorName,
			Messages:     []Message{msg},
			LastActivity: now,
		})
	})
	s.store.observe("add_chat_message", start, err, u == nil)
	return err
}

// ChatHistory returns the thread for doctorID, or nil.
func (s *Session) ChatHistory(ctx context.Context, doctorID string) (*ChatRecord, error) {
	u, err := s.Current(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	for i := range u.ChatHistory {
		if u.ChatHistory[i].DoctorID == doctorID {
			return &u.ChatHistory[i], nil
		}
	}
	return nil, nil
}

// ChatThreads returns every thread, most recently active first.
func (s *Session) ChatThreads(ctx context.Context) ([]ChatRecord, error) {
	u, err := s.Current(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	threads := append([]ChatRecord(nil), u.ChatHistory...)
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastActivity.After(threads[j].LastActivity)
	})
	return threads, nil
}

// DeleteChatHistory drops the thread for doctorID. There is no undo.
func (s *Session) DeleteChatHistory(ctx context.Context, doctorID string) error {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	u, err := s.mutateCurrent(ctx, func(u *User) {
		kept := u.ChatHistory[:0]
		for _, chat := range u.ChatHistory {
			if chat.DoctorID != doctorID {
				kept = append(kept, chat)
			}
		}
		u.ChatHistory = kept
	})
	s.store.observe("delete_chat_history", start, err, u == nil)
	return err
}
