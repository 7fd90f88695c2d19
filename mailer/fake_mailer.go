package mailer

import (
	"context"
	"sync"
)

// FakeMailer records every message, optionally failing all sends.
type FakeMailer struct {
	m        sync.Mutex
	Messages []Message
	Err      error
}

func (f *FakeMailer) Send(ctx context.Context, msg Message) error {
	f.m.Lock()
	defer f.m.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Messages = append(f.Messages, msg)
	return nil
}

// Last returns the most recent message, ok is false if nothing was sent.
func (f *FakeMailer) Last() (msg Message, ok bool) {
	f.m.Lock()
	defer f.m.Unlock()
	if len(f.Messages) == 0 {
		return Message{}, false
	}
	return f.Messages[len(f.Messages)-1], true
}
