package room

import (
	"errors"
	"sync"
)

var (
	errClosedSender    = errors.New("sender closed")
	errFakeSendFailure = errors.New("fake send failure")
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	closed bool
	failOn string // message type to fail once, for exercising broadcast cleanup
}

type sentMessage struct {
	Type    string
	Payload any
}

func (f *fakeSender) Send(messageType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return errClosedSender
	}
	if f.failOn != "" && f.failOn == messageType {
		f.failOn = ""
		return errFakeSendFailure
	}
	f.sent = append(f.sent, sentMessage{Type: messageType, Payload: payload})
	return nil
}

func (f *fakeSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeSender) lastOfType(messageType string) (sentMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Type == messageType {
			return f.sent[i], true
		}
	}
	return sentMessage{}, false
}

func (f *fakeSender) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
