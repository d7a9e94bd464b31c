package bus

import (
	"encoding/json"
	"sync"
)

// PublishedMessage records one Publish call made against FakePublisher.
type PublishedMessage struct {
	Topic   string
	Payload []byte
}

// FakePublisher records publishes for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Messages contains every publish in call order.
	Messages []PublishedMessage

	// Err, if set, is returned by Publish and nothing is recorded.
	Err error
}

var _ Publisher = (*FakePublisher)(nil)

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the marshalled payload, or returns Err if set.
func (f *FakePublisher) Publish(topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.Messages = append(f.Messages, PublishedMessage{Topic: topic, Payload: body})
	return nil
}

// Last returns the most recent publish, or false if none happened.
func (f *FakePublisher) Last() (PublishedMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Messages) == 0 {
		return PublishedMessage{}, false
	}
	return f.Messages[len(f.Messages)-1], true
}

// Reset clears recorded messages and the injected error.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = nil
	f.Err = nil
}
