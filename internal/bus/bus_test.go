package bus

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestThresholdsPayload_PartialDecode(t *testing.T) {
	var p ThresholdsPayload
	if err := json.Unmarshal([]byte(`{"co2":900}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CO2 == nil || *p.CO2 != 900 {
		t.Fatalf("expected co2=900, got %v", p.CO2)
	}
	if p.Temperatura != nil {
		t.Fatalf("absent key must stay nil, got %v", *p.Temperatura)
	}
}

func TestFanCommand_WireKeys(t *testing.T) {
	body, err := json.Marshal(FanCommand{Ventilador: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ventilador":true}` {
		t.Fatalf("unexpected wire format: %s", body)
	}
}

func TestFakePublisher_RecordsAndFails(t *testing.T) {
	f := NewFakePublisher()
	if err := f.Publish(TopicMode, ModePayload{Modo: "manual"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last, ok := f.Last()
	if !ok || last.Topic != TopicMode {
		t.Fatalf("expected recorded publish on %s, got %+v", TopicMode, last)
	}
	if string(last.Payload) != `{"modo":"manual"}` {
		t.Fatalf("unexpected payload: %s", last.Payload)
	}

	f.Err = errors.New("broker unreachable")
	if err := f.Publish(TopicMode, ModePayload{Modo: "manual"}); err == nil {
		t.Fatalf("expected injected error")
	}
	if len(f.Messages) != 1 {
		t.Fatalf("failed publish must not be recorded, got %d", len(f.Messages))
	}
}

func TestSubscribeTopics_FixedSet(t *testing.T) {
	want := []string{TopicSensors, TopicStatus, TopicMode, TopicThresholds}
	got := SubscribeTopics()
	if len(got) != len(want) {
		t.Fatalf("expected %d topics, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topic %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
