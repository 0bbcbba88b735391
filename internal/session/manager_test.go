package session

import (
	"errors"
	"testing"
)

func TestSessionManager_Lifecycle(t *testing.T) {
	sm := NewSessionManager()

	es := sm.Open("2024-05-01", "2024-05-01", testAggregates())
	if es.ID == "" {
		t.Fatal("Open() returned session without id")
	}
	if sm.Count() != 1 {
		t.Errorf("Count() = %d, want 1", sm.Count())
	}

	got, err := sm.Get(es.ID)
	if err != nil || got != es {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	if !sm.Close(es.ID) {
		t.Error("Close() = false")
	}
	if sm.Close(es.ID) {
		t.Error("second Close() = true")
	}
	if _, err := sm.Get(es.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after Close error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionManager_FreshStatePerOpen(t *testing.T) {
	sm := NewSessionManager()

	first := sm.Open("2024-05-01", "2024-05-01", testAggregates())
	first.SetManualIssued(7, "small", "5")
	sm.Close(first.ID)

	second := sm.Open("2024-05-01", "2024-05-01", testAggregates())
	if second.ID == first.ID {
		t.Fatal("sessions share an id")
	}
	if adj := second.Adjustment(7); adj.Issued.Small != 0 {
		t.Errorf("unsaved edits leaked into a new session: %+v", adj)
	}
}
