package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/cargodeck/internal/logging"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeProjectCreated, func(e Event) {
		received = e
	})

	bus.Publish(NewProjectCreatedEvent("/tmp/foo"))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	created, ok := received.(ProjectCreatedEvent)
	if !ok {
		t.Fatalf("Expected ProjectCreatedEvent, got %T", received)
	}
	if created.Path != "/tmp/foo" {
		t.Errorf("Expected path /tmp/foo, got %q", created.Path)
	}
}

func TestBus_PublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe("other.event", func(e Event) {
		t.Error("Handler should not be called for non-matching event type")
	})

	bus.Publish(newBaseEvent("test.event"))
}

func TestBus_SubscribeAllOrdering(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) {
		order = append(order, "wildcard:"+e.EventType())
	})
	bus.Subscribe("event.one", func(e Event) {
		order = append(order, "specific:"+e.EventType())
	})

	bus.Publish(newBaseEvent("event.one"))
	bus.Publish(newBaseEvent("event.two"))

	expected := []string{"specific:event.one", "wildcard:event.one", "wildcard:event.two"}
	if len(order) != len(expected) {
		t.Fatalf("Expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("call %d = %q, want %q", i, order[i], expected[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := make(map[string]int)
	id1 := bus.Subscribe("test.event", func(e Event) { calls["handler1"]++ })
	bus.Subscribe("test.event", func(e Event) { calls["handler2"]++ })

	if !bus.Unsubscribe(id1) {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if bus.Unsubscribe(id1) {
		t.Error("Unsubscribe should return false for a removed ID")
	}

	bus.Publish(newBaseEvent("test.event"))

	if calls["handler1"] != 0 {
		t.Error("handler1 should not be called after unsubscribing")
	}
	if calls["handler2"] != 1 {
		t.Error("handler2 should still be called")
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	var logs bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&logs, logging.LevelError))

	calls := 0
	bus.Subscribe("test.event", func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe("test.event", func(e Event) {
		calls++
	})

	bus.Publish(newBaseEvent("test.event"))

	if calls != 2 {
		t.Errorf("Expected both handlers to be called despite panic, got %d calls", calls)
	}
	if !strings.Contains(logs.String(), "handler panic") {
		t.Errorf("expected panic to be logged, got %q", logs.String())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.Subscribe(TypeConsole, func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(NewConsoleEvent("s", "x", ChannelStdout, StylePlain, uint64(j+1)))
			}
		}()
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("Expected 1000 deliveries, got %d", count)
	}
}

func TestChannelAndStyleString(t *testing.T) {
	if ChannelStderr.String() != "stderr" || ChannelStdout.String() != "stdout" || ChannelEngine.String() != "engine" {
		t.Error("unexpected channel names")
	}
	if StyleSuccess.String() != "success" || StyleError.String() != "error" || Style(42).String() != "unknown" {
		t.Error("unexpected style names")
	}
}

func TestCommandFinishedEvent_Success(t *testing.T) {
	ok := NewCommandFinishedEvent("s", "build", 0, 0, false, nil)
	if !ok.Success() {
		t.Error("expected Success() for nil error")
	}
	if ok.EventType() != TypeCommandFinished {
		t.Errorf("EventType() = %q, want %q", ok.EventType(), TypeCommandFinished)
	}
	if ok.Timestamp().IsZero() {
		t.Error("expected timestamp to be set")
	}
}
