package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled config produced a live dispatcher")
	}

	// Nil receiver must be safe on every method.
	d.Emit(context.Background(), Event{Kind: "x"})
	d.Close()
	if d.Dropped() != 0 {
		t.Error("nil dispatcher reports drops")
	}
}

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), Event{Kind: "login_success", ActorID: "acct-1"})

	select {
	case event := <-sink.Events():
		if event.Kind != "login_success" || event.ActorID != "acct-1" {
			t.Errorf("unexpected event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached sink")
	}

	d.Close()
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(16)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{Kind: "e"})
	}
	d.Close()

	for i := 0; i < 5; i++ {
		select {
		case <-sink.Events():
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 5 buffered events delivered after Close", i)
		}
	}

	// Emit after Close is a silent no-op.
	d.Emit(context.Background(), Event{Kind: "late"})
}

// blockingSink parks in Emit until released, keeping the dispatcher's run
// loop busy so the channel can fill.
type blockingSink struct {
	release chan struct{}
	once    sync.Once
}

func (s *blockingSink) Emit(context.Context, Event) {
	<-s.release
}

func (s *blockingSink) Release() {
	s.once.Do(func() { close(s.release) })
}

func TestDispatcherDropsUnderBackpressure(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the run loop, second fills the buffer; give the
	// goroutine a moment to pick up the first.
	d.Emit(context.Background(), Event{Kind: "a"})
	deadline := time.Now().Add(2 * time.Second)
	for d.Dropped() == 0 {
		d.Emit(context.Background(), Event{Kind: "b"})
		if time.Now().After(deadline) {
			t.Fatal("no drops recorded under backpressure")
		}
	}

	sink.Release()
	d.Close()
}

func TestJSONWriterSinkOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{Kind: "first", Success: true})
	sink.Emit(context.Background(), Event{Kind: "second"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2: %q", len(lines), buf.String())
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not valid JSON: %v", err)
	}
	if first.Kind != "first" || !first.Success {
		t.Errorf("decoded event = %+v", first)
	}
}

func TestChannelSinkRespectsContext(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Emit(context.Background(), Event{Kind: "fills-buffer"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		sink.Emit(ctx, Event{Kind: "blocked"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked despite cancelled context")
	}
}
