package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"enriquecer/internal/amqp"
	"enriquecer/internal/core"
)

type fakeSource struct {
	mu  sync.Mutex
	txs []core.Transaction
	err error
}

func (f *fakeSource) List(context.Context) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Transaction(nil), f.txs...), f.err
}

type fakeWriter struct {
	mu     sync.Mutex
	writes [][]core.Transaction
	err    error
	notify chan struct{}
}

func (f *fakeWriter) WriteSnapshot(_ context.Context, txs []core.Transaction) error {
	f.mu.Lock()
	f.writes = append(f.writes, txs)
	err := f.err
	f.mu.Unlock()
	if f.notify != nil {
		f.notify <- struct{}{}
	}
	return err
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func TestMirrorWorker_Sync(t *testing.T) {
	src := &fakeSource{txs: []core.Transaction{{ID: "a"}, {ID: "b"}}}
	wr := &fakeWriter{}
	w := NewMirrorWorker(src, wr, time.Hour, 0)

	if err := w.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if wr.count() != 1 || len(wr.writes[0]) != 2 {
		t.Fatalf("unexpected writes %+v", wr.writes)
	}
	last, lastErr := w.Status()
	if last.IsZero() || lastErr != nil {
		t.Fatalf("unexpected status %v %v", last, lastErr)
	}
}

func TestMirrorWorker_SyncErrors(t *testing.T) {
	boom := errors.New("boom")

	w := NewMirrorWorker(&fakeSource{err: boom}, &fakeWriter{}, time.Hour, 0)
	if err := w.Sync(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}

	wr := &fakeWriter{err: boom}
	w = NewMirrorWorker(&fakeSource{}, wr, time.Hour, 0)
	if err := w.Sync(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
	if last, lastErr := w.Status(); !last.IsZero() || !errors.Is(lastErr, boom) {
		t.Fatalf("unexpected status %v %v", last, lastErr)
	}
}

func TestMirrorWorker_HandleEventNeverBlocks(t *testing.T) {
	w := NewMirrorWorker(&fakeSource{}, &fakeWriter{}, time.Hour, 0)
	ev := amqp.NewLedgerEvent(amqp.EventCreated, "a", "2024-01", 1)
	for i := 0; i < 10; i++ {
		if err := w.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("handle event: %v", err)
		}
	}
	if len(w.pending) != 1 {
		t.Fatalf("expected a single pending marker, got %d", len(w.pending))
	}
}

func TestMirrorWorker_RunSyncsOnStartupAndEvents(t *testing.T) {
	wr := &fakeWriter{notify: make(chan struct{}, 10)}
	w := NewMirrorWorker(&fakeSource{}, wr, time.Hour, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitWrite := func(what string) {
		t.Helper()
		select {
		case <-wr.notify:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s sync", what)
		}
	}
	waitWrite("startup")

	ev := amqp.NewLedgerEvent(amqp.EventDeleted, "a", "2024-01", 1)
	_ = w.HandleEvent(ctx, ev)
	_ = w.HandleEvent(ctx, ev)
	waitWrite("event")

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}
	if n := wr.count(); n != 2 {
		t.Fatalf("expected burst to collapse into one sync, got %d writes", n)
	}
}
