package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"uptime-monitor/internal/model"
)

func newTestPipeline(t *testing.T, store *fakeStore, pub *fakePublisher, threshold int) (*Pipeline, *Registry) {
	t.Helper()
	registry := NewRegistry()
	target := alertTarget(threshold)
	install(registry, target)

	evaluator := NewEvaluator(store, 300*time.Second, false, testLogger())
	return NewPipeline(registry, store, evaluator, pub, testLogger()), registry
}

func TestPipeline_PersistsAndEvaluates(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	p, _ := newTestPipeline(t, store, pub, 1)

	p.handle(context.Background(), okAt(0))
	if store.sampleCount() != 1 {
		t.Errorf("expected 1 persisted sample, got %d", store.sampleCount())
	}
	if pub.count() != 0 {
		t.Errorf("success sample must not publish events, got %d", pub.count())
	}

	p.handle(context.Background(), failAt(60))
	if store.sampleCount() != 2 {
		t.Errorf("expected 2 persisted samples, got %d", store.sampleCount())
	}
	if pub.count() != 1 {
		t.Fatalf("expected 1 published event, got %d", pub.count())
	}
	if pub.last().Kind != model.EventOpen {
		t.Errorf("expected open event, got %s", pub.last().Kind)
	}
}

func TestPipeline_DiscardsResultForRemovedMonitor(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	p, registry := newTestPipeline(t, store, pub, 1)

	registry.Remove(1)
	p.handle(context.Background(), failAt(0))

	if store.sampleCount() != 0 {
		t.Errorf("result for a removed monitor must be discarded, got %d samples", store.sampleCount())
	}
	if pub.count() != 0 {
		t.Errorf("discarded result must not produce events, got %d", pub.count())
	}
}

func TestPipeline_PersistFailureDoesNotBlockEvaluation(t *testing.T) {
	store := newFakeStore()
	store.appendErr = errors.New("db down")
	pub := &fakePublisher{}
	p, _ := newTestPipeline(t, store, pub, 1)

	p.handle(context.Background(), failAt(0))

	if pub.count() != 1 {
		t.Errorf("evaluation must run despite the persistence failure, got %d events", pub.count())
	}
}

func TestPipeline_RunConsumesInOrder(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	p, _ := newTestPipeline(t, store, pub, 3)

	results := make(chan *model.MetricSample, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, results) }()

	results <- failAt(0)
	results <- failAt(60)
	results <- failAt(120)

	waitFor(t, 2*time.Second, "samples consumed", func() bool { return store.sampleCount() == 3 })

	store.mu.Lock()
	for i, want := range []int{0, 60, 120} {
		if !store.samples[i].CheckedAt.Equal(at(want)) {
			t.Errorf("sample %d handled out of order: %v", i, store.samples[i].CheckedAt)
		}
	}
	store.mu.Unlock()

	// Three consecutive failures crossed the threshold exactly once
	if pub.count() != 1 {
		t.Errorf("expected 1 event, got %d", pub.count())
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline did not stop after cancel")
	}
}

func TestPipeline_NilPublisherDefaultsToNop(t *testing.T) {
	store := newFakeStore()
	registry := NewRegistry()
	install(registry, alertTarget(1))
	evaluator := NewEvaluator(store, 300*time.Second, false, testLogger())

	p := NewPipeline(registry, store, evaluator, nil, testLogger())
	// Must not panic when an event is produced with no publisher wired
	p.handle(context.Background(), failAt(0))

	if store.openedCount() != 1 {
		t.Errorf("expected the alert record to be created, got %d", store.openedCount())
	}
}
