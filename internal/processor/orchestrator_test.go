package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ytlens/sponsorlens/internal/cache"
	"github.com/ytlens/sponsorlens/internal/classifier"
	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
)

type countingProvider struct {
	reply string
	err   error
	calls int
}

func (c *countingProvider) Complete(_ context.Context, _ string) (string, error) {
	c.calls++
	return c.reply, c.err
}

func newTestOrchestrator(provider classifier.Provider) *Orchestrator {
	log := logger.NewNop()
	heuristic := classifier.NewHeuristic(log)
	var ai *classifier.AI
	if provider != nil {
		ai = classifier.NewAI(provider, cache.NewMemory(), nil, log)
	}
	return NewOrchestrator(heuristic, ai, NewRateLimiter(time.Millisecond, log), nil, log)
}

func rawItems(texts ...string) []domain.RawItem {
	items := make([]domain.RawItem, len(texts))
	for i, text := range texts {
		items[i] = domain.RawItem{
			ID:   string(rune('a' + i)),
			Kind: domain.KindComment,
			Text: text,
		}
	}
	return items
}

func drain(t *testing.T, snapshots <-chan Snapshot) []Snapshot {
	t.Helper()
	var all []Snapshot
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return all
			}
			all = append(all, snap)
		case <-deadline:
			t.Fatal("snapshot channel never closed")
		}
	}
}

func TestRun_HeuristicBatch(t *testing.T) {
	o := newTestOrchestrator(nil)
	items := rawItems(
		"this video is sponsored by Acme",
		"great video, loved it",
		"use code SAVE10 at checkout",
	)

	snapshots, err := o.Run(context.Background(), items, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all := drain(t, snapshots)

	if len(all) != 3 {
		t.Fatalf("got %d snapshots, want one per item", len(all))
	}
	final := all[len(all)-1]
	if !final.Done || final.Completed != 3 || final.Total != 3 {
		t.Errorf("final snapshot = %+v", final)
	}
	if !final.Items[0].Sponsored || final.Items[1].Sponsored || !final.Items[2].Sponsored {
		t.Errorf("verdicts = [%v %v %v], want [true false true]",
			final.Items[0].Sponsored, final.Items[1].Sponsored, final.Items[2].Sponsored)
	}
	for i, item := range final.Items {
		if !item.Classified {
			t.Errorf("item %d not marked classified", i)
		}
		if item.Method != domain.MethodHeuristic {
			t.Errorf("item %d method = %q", i, item.Method)
		}
	}
}

func TestRun_SnapshotsArePrefixConsistent(t *testing.T) {
	o := newTestOrchestrator(nil)
	items := rawItems("#ad content", "plain", "برعاية شركة", "plain again")

	snapshots, err := o.Run(context.Background(), items, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all := drain(t, snapshots)

	prev := 0
	for n, snap := range all {
		if snap.Completed < prev {
			t.Fatalf("snapshot %d: Completed went backwards (%d -> %d)", n, prev, snap.Completed)
		}
		prev = snap.Completed
		for i := 0; i < snap.Completed; i++ {
			if !snap.Items[i].Classified {
				t.Errorf("snapshot %d: item %d within completed prefix is unclassified", n, i)
			}
		}
		for i := snap.Completed; i < len(snap.Items); i++ {
			if snap.Items[i].Classified {
				t.Errorf("snapshot %d: item %d beyond completed prefix is classified", n, i)
			}
		}
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	o := newTestOrchestrator(nil)

	snapshots, err := o.Run(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all := drain(t, snapshots)

	if len(all) != 1 {
		t.Fatalf("got %d snapshots, want a single done snapshot", len(all))
	}
	if !all[0].Done || all[0].Total != 0 || len(all[0].Items) != 0 {
		t.Errorf("empty-batch snapshot = %+v", all[0])
	}
}

func TestAIAvailable(t *testing.T) {
	if newTestOrchestrator(nil).AIAvailable() {
		t.Error("AIAvailable true without a provider")
	}
	if !newTestOrchestrator(&countingProvider{}).AIAvailable() {
		t.Error("AIAvailable false with a provider configured")
	}
}

func TestRun_AIWithoutProviderFailsUpFront(t *testing.T) {
	o := newTestOrchestrator(nil)

	snapshots, err := o.Run(context.Background(), rawItems("text"), true)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if snapshots != nil {
		t.Error("snapshot channel returned alongside an error")
	}
}

func TestRun_AIBatchUsesProvider(t *testing.T) {
	provider := &countingProvider{reply: "Not sponsored."}
	o := newTestOrchestrator(provider)
	items := rawItems("first comment", "second comment")

	snapshots, err := o.Run(context.Background(), items, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all := drain(t, snapshots)

	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
	final := all[len(all)-1]
	for i, item := range final.Items {
		if item.Method != domain.MethodAI {
			t.Errorf("item %d method = %q", i, item.Method)
		}
	}
}

func TestRun_HeuristicBatchNeverCallsProvider(t *testing.T) {
	provider := &countingProvider{reply: "Not sponsored."}
	o := newTestOrchestrator(provider)

	snapshots, err := o.Run(context.Background(), rawItems("#ad", "plain"), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	drain(t, snapshots)

	if provider.calls != 0 {
		t.Errorf("provider calls = %d during a heuristic batch", provider.calls)
	}
}

func TestRun_PerItemProviderFailureDoesNotAbort(t *testing.T) {
	provider := &countingProvider{err: errors.New("upstream down")}
	o := newTestOrchestrator(provider)
	items := rawItems("first", "second", "third")

	snapshots, err := o.Run(context.Background(), items, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all := drain(t, snapshots)

	final := all[len(all)-1]
	if !final.Done || final.Completed != 3 {
		t.Fatalf("final snapshot = %+v, want all items finalized", final)
	}
	for i, item := range final.Items {
		if item.AnalysisError == "" {
			t.Errorf("item %d missing analysis error", i)
		}
		if item.Sponsored {
			t.Errorf("item %d sponsored despite provider failure", i)
		}
	}
}

func TestRun_CancellationLeavesPartialResults(t *testing.T) {
	o := newTestOrchestrator(nil)
	items := rawItems("#ad one", "two", "three", "four")

	ctx, cancel := context.WithCancel(context.Background())
	snapshots, err := o.Run(ctx, items, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Take the first snapshot, then cancel before the batch drains.
	first := <-snapshots
	cancel()
	rest := drain(t, snapshots)

	if first.Completed != 1 {
		t.Fatalf("first snapshot Completed = %d", first.Completed)
	}
	if !first.Items[0].Classified {
		t.Error("finalized item lost on cancellation")
	}
	all := append([]Snapshot{first}, rest...)
	last := all[len(all)-1]
	if last.Completed > len(items) {
		t.Errorf("Completed = %d exceeds total", last.Completed)
	}
}
