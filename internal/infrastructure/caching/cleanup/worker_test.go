package cleanup

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/manager"
)

func TestRunOnceRemovesIdleOwners(t *testing.T) {
	m := manager.NewManagerWithTTL(time.Hour, time.Hour, nil)
	m.SetItem("idle", &wardrobe.Item{ID: "a"})
	m.SetItem("busy", &wardrobe.Item{ID: "b"})
	m.Mu.Lock()
	m.LastAccessed["idle"] = time.Now().Add(-3 * time.Hour)
	m.Mu.Unlock()

	w := NewWorker(m, &Config{CleanupInterval: time.Minute, OwnerIdleTimeout: time.Hour}, nil)
	items, owners := w.RunOnce(context.Background())

	assert.Zero(t, items)
	assert.Equal(t, 1, owners)
	assert.Equal(t, []string{"busy"}, m.GetAllOwnerIDs())
}

func TestVerboseReport(t *testing.T) {
	m := manager.NewManagerWithTTL(time.Hour, time.Hour, nil)
	m.SetItem("owner-1", &wardrobe.Item{ID: "a"})

	var buf bytes.Buffer
	w := NewWorker(m, &Config{CleanupInterval: time.Minute, VerboseReporting: true}, nil)
	w.reporter.SetOutput(&buf)
	w.RunOnce(context.Background())

	out := buf.String()
	assert.Contains(t, out, "PERIODIC CACHE CLEANUP")
	assert.Contains(t, out, "owner-1")
	assert.Contains(t, out, "NOT LOADED")
}

func TestStartStopsOnCancel(t *testing.T) {
	m := manager.NewManagerWithTTL(time.Hour, time.Hour, nil)
	w := NewWorker(m, &Config{CleanupInterval: time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
