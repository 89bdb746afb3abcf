package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

type capturingPersister struct {
	mu        sync.Mutex
	snapshots [][]Record
	err       error
}

func (c *capturingPersister) Save(_ context.Context, records []Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]Record, len(records))
	copy(snapshot, records)
	c.snapshots = append(c.snapshots, snapshot)
	return c.err
}

func (c *capturingPersister) last() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshots) == 0 {
		return nil
	}
	return c.snapshots[len(c.snapshots)-1]
}

func record(path string) Record {
	return Record{Path: path, Filename: path, Format: "SDR"}
}

func TestUpsertPersistsFullSnapshot(t *testing.T) {
	persister := &capturingPersister{}
	reg := New(persister, nil)

	reg.Upsert(context.Background(), record("/media/a.mkv"))
	reg.Upsert(context.Background(), record("/media/b.mkv"))

	if !reg.Contains("/media/a.mkv") || !reg.Contains("/media/b.mkv") {
		t.Fatal("paths missing after upsert")
	}
	last := persister.last()
	if len(last) != 2 {
		t.Fatalf("snapshot size = %d", len(last))
	}
	if last[0].Path != "/media/a.mkv" || last[1].Path != "/media/b.mkv" {
		t.Fatalf("snapshot order = %v", last)
	}
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	persister := &capturingPersister{err: errors.New("disk full")}
	reg := New(persister, nil)

	reg.Upsert(context.Background(), record("/media/a.mkv"))
	if !reg.Contains("/media/a.mkv") {
		t.Fatal("mutation must stand when persistence fails")
	}
}

func TestRemoveRunsHookBeforeDrop(t *testing.T) {
	persister := &capturingPersister{}
	reg := New(persister, nil)
	reg.Upsert(context.Background(), record("/media/a.mkv"))

	var hookRecord Record
	var presentDuringHook bool
	reg.SetDeleteHook(func(rec Record) {
		hookRecord = rec
		// The hook fires before the entry is dropped; the record map still
		// holds the path at this point.
		_, presentDuringHook = reg.records[rec.Path]
	})

	if !reg.Remove(context.Background(), "/media/a.mkv") {
		t.Fatal("expected removal to report success")
	}
	if hookRecord.Path != "/media/a.mkv" || !presentDuringHook {
		t.Fatalf("hook saw %+v present=%v", hookRecord, presentDuringHook)
	}
	if reg.Contains("/media/a.mkv") {
		t.Fatal("path still recorded after removal")
	}
	if len(persister.last()) != 0 {
		t.Fatalf("snapshot after removal = %v", persister.last())
	}
}

func TestRemoveAbsentPathIsNoOp(t *testing.T) {
	persister := &capturingPersister{}
	reg := New(persister, nil)
	hookRan := false
	reg.SetDeleteHook(func(Record) { hookRan = true })

	if reg.Remove(context.Background(), "/media/missing.mkv") {
		t.Fatal("removal of an absent path must report false")
	}
	if hookRan {
		t.Fatal("hook must not run for absent paths")
	}
	if len(persister.snapshots) != 0 {
		t.Fatal("no snapshot should be persisted for a no-op removal")
	}
}

func TestLoadReplacesState(t *testing.T) {
	reg := New(nil, nil)
	reg.Upsert(context.Background(), record("/media/old.mkv"))

	reg.Load([]Record{record("/media/x.mkv"), record("/media/y.mkv")})
	if reg.Contains("/media/old.mkv") {
		t.Fatal("load must replace prior state")
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d", reg.Len())
	}
	paths := reg.Paths()
	if len(paths) != 2 || paths[0] != "/media/x.mkv" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestConcurrentMutations(t *testing.T) {
	reg := New(&capturingPersister{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/media/%d.mkv", i)
			reg.Upsert(context.Background(), record(path))
			if i%2 == 0 {
				reg.Remove(context.Background(), path)
			}
		}(i)
	}
	wg.Wait()

	if reg.Len() != 8 {
		t.Fatalf("len = %d", reg.Len())
	}
	for _, rec := range reg.Snapshot() {
		if rec.Format != "SDR" {
			t.Fatalf("unexpected record %+v", rec)
		}
	}
}

func TestConcurrentRemoveIdempotent(t *testing.T) {
	reg := New(&capturingPersister{}, nil)
	reg.Upsert(context.Background(), record("/media/a.mkv"))

	var removed int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.Remove(context.Background(), "/media/a.mkv") {
				mu.Lock()
				removed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if removed != 1 {
		t.Fatalf("removal succeeded %d times, want exactly once", removed)
	}
}
