package workdir

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestFollowerDeliversRecordsAndStopsAtFinal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	w, err := CreateSyncLog(path)
	if err != nil {
		t.Fatalf("CreateSyncLog: %v", err)
	}
	w.Init(InitRecord{PID: 1})
	w.Progress(ProgressRecord{Phase: "install"})
	w.Final(FinalRecord{Status: "ok"})
	w.Close()

	var kinds []SyncLogKind
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f := NewFollower(path)
	err = f.Follow(ctx, func(rec SyncLogRecord) error {
		kinds = append(kinds, rec.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if len(kinds) != 3 || kinds[0] != KindInit || kinds[1] != KindProgress || kinds[2] != KindFinal {
		t.Fatalf("got %v", kinds)
	}
}

func TestFollowerRespectsContextCancellationWithoutFinal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	w, err := CreateSyncLog(path)
	if err != nil {
		t.Fatalf("CreateSyncLog: %v", err)
	}
	w.Init(InitRecord{PID: 1})
	w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	f := NewFollower(path)
	err = f.Follow(ctx, func(rec SyncLogRecord) error { return nil })
	if err == nil {
		t.Fatalf("expected Follow to return an error when context expires before a final record")
	}
}
