package workdir

import (
	"testing"
	"time"

	"github.com/wrkdir/omni/internal/errs"
	"github.com/wrkdir/omni/internal/settings"
)

func TestLockKeyDeterministicAndDistinct(t *testing.T) {
	a := LockKey("id-a", "/root/a")
	b := LockKey("id-a", "/root/a")
	if a != b {
		t.Fatalf("expected deterministic lock key, got %q vs %q", a, b)
	}
	c := LockKey("id-b", "/root/a")
	if a == c {
		t.Fatalf("expected distinct ids to produce distinct lock keys")
	}
	d := LockKey("id-a", "/root/b")
	if a == d {
		t.Fatalf("expected distinct roots to produce distinct lock keys")
	}
}

func TestAcquireThenSecondAcquireFails(t *testing.T) {
	t.Setenv("OMNI_TMPDIR", t.TempDir())

	l, ok, err := Acquire("id-x", "/some/root")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !ok {
		t.Fatalf("expected first Acquire to succeed")
	}
	defer l.Release()

	_, ok2, err := Acquire("id-x", "/some/root")
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if ok2 {
		t.Fatalf("expected second Acquire on the same (id,root) to fail")
	}
}

func TestAcquireReleaseThenReacquireSucceeds(t *testing.T) {
	t.Setenv("OMNI_TMPDIR", t.TempDir())

	l, ok, err := Acquire("id-y", "/other/root")
	if err != nil || !ok {
		t.Fatalf("Acquire: ok=%v err=%v", ok, err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	l2, ok2, err := Acquire("id-y", "/other/root")
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if !ok2 {
		t.Fatalf("expected reacquire to succeed after release")
	}
	l2.Release()
}

func TestWaitOrPreemptFreshLockWhenUnheld(t *testing.T) {
	t.Setenv("OMNI_TMPDIR", t.TempDir())

	lock, alreadyDone, err := WaitOrPreempt("id-fresh", "/fresh/root", "up")
	if err != nil {
		t.Fatalf("WaitOrPreempt: %v", err)
	}
	if alreadyDone {
		t.Fatalf("expected a fresh lock, not alreadyDone")
	}
	if lock == nil {
		t.Fatalf("expected a non-nil lock")
	}
	lock.Release()
}

func TestWaitOrPreemptReportsAlreadyDoneOnMatchingOperation(t *testing.T) {
	t.Setenv("OMNI_TMPDIR", t.TempDir())
	settings.Override("attach_lock_timeout", time.Second)
	settings.Override("follow_poll_interval", 5*time.Millisecond)

	id, root := "id-match", "/match/root"
	held, ok, err := Acquire(id, root)
	if err != nil || !ok {
		t.Fatalf("Acquire: ok=%v err=%v", ok, err)
	}

	syncLog, err := CreateSyncLog(held.LogPath())
	if err != nil {
		t.Fatalf("CreateSyncLog: %v", err)
	}
	if err := syncLog.Init(InitRecord{PID: 1, WorkdirID: id, Operation: "up"}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		syncLog.Final(FinalRecord{Status: "ok"})
		syncLog.Close()
		held.Release()
	}()

	lock, alreadyDone, err := WaitOrPreempt(id, root, "up")
	if err != nil {
		t.Fatalf("WaitOrPreempt: %v", err)
	}
	if !alreadyDone {
		t.Fatalf("expected alreadyDone when operation kinds match")
	}
	if lock != nil {
		t.Fatalf("expected a nil lock when attaching")
	}
}

func TestWaitOrPreemptTimesOutOnMismatchedOperation(t *testing.T) {
	t.Setenv("OMNI_TMPDIR", t.TempDir())
	settings.Override("attach_lock_timeout", 30*time.Millisecond)
	settings.Override("follow_poll_interval", 5*time.Millisecond)

	id, root := "id-mismatch", "/mismatch/root"
	held, ok, err := Acquire(id, root)
	if err != nil || !ok {
		t.Fatalf("Acquire: ok=%v err=%v", ok, err)
	}
	defer held.Release()

	syncLog, err := CreateSyncLog(held.LogPath())
	if err != nil {
		t.Fatalf("CreateSyncLog: %v", err)
	}
	defer syncLog.Close()
	// A PID vanishingly unlikely to exist, so preemption is a harmless no-op
	// and the holder never releases: WaitOrPreempt must still time out.
	if err := syncLog.Init(InitRecord{PID: 1 << 30, WorkdirID: id, Operation: "down"}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, _, err = WaitOrPreempt(id, root, "up")
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	e, ok := err.(*errs.Error)
	if !ok || e.Record.Kind != errs.Timeout {
		t.Fatalf("expected errs.Timeout, got %v", err)
	}
}
