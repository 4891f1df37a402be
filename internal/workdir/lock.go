package workdir

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"lukechampine.com/blake3"

	"github.com/wrkdir/omni/internal/errs"
	"github.com/wrkdir/omni/internal/logging"
	"github.com/wrkdir/omni/internal/settings"
	"github.com/wrkdir/omni/internal/xdg"
)

// lockSalt is an arbitrary fixed salt mixed into the lock key so it does
// not collide with any other blake3 usage keyed on the same inputs.
var lockSalt = []byte{0x1F, 0x8B, 0x08, 0x00}

// LockKey computes hex(blake3(id ‖ salt ‖ root)), the lock file basename
// used to serialize `up` per (id, root), per spec.md §4.5 "Update lock".
func LockKey(id, root string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(id))
	h.Write(lockSalt)
	h.Write([]byte(root))
	return hex.EncodeToString(h.Sum(nil))
}

// Lock is an exclusive per-(id,root) update lock with an attached sync log.
type Lock struct {
	flock   *flock.Flock
	logPath string
}

// lockDir is <tmpdir>/up.
func lockDir() string {
	return filepath.Join(xdg.TmpDir(), "up")
}

// lockPath returns <tmpdir>/up/<lock_key>.
func lockPath(key string) string {
	return filepath.Join(lockDir(), key)
}

// logPath returns the sync log path sitting beside the lock file.
func logPath(key string) string {
	return filepath.Join(lockDir(), key+".log")
}

// Acquire tries a non-blocking exclusive lock on (id, root). If another
// process already holds it, the caller should Follow() the existing sync
// log instead. ok is false (with a nil error) when the lock is held
// elsewhere; err is non-nil only for unexpected I/O failures.
func Acquire(id, root string) (*Lock, bool, error) {
	if err := xdg.EnsureDir(lockDir()); err != nil {
		return nil, false, errs.New(errs.IoError, fmt.Sprintf("creating lock directory: %v", err))
	}
	key := LockKey(id, root)
	f := flock.New(lockPath(key))
	locked, err := f.TryLock()
	if err != nil {
		return nil, false, errs.New(errs.IoError, fmt.Sprintf("acquiring update lock: %v", err))
	}
	if !locked {
		return nil, false, nil
	}
	return &Lock{flock: f, logPath: logPath(key)}, true, nil
}

// Release unlocks and removes the sync log. Locks are also released
// automatically on process exit per §5 "Cancellation", so Release is a
// courtesy for the clean-exit path, not the only release mechanism.
func (l *Lock) Release() error {
	err := l.flock.Unlock()
	_ = os.Remove(l.logPath)
	if err != nil {
		return errs.New(errs.IoError, fmt.Sprintf("releasing update lock: %v", err))
	}
	return nil
}

// WaitOrPreempt acquires the update lock for (id, root), attaching to a
// conflicting run already in progress instead of blocking blindly, per
// spec.md §4.5 "Update lock". If the running operation's kind (read from
// the sync log's init record) matches operation, it waits for that run to
// finish and reports alreadyDone=true so the caller does not redo the
// work. If the kinds differ, it preempts the holder by killing its
// recorded PID and retries. Either path gives up with an errs.Timeout
// error once settings.AttachLockTimeout() elapses.
func WaitOrPreempt(id, root, operation string) (*Lock, bool, error) {
	deadline := time.Now().Add(settings.AttachLockTimeout())
	path := SyncLogPath(id, root)

	for {
		l, ok, err := Acquire(id, root)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return l, false, nil
		}

		if init, ok := readInitRecord(path); ok {
			if init.Operation == operation {
				if waitForFinal(path, deadline) {
					return nil, true, nil
				}
			} else {
				preemptHolder(init)
			}
		}

		if time.Now().After(deadline) {
			return nil, false, errs.New(errs.Timeout, fmt.Sprintf("timed out waiting for update lock on %s", root))
		}
		time.Sleep(settings.FollowPollInterval())
	}
}

// readInitRecord reads the leading init record off a sync log without
// following it, so a waiter can inspect who holds the lock and for what.
func readInitRecord(path string) (InitRecord, bool) {
	f, err := os.Open(path)
	if err != nil {
		return InitRecord{}, false
	}
	defer f.Close()

	rec, err := ReadSyncLogRecord(bufio.NewReader(f))
	if err != nil || rec.Kind != KindInit {
		return InitRecord{}, false
	}
	var init InitRecord
	if err := json.Unmarshal(rec.Raw, &init); err != nil {
		return InitRecord{}, false
	}
	return init, true
}

// waitForFinal follows the sync log at path until a FinalRecord appears or
// deadline passes, returning whether it saw the final record in time.
func waitForFinal(path string, deadline time.Time) bool {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	err := NewFollower(path).Follow(ctx, func(SyncLogRecord) error { return nil })
	return err == nil
}

// preemptHolder terminates the process that opened init's sync log, so the
// caller's own Acquire retry can take the lock instead of waiting out a
// run for a different operation.
func preemptHolder(init InitRecord) {
	if init.PID <= 0 {
		return
	}
	proc, err := os.FindProcess(init.PID)
	if err != nil {
		return
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		logging.Debugf("preempt: signaling pid %d: %v", init.PID, err)
	}
}

// LogPath exposes the sync log path for this lock's (id, root), for a
// follower attaching to the run this lock guards.
func (l *Lock) LogPath() string { return l.logPath }

// SyncLogPath returns the sync log path for (id, root) without acquiring
// the lock, for a waiter that wants to tail an in-progress run.
func SyncLogPath(id, root string) string {
	return logPath(LockKey(id, root))
}
