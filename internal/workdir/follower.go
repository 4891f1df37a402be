package workdir

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/wrkdir/omni/internal/settings"
)

// Follower tails a sync log, yielding records as they are appended and
// restarting its read loop after a short sleep when it hits the current
// end of file, per §9 "tail-and-follow reader ... reads incrementally
// with a short sleep loop and is restartable".
type Follower struct {
	path string
}

// NewFollower attaches to the sync log at path.
func NewFollower(path string) *Follower { return &Follower{path: path} }

// Follow reads records from the start of the log and calls onRecord for
// each, blocking and polling until ctx is cancelled or a FinalRecord is
// observed (in which case Follow returns nil after delivering it).
func (f *Follower) Follow(ctx context.Context, onRecord func(SyncLogRecord) error) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var offset int64 // end of the last complete record
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := ReadSyncLogRecord(r)
		switch {
		case err == nil:
			offset += 4 + int64(len(rec.Raw))
			if cbErr := onRecord(rec); cbErr != nil {
				return cbErr
			}
			if rec.Kind == KindFinal {
				return nil
			}
		case err == io.EOF, err == io.ErrUnexpectedEOF:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(settings.FollowPollInterval()):
			}
			// re-read a partially appended record from its start
			if _, err := file.Seek(offset, io.SeekStart); err != nil {
				return err
			}
			r.Reset(file)
		default:
			return err
		}
	}
}
