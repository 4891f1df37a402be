package workdir

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SyncLogKind distinguishes the three record shapes written to the sync
// log, per spec.md §4.5 "File layout of the sync log".
type SyncLogKind string

const (
	KindInit     SyncLogKind = "init"
	KindProgress SyncLogKind = "progress"
	KindFinal    SyncLogKind = "final"
)

// InitRecord opens a sync log: who is running it, for which workdir, and
// which operation (e.g. "up") it is running, so a waiter can tell whether
// it is blocked on its own kind of work or something else entirely.
type InitRecord struct {
	Kind      SyncLogKind `json:"kind"`
	PID       int         `json:"pid"`
	StartedAt int64       `json:"started_at"`
	WorkdirID string      `json:"workdir_id"`
	Operation string      `json:"operation"`
}

// ProgressRecord reports one phase transition during the run.
type ProgressRecord struct {
	Kind    SyncLogKind `json:"kind"`
	TS      int64       `json:"ts"`
	Phase   string      `json:"phase"`
	Message string      `json:"message"`
}

// FinalRecord closes the sync log with the run's outcome.
type FinalRecord struct {
	Kind     SyncLogKind `json:"kind"`
	Status   string      `json:"status"`
	Duration int64       `json:"duration_ms"`
}

// SyncLogWriter appends length-prefixed JSON records to a sync log file,
// tailable without rewind: a reader that has consumed N complete records
// never needs to re-read bytes before its current offset.
type SyncLogWriter struct {
	f *os.File
}

// CreateSyncLog truncates (or creates) the sync log at path for a fresh run.
func CreateSyncLog(path string) (*SyncLogWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating sync log: %w", err)
	}
	return &SyncLogWriter{f: f}, nil
}

func (w *SyncLogWriter) writeRecord(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding sync log record: %w", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.f.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("writing sync log record length: %w", err)
	}
	if _, err := w.f.Write(payload); err != nil {
		return fmt.Errorf("writing sync log record: %w", err)
	}
	return w.f.Sync()
}

func (w *SyncLogWriter) Init(r InitRecord) error {
	r.Kind = KindInit
	return w.writeRecord(r)
}

func (w *SyncLogWriter) Progress(r ProgressRecord) error {
	r.Kind = KindProgress
	return w.writeRecord(r)
}

func (w *SyncLogWriter) Final(r FinalRecord) error {
	r.Kind = KindFinal
	return w.writeRecord(r)
}

func (w *SyncLogWriter) Close() error { return w.f.Close() }

// SyncLogRecord is one decoded record of unknown shape; callers switch on
// Kind and re-unmarshal Raw into the concrete type.
type SyncLogRecord struct {
	Kind SyncLogKind
	Raw  json.RawMessage
}

// ReadSyncLogRecord reads one length-prefixed record from r. It returns
// io.EOF only when the stream ends exactly on a record boundary; a
// truncated trailing record (the writer mid-append) returns
// io.ErrUnexpectedEOF so a follower can distinguish "nothing new yet" from
// "malformed log".
func ReadSyncLogRecord(r *bufio.Reader) (SyncLogRecord, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return SyncLogRecord{}, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return SyncLogRecord{}, io.ErrUnexpectedEOF
	}
	var head struct {
		Kind SyncLogKind `json:"kind"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return SyncLogRecord{}, fmt.Errorf("decoding sync log record: %w", err)
	}
	return SyncLogRecord{Kind: head.Kind, Raw: payload}, nil
}
