package workdir

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestSyncLogWriteAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	w, err := CreateSyncLog(path)
	if err != nil {
		t.Fatalf("CreateSyncLog: %v", err)
	}
	if err := w.Init(InitRecord{PID: 123, StartedAt: 1000, WorkdirID: "calm-amber-otter:abc"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := w.Progress(ProgressRecord{TS: 1001, Phase: "install", Message: "installing go"}); err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if err := w.Final(FinalRecord{Status: "ok", Duration: 42}); err != nil {
		t.Fatalf("Final: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	rec, err := ReadSyncLogRecord(r)
	if err != nil {
		t.Fatalf("read init: %v", err)
	}
	if rec.Kind != KindInit {
		t.Fatalf("got kind %q want init", rec.Kind)
	}
	var init InitRecord
	if err := json.Unmarshal(rec.Raw, &init); err != nil {
		t.Fatalf("unmarshal init: %v", err)
	}
	if init.PID != 123 || init.WorkdirID != "calm-amber-otter:abc" {
		t.Fatalf("got %+v", init)
	}

	rec, err = ReadSyncLogRecord(r)
	if err != nil || rec.Kind != KindProgress {
		t.Fatalf("read progress: kind=%q err=%v", rec.Kind, err)
	}

	rec, err = ReadSyncLogRecord(r)
	if err != nil || rec.Kind != KindFinal {
		t.Fatalf("read final: kind=%q err=%v", rec.Kind, err)
	}

	if _, err := ReadSyncLogRecord(r); err != io.EOF {
		t.Fatalf("expected io.EOF at end of log, got %v", err)
	}
}

func TestReadSyncLogRecordTruncatedTrailingRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	w, err := CreateSyncLog(path)
	if err != nil {
		t.Fatalf("CreateSyncLog: %v", err)
	}
	if err := w.Init(InitRecord{PID: 1}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	w.Close()

	// Append a length prefix claiming more bytes than actually follow,
	// simulating a reader racing an in-progress writer.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	f.Write([]byte{0, 0, 0, 100, 'x'})
	f.Close()

	f, err = os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	if _, err := ReadSyncLogRecord(r); err != nil {
		t.Fatalf("read init: %v", err)
	}
	if _, err := ReadSyncLogRecord(r); err != io.ErrUnexpectedEOF {
		t.Fatalf("expected io.ErrUnexpectedEOF on truncated trailing record, got %v", err)
	}
}
