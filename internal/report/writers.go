package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

const defaultBufSize = 64 * 1024 // 64KB

// stdoutWriter streams NDJSON records to standard output.
type stdoutWriter struct {
	enc *json.Encoder
}

func newStdout() *stdoutWriter {
	return &stdoutWriter{enc: json.NewEncoder(os.Stdout)}
}

func (w *stdoutWriter) WritePrediction(p Prediction) error {
	if err := w.enc.Encode(p); err != nil {
		return fmt.Errorf("report: stdout: %w", err)
	}
	return nil
}

func (w *stdoutWriter) WriteSummary(s Summary) error {
	s.Record = "summary"
	if err := w.enc.Encode(s); err != nil {
		return fmt.Errorf("report: stdout: %w", err)
	}
	return nil
}

func (w *stdoutWriter) Close() error { return nil }

// fileWriter writes NDJSON to a file with buffered I/O.
type fileWriter struct {
	mu  sync.Mutex
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

func newFile(path string) (*fileWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	bw := bufio.NewWriterSize(f, defaultBufSize)
	return &fileWriter{f: f, w: bw, enc: json.NewEncoder(bw)}, nil
}

func (w *fileWriter) WritePrediction(p Prediction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(p); err != nil {
		return fmt.Errorf("report: file: %w", err)
	}
	return nil
}

func (w *fileWriter) WriteSummary(s Summary) error {
	s.Record = "summary"
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(s); err != nil {
		return fmt.Errorf("report: file: %w", err)
	}
	return nil
}

func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("report: flush: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("report: close: %w", err)
	}
	return nil
}
