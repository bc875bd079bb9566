package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxLogBytes = 5 * 1024 * 1024

// cappedFile appends to a log file and truncates it once it grows past maxBytes.
type cappedFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
	size     int64
}

func openCappedFile(dir, name string, maxBytes int64) (*cappedFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	cf := &cappedFile{path: filepath.Join(dir, name), maxBytes: maxBytes}
	if err := cf.open(); err != nil {
		return nil, err
	}
	return cf, nil
}

func (cf *cappedFile) open() error {
	f, err := os.OpenFile(cf.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	cf.file = f
	cf.size = info.Size()
	return nil
}

func (cf *cappedFile) Write(p []byte) (int, error) {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	if cf.size+int64(len(p)) > cf.maxBytes {
		if err := cf.truncate(); err != nil {
			return 0, err
		}
	}
	n, err := cf.file.Write(p)
	cf.size += int64(n)
	return n, err
}

func (cf *cappedFile) truncate() error {
	_ = cf.file.Close()
	msg := fmt.Sprintf("[%s] log truncated (exceeded %d bytes)\n", time.Now().Format(time.RFC3339), cf.maxBytes)
	if err := os.WriteFile(cf.path, []byte(msg), 0o644); err != nil {
		return err
	}
	return cf.open()
}

func (cf *cappedFile) Close() error {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	return cf.file.Close()
}
