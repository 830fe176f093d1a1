package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Writer 追加写入操作日志，按天分目录，超过大小后轮转
type Writer struct {
	mu         sync.Mutex
	baseDir    string
	chain      *HashChain
	rotateSize int64
	now        func() time.Time

	file    *os.File
	fileDay string
	size    int64
}

// WriterConfig 写入器配置
type WriterConfig struct {
	BaseDir    string
	RotateSize int64 // 字节，默认 32MB
}

// NewWriter 创建写入器，并从目录中最新的日志恢复哈希链
func NewWriter(cfg WriterConfig) (*Writer, error) {
	if cfg.RotateSize <= 0 {
		cfg.RotateSize = 32 * 1024 * 1024
	}
	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory %s: %w", cfg.BaseDir, err)
	}

	last, err := NewReader(cfg.BaseDir).LastEntry()
	if err != nil {
		return nil, fmt.Errorf("failed to resume hash chain: %w", err)
	}
	var lastHash string
	if last != nil {
		lastHash = last.Hash
	}

	return &Writer{
		baseDir:    cfg.BaseDir,
		chain:      NewHashChain(lastHash),
		rotateSize: cfg.RotateSize,
		now:        time.Now,
	}, nil
}

// Write 写入一条日志，补全 ID、时间与哈希
func (w *Writer) Write(e *Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = w.now()
	}

	file, err := w.currentFile(e.Timestamp)
	if err != nil {
		return err
	}
	if err := w.chain.Link(e); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}
	data = append(data, '\n')

	n, err := file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	w.size += int64(n)

	if w.size >= w.rotateSize {
		w.closeCurrent()
	}
	return nil
}

func (w *Writer) currentFile(t time.Time) (*os.File, error) {
	day := dayDir(t)
	if w.file != nil && w.fileDay == day {
		return w.file, nil
	}
	w.closeCurrent()

	dir := filepath.Join(w.baseDir, day)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, fileName(t))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal file %s: %w", path, err)
	}
	w.file = f
	w.fileDay = day
	w.size = 0
	return f, nil
}

func (w *Writer) closeCurrent() {
	if w.file != nil {
		w.file.Close()
		w.file = nil
		w.fileDay = ""
		w.size = 0
	}
}

// Close 关闭当前文件
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// LastHash 当前链尾哈希
func (w *Writer) LastHash() string {
	return w.chain.LastHash()
}
