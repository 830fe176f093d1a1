package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Reader 读取操作日志目录
type Reader struct {
	baseDir string
}

// NewReader 创建读取器
func NewReader(baseDir string) *Reader {
	return &Reader{baseDir: baseDir}
}

// files 返回 dir 下所有日志文件，按时间顺序
func (r *Reader) files(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() && strings.HasPrefix(d.Name(), "journal-") && strings.HasSuffix(d.Name(), ".log") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func readFile(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []*Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		entries = append(entries, &e)
	}
	return entries, scanner.Err()
}

// ReadDay 读取某一天的全部日志
func (r *Reader) ReadDay(day time.Time) ([]*Entry, error) {
	files, err := r.files(filepath.Join(r.baseDir, dayDir(day)))
	if err != nil {
		return nil, err
	}
	var entries []*Entry
	for _, path := range files {
		es, err := readFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	return entries, nil
}

// ReadAll 读取目录下的全部日志
func (r *Reader) ReadAll() ([]*Entry, error) {
	files, err := r.files(r.baseDir)
	if err != nil {
		return nil, err
	}
	var entries []*Entry
	for _, path := range files {
		es, err := readFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	return entries, nil
}

// LastEntry 最新的一条日志，目录为空时返回 nil
func (r *Reader) LastEntry() (*Entry, error) {
	files, err := r.files(r.baseDir)
	if err != nil {
		return nil, err
	}
	for i := len(files) - 1; i >= 0; i-- {
		es, err := readFile(files[i])
		if err != nil {
			return nil, err
		}
		if len(es) > 0 {
			return es[len(es)-1], nil
		}
	}
	return nil, nil
}

// Filter 按机器人过滤
func Filter(entries []*Entry, robotID int64) []*Entry {
	if robotID == 0 {
		return entries
	}
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e.RobotID == robotID {
			out = append(out, e)
		}
	}
	return out
}
