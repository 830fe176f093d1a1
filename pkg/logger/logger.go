package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level 日志级别
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelTags = map[Level]string{
	LevelDebug: "[DEBUG]",
	LevelInfo:  "[INFO]",
	LevelWarn:  "[WARN]",
	LevelError: "[ERROR]",
	LevelFatal: "[FATAL]",
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlue),
	LevelInfo:  color.New(color.FgHiCyan),
	LevelWarn:  color.New(color.FgHiYellow),
	LevelError: color.New(color.FgHiRed),
	LevelFatal: color.New(color.FgHiRed, color.Bold),
}

type rule struct {
	pattern string
	color   *color.Color
}

// 高亮规则，按顺序匹配
var highlightRules = []rule{
	{`(?i)(error|exception|panic)`, color.New(color.FgHiRed)},
	{`(?i)(failed|fail|expired)`, color.New(color.FgRed)},

	// 机器人与动作
	{`\brobot=\d+\b`, color.New(color.FgHiMagenta)},
	{`\baction=[a-z_]+\b`, color.New(color.FgHiGreen)},

	{`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(?::\d+)?`, color.New(color.FgHiBlue)},
	{`(?i)\b(GET|POST|PUT|DELETE|PATCH)\b`, color.New(color.FgBlue)},
	{`/v1/robot/[a-z_]+`, color.New(color.FgBlue)},
	{`\b([45]\d{2})\b`, color.New(color.FgHiRed)},
	{`\b(2\d{2})\b`, color.New(color.FgHiGreen)},
	{`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`, color.New(color.FgHiBlue)},
	{`\b(true|false)\b`, color.New(color.FgHiCyan)},
	{`(?i)\b(success|succeeded|connected|started|restarted)\b`, color.New(color.FgHiCyan)},
	{`(?i)\b(warning|warn|busy)\b`, color.New(color.FgHiYellow)},
	{`\[(.*?)\]`, color.New(color.FgBlue)},
}

var (
	combinedRegex *regexp.Regexp
	colorMap      []*color.Color

	mu       sync.Mutex
	minLevel = LevelInfo
	out      io.Writer = os.Stdout
	exit               = os.Exit
)

var builderPool = sync.Pool{
	New: func() interface{} {
		return new(strings.Builder)
	},
}

func init() {
	var sb strings.Builder
	colorMap = make([]*color.Color, 0, len(highlightRules))
	for i, r := range highlightRules {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString("(")
		sb.WriteString(r.pattern)
		sb.WriteString(")")
		colorMap = append(colorMap, r.color)
	}
	combinedRegex = regexp.MustCompile(sb.String())

	// gin 与第三方库走标准库 log 时也经过同一个输出
	log.SetOutput(&stdWriter{})
	log.SetFlags(0)
}

// SetLevel 设置最低输出级别
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// ParseLevel 解析配置中的级别名称，未知名称返回 LevelInfo
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetOutput 替换输出目标，返回原目标
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

type stdWriter struct{}

func (stdWriter) Write(p []byte) (int, error) {
	emit(LevelInfo, 4, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func emit(level Level, depth int, msg string) {
	mu.Lock()
	if level < minLevel {
		mu.Unlock()
		return
	}
	w := out
	mu.Unlock()

	_, file, line, ok := runtime.Caller(depth)
	if !ok {
		file = "???"
		line = 0
	}

	sb := builderPool.Get().(*strings.Builder)
	defer builderPool.Put(sb)
	sb.Reset()

	prefix := fmt.Sprintf("%s %s:%d", time.Now().Format("2006/01/02 15:04:05.000"), filepath.Base(file), line)
	sb.WriteString(color.New(color.FgHiBlue).Sprint(prefix))
	sb.WriteByte(' ')
	sb.WriteString(levelColors[level].Sprint(levelTags[level]))
	sb.WriteByte(' ')
	sb.WriteString(highlight(strings.TrimSpace(msg)))
	sb.WriteByte('\n')

	_, _ = io.WriteString(w, sb.String())
}

// highlight 一次性匹配所有规则，再按区间着色
func highlight(msg string) string {
	matches := combinedRegex.FindAllStringSubmatchIndex(msg, -1)
	if len(matches) == 0 {
		return msg
	}

	type interval struct {
		start, end int
		color      *color.Color
	}
	var intervals []interval
	for _, m := range matches {
		groups := len(m)/2 - 1
		for i := 0; i < groups && i < len(colorMap); i++ {
			s, e := m[2+2*i], m[3+2*i]
			if s >= 0 && e >= 0 && e <= len(msg) {
				intervals = append(intervals, interval{start: s, end: e, color: colorMap[i]})
				break
			}
		}
	}
	if len(intervals) == 0 {
		return msg
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })

	var b strings.Builder
	b.Grow(len(msg))
	cur := 0
	for _, iv := range intervals {
		if iv.start < cur {
			continue
		}
		b.WriteString(msg[cur:iv.start])
		b.WriteString(iv.color.Sprint(msg[iv.start:iv.end]))
		cur = iv.end
	}
	b.WriteString(msg[cur:])
	return b.String()
}

func Debug(format string, v ...interface{}) {
	emit(LevelDebug, 2, fmt.Sprintf(format, v...))
}

func Info(format string, v ...interface{}) {
	emit(LevelInfo, 2, fmt.Sprintf(format, v...))
}

func Warn(format string, v ...interface{}) {
	emit(LevelWarn, 2, fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	emit(LevelError, 2, fmt.Sprintf(format, v...))
}

func Fatal(format string, v ...interface{}) {
	emit(LevelFatal, 2, fmt.Sprintf(format, v...))
	exit(1)
}
