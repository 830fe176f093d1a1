package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func newTestWriter(t *testing.T, dir string, rotate int64) *Writer {
	t.Helper()
	w, err := NewWriter(WriterConfig{BaseDir: dir, RotateSize: rotate})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestHashChainLinksEntries(t *testing.T) {
	hc := NewHashChain("")
	a := &Entry{ID: "a", Kind: KindAction, Timestamp: day0}
	b := &Entry{ID: "b", Kind: KindNotice, Timestamp: day0.Add(time.Second)}

	require.NoError(t, hc.Link(a))
	require.NoError(t, hc.Link(b))

	assert.Empty(t, a.PrevHash)
	assert.Equal(t, a.Hash, b.PrevHash)
	assert.Equal(t, b.Hash, hc.LastHash())
	assert.Equal(t, -1, VerifyChain([]*Entry{a, b}))
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	hc := NewHashChain("")
	entries := make([]*Entry, 3)
	for i := range entries {
		entries[i] = &Entry{ID: string(rune('a' + i)), Kind: KindAction, Timestamp: day0}
		require.NoError(t, hc.Link(entries[i]))
	}

	entries[1].Status = "succeeded"
	assert.Equal(t, 1, VerifyChain(entries))

	// 删除中间条目
	assert.Equal(t, 1, VerifyChain([]*Entry{entries[0], entries[2]}))
}

func TestWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, dir, 0)

	require.NoError(t, w.Write(&Entry{Kind: KindAction, RobotID: 1, Action: "restart_client", Timestamp: day0}))
	require.NoError(t, w.Write(&Entry{Kind: KindNotice, RobotID: 2, Message: "重启客户端成功", Timestamp: day0.Add(time.Minute)}))

	entries, err := NewReader(dir).ReadDay(day0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, "restart_client", entries[0].Action)
	assert.Equal(t, -1, VerifyChain(entries))
	assert.Equal(t, w.LastHash(), entries[1].Hash)

	_, err = os.Stat(filepath.Join(dir, "2024", "03", "09"))
	assert.NoError(t, err)
}

func TestWriterSplitsByDay(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, dir, 0)
	next := day0.Add(24 * time.Hour)

	require.NoError(t, w.Write(&Entry{Kind: KindAction, Timestamp: day0}))
	require.NoError(t, w.Write(&Entry{Kind: KindAction, Timestamp: next}))

	r := NewReader(dir)
	first, err := r.ReadDay(day0)
	require.NoError(t, err)
	second, err := r.ReadDay(next)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)

	all, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, -1, VerifyChain(all), "chain continues across days")
}

func TestWriterRotatesAndResumes(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, dir, 1)
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write(&Entry{Kind: KindAction, Timestamp: day0.Add(time.Duration(i) * time.Second)}))
	}
	require.NoError(t, w.Close())

	files, err := NewReader(dir).files(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	resumed := newTestWriter(t, dir, 0)
	assert.Equal(t, w.LastHash(), resumed.LastHash())
	require.NoError(t, resumed.Write(&Entry{Kind: KindAction, Timestamp: day0.Add(time.Hour)}))

	all, err := NewReader(dir).ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, -1, VerifyChain(all))
}

func TestReaderEmptyDirectory(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "missing"))

	last, err := r.LastEntry()
	require.NoError(t, err)
	assert.Nil(t, last)

	entries, err := r.ReadDay(day0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReaderReportsCorruptLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, dayDir(day0), fileName(day0))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"a\"}\n\nnot json\n"), 0644))

	_, err := NewReader(dir).ReadDay(day0)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), ":3:"))
}

func TestFilter(t *testing.T) {
	entries := []*Entry{{RobotID: 1}, {RobotID: 2}, {RobotID: 1}}
	assert.Len(t, Filter(entries, 0), 3)
	assert.Len(t, Filter(entries, 1), 2)
	assert.Empty(t, Filter(entries, 9))
}
