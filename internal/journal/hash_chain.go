package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
)

// HashChain 每条日志记录前一条的哈希，篡改或删除中间条目都会导致校验失败
type HashChain struct {
	mu       sync.Mutex
	lastHash string
}

// NewHashChain 从 lastHash 继续链接；新目录传空字符串
func NewHashChain(lastHash string) *HashChain {
	return &HashChain{lastHash: lastHash}
}

func hashEntry(e *Entry) (string, error) {
	cp := *e
	cp.Hash = ""
	data, err := json.Marshal(cp)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Link 设置 PrevHash 与 Hash
func (hc *HashChain) Link(e *Entry) error {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	e.PrevHash = hc.lastHash
	hash, err := hashEntry(e)
	if err != nil {
		return fmt.Errorf("failed to calculate hash: %w", err)
	}
	e.Hash = hash
	hc.lastHash = hash
	return nil
}

// LastHash 最后一条日志的哈希
func (hc *HashChain) LastHash() string {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return hc.lastHash
}

// VerifyEntry 校验单条日志的哈希
func VerifyEntry(e *Entry) bool {
	hash, err := hashEntry(e)
	return err == nil && hash == e.Hash
}

// VerifyChain 校验连续日志；返回第一条不一致条目的下标，全部通过时返回 -1
func VerifyChain(entries []*Entry) int {
	for i, e := range entries {
		if !VerifyEntry(e) {
			return i
		}
		if i > 0 && e.PrevHash != entries[i-1].Hash {
			return i
		}
	}
	return -1
}
