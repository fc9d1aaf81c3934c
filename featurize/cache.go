package featurize

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/peterbourgon/diskv"
)

// TokenCache remembers the tokens of texts that were already tokenised.
type TokenCache interface {
	Get(text string) ([]string, bool)
	Set(text string, tokens []string) error
}

// BlockTransform determines how diskv should partition folders.
func BlockTransform(blockSize int) func(string) []string {
	return func(s string) []string {
		var (
			sliceSize = len(s) / blockSize
			pathSlice = make([]string, sliceSize)
		)
		for i := 0; i < sliceSize; i++ {
			from, to := i*blockSize, (i*blockSize)+blockSize
			pathSlice[i] = s[from:to]
		}
		return pathSlice
	}
}

func cacheKey(namespace, text string) string {
	h := fnv.New64a()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("%016x", h.Sum64())
}

type mapTokenCache struct {
	sync.RWMutex
	m map[string][]string
}

func (m *mapTokenCache) Get(text string) ([]string, bool) {
	m.RLock()
	defer m.RUnlock()
	t, ok := m.m[text]
	return t, ok
}

func (m *mapTokenCache) Set(text string, tokens []string) error {
	m.Lock()
	defer m.Unlock()
	m.m[text] = tokens
	return nil
}

// NewMapTokenCache creates a token cache out of a regular go map.
func NewMapTokenCache() TokenCache {
	return &mapTokenCache{m: make(map[string][]string)}
}

type cacheEntry struct {
	Tokens []string
}

type diskvTokenCache struct {
	*diskv.Diskv
	namespace string
}

func (d diskvTokenCache) Get(text string) ([]string, bool) {
	b, err := d.Read(cacheKey(d.namespace, text))
	if err != nil {
		return nil, false
	}
	var e cacheEntry
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return nil, false
	}
	return e.Tokens, true
}

func (d diskvTokenCache) Set(text string, tokens []string) error {
	var buff bytes.Buffer
	if err := gob.NewEncoder(&buff).Encode(cacheEntry{Tokens: tokens}); err != nil {
		return err
	}
	return d.Write(cacheKey(d.namespace, text), buff.Bytes())
}

// NewDiskvTokenCache creates an on-disk token cache under dir. Entries written under different
// namespaces never collide, so tokenisers with different settings can share a directory.
func NewDiskvTokenCache(dir, namespace string) TokenCache {
	return diskvTokenCache{
		Diskv: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    BlockTransform(4),
			CacheSizeMax: 4096 * 1024,
			Compression:  diskv.NewGzipCompression(),
		}),
		namespace: namespace,
	}
}
