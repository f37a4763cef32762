package dependency

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache"

	"github.com/Troublor/erebus-sandwich/ir"
)

// CachedOracle memoizes the answers of another Oracle.
// Oracle answers are deterministic, so a cached answer is always valid; failures are not cached.
// Answers are keyed by the identity of the contract and variables, never by their names.
type CachedOracle struct {
	Oracle

	answers *bigcache.BigCache
	hits    uint64

	mu      sync.Mutex
	handles map[any]uint64
}

func NewCachedOracle(source Oracle, ttl time.Duration) (*CachedOracle, error) {
	cacheConfig := bigcache.DefaultConfig(ttl)
	cacheConfig.Verbose = false
	answers, err := bigcache.NewBigCache(cacheConfig)
	if err != nil {
		return nil, err
	}
	return &CachedOracle{
		Oracle:  source,
		answers: answers,
		handles: make(map[any]uint64),
	}, nil
}

func (o *CachedOracle) IsDependent(variable, source *ir.Variable, contract *ir.Contract) (bool, error) {
	key := o.cacheKey(variable, source, contract)
	if entry, err := o.answers.Get(key); err == nil {
		atomic.AddUint64(&o.hits, 1)
		return entry[0] == 1, nil
	}

	dependent, err := o.Oracle.IsDependent(variable, source, contract)
	if err != nil {
		return false, err
	}
	entry := []byte{0}
	if dependent {
		entry[0] = 1
	}
	if err = o.answers.Set(key, entry); err != nil {
		return false, err
	}
	return dependent, nil
}

// Hits returns how many queries were answered from the cache.
func (o *CachedOracle) Hits() uint64 {
	return atomic.LoadUint64(&o.hits)
}

func (o *CachedOracle) Close() error {
	return o.answers.Close()
}

// key: contract/variable/source handles, nil is 0
func (o *CachedOracle) cacheKey(variable, source *ir.Variable, contract *ir.Contract) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := make([]byte, 0, 32)
	key = strconv.AppendUint(key, o.handle(contract), 10)
	key = append(key, '/')
	key = strconv.AppendUint(key, o.handle(variable), 10)
	key = append(key, '/')
	key = strconv.AppendUint(key, o.handle(source), 10)
	return string(key)
}

// handle assigns a stable number to each distinct pointer; o.mu must be held.
func (o *CachedOracle) handle(p any) uint64 {
	switch p := p.(type) {
	case *ir.Contract:
		if p == nil {
			return 0
		}
	case *ir.Variable:
		if p == nil {
			return 0
		}
	}
	if h, ok := o.handles[p]; ok {
		return h
	}
	h := uint64(len(o.handles) + 1)
	o.handles[p] = h
	return h
}
