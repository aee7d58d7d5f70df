package cache

import (
	"container/list"
	"context"
	"path"
	"sync"
	"time"
)

// noExpiry is applied when Set is called with a non-positive TTL.
const noExpiry = 7 * 24 * time.Hour

type memEntry struct {
	key      string
	data     []byte
	deadline time.Time
}

// MemoryCache is a process-local Service with LRU eviction and TTLs.
type MemoryCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	s := memorySettings{capacity: 1000, sweep: 5 * time.Minute}
	for _, opt := range opts {
		opt(&s)
	}
	if s.capacity < 1 {
		s.capacity = 1
	}

	mc := &MemoryCache{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		capacity: s.capacity,
		stop:     make(chan struct{}),
	}
	go mc.sweepLoop(s.sweep)
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = noExpiry
	}
	deadline := time.Now().Add(ttl)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, ok := mc.items[key]; ok {
		e := el.Value.(*memEntry)
		e.data, e.deadline = data, deadline
		mc.order.MoveToFront(el)
		return nil
	}
	for mc.order.Len() >= mc.capacity {
		mc.removeElement(mc.order.Back())
	}
	mc.items[key] = mc.order.PushFront(&memEntry{key: key, data: data, deadline: deadline})
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	el, ok := mc.items[key]
	if !ok {
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	e := el.Value.(*memEntry)
	if time.Now().After(e.deadline) {
		mc.removeElement(el)
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	mc.order.MoveToFront(el)
	data := e.data
	mc.mu.Unlock()

	return decode(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		if el, ok := mc.items[k]; ok {
			mc.removeElement(el)
		}
	}
	return nil
}

// DeleteByPattern drops every key matching a glob such as "api:*".
func (mc *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for k, el := range mc.items {
		if ok, _ := path.Match(pattern, k); ok {
			mc.removeElement(el)
		}
	}
	return nil
}

// Len reports the number of stored entries, including expired ones not yet swept.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.order.Len()
}

func (mc *MemoryCache) Close() error {
	mc.stopOnce.Do(func() { close(mc.stop) })
	return nil
}

// removeElement must be called with mu held.
func (mc *MemoryCache) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	mc.order.Remove(el)
	delete(mc.items, el.Value.(*memEntry).key)
}

func (mc *MemoryCache) sweepLoop(every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-mc.stop:
			return
		case now := <-t.C:
			mc.mu.Lock()
			for el := mc.order.Back(); el != nil; {
				prev := el.Prev()
				if now.After(el.Value.(*memEntry).deadline) {
					mc.removeElement(el)
				}
				el = prev
			}
			mc.mu.Unlock()
		}
	}
}
