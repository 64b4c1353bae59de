package kv

import (
	"io"
	"log/slog"
	"reflect"
	"sync"
)

// threadSafeMap guards a unique HashMap with a RWMutex. It packages
// the one-writer-many-readers discipline the bare containers leave to
// the caller.
type threadSafeMap[K comparable, V any] struct {
	lock           sync.RWMutex
	store          *HashMap[K, V]
	isClosableItem bool
}

func (t *threadSafeMap[K, V]) AddOrUpdate(key K, obj V) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.store.Upsert(key, obj)
}

func (t *threadSafeMap[K, V]) Replace(items map[K]V) {
	t.lock.Lock()
	defer t.lock.Unlock()
	next := NewHashMap[K, V](WithHashMapCapacity[K, V](uint32(len(items))))
	for key, item := range items {
		next.Put(key, item)
	}
	t.store = next
}

func (t *threadSafeMap[K, V]) Delete(key K) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.store.Delete(key)
}

func (t *threadSafeMap[K, V]) Get(key K) (item V, exists bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	item, exists = t.store.Get(key)
	return
}

func (t *threadSafeMap[K, V]) ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K {

	realFilters := make([]SafeStoreKeyFilterFunc[K], 0, len(filters))
	for _, filter := range filters {
		if filter != nil {
			realFilters = append(realFilters, filter)
		}
	}
	if len(realFilters) == 0 {
		realFilters = append(realFilters, defaultAllKeysFilter[K])
	}

	t.lock.RLock()
	defer t.lock.RUnlock()

	keys := make([]K, 0, t.store.Len())
	t.store.Foreach(func(_ int64, key K, _ V) bool {
		for _, filter := range realFilters {
			if filter(key) {
				keys = append(keys, key)
				break
			}
		}
		return true
	})
	return keys
}

func (t *threadSafeMap[K, V]) ListValues(keys ...K) (items []V) {
	contains := func(keys []K, key K) bool {
		for _, k := range keys {
			if k == key {
				return true
			}
		}
		return false
	}

	t.lock.RLock()
	defer t.lock.RUnlock()
	values := make([]V, 0, t.store.Len())
	t.store.Foreach(func(_ int64, key K, item V) bool {
		if len(keys) == 0 || contains(keys, key) {
			values = append(values, item)
		}
		return true
	})
	return values
}

func (t *threadSafeMap[K, V]) Purge() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.isClosableItem {
		t.store.Foreach(func(_ int64, _ K, item V) bool {
			if reflect.ValueOf(item).IsNil() {
				return true
			}
			typ := reflect.TypeOf(item)
			if typ.Implements(reflect.TypeOf((*io.Closer)(nil)).Elem()) {
				vals := reflect.ValueOf(item).MethodByName("Close").Call([]reflect.Value{})
				if len(vals) > 0 && !vals[0].IsNil() {
					intf := vals[0].Elem().Interface()
					switch intf.(type) {
					case error:
						err := intf.(error)
						slog.Error("Purge info", "error", err)
					}
				}
			}
			return true
		})
	}

	t.store.Clear()
	return nil
}

func NewThreadSafeMap[K comparable, V any]() ThreadSafeStorer[K, V] {
	isCloserItem := false
	nilT := new(V)
	if !reflect.ValueOf(nilT).IsNil() {
		if reflect.TypeOf(nilT).Implements(reflect.TypeOf((*io.Closer)(nil)).Elem()) {
			isCloserItem = true
		}
	} else {
		_nilT := *new(V)
		if reflect.TypeOf(_nilT).Implements(reflect.TypeOf((*io.Closer)(nil)).Elem()) {
			isCloserItem = true
		}
	}

	return &threadSafeMap[K, V]{
		store:          NewHashMap[K, V](WithHashMapCapacity[K, V](32)),
		isClosableItem: isCloserItem,
	}
}
