package kv

// HashSet is the keys-only form of HashMap. The multi variant is
// selected with WithHashSetDuplicates.
type HashSet[K comparable] struct {
	m *HashMap[K, struct{}]
}

type HashSetOpt[K comparable] func(*HashMap[K, struct{}])

func WithHashSetCapacity[K comparable](n uint32) HashSetOpt[K] {
	return func(m *HashMap[K, struct{}]) {
		m.capHint = n
	}
}

func WithHashSetMaxLoadFactor[K comparable](factor float64) HashSetOpt[K] {
	return func(m *HashMap[K, struct{}]) {
		if factor > 0 {
			m.maxLoad = factor
		}
	}
}

func WithHashSetHasher[K comparable](hash func(key K) uint64) HashSetOpt[K] {
	return func(m *HashMap[K, struct{}]) {
		m.hashFn = hash
	}
}

func WithHashSetKeyEquals[K comparable](equals func(i, j K) bool) HashSetOpt[K] {
	return func(m *HashMap[K, struct{}]) {
		m.equalsFn = equals
	}
}

func WithHashSetDuplicates[K comparable]() HashSetOpt[K] {
	return func(m *HashMap[K, struct{}]) {
		m.allowDup = true
	}
}

func NewHashSet[K comparable](opts ...HashSetOpt[K]) *HashSet[K] {
	inner := newBareHashMap[K, struct{}]()
	for _, o := range opts {
		o(inner)
	}
	inner.buckets = make([]*hashEntry[K, struct{}], inner.initialBuckets())
	return &HashSet[K]{m: inner}
}

// NewHashSetFromKeys bulk-loads an arbitrary key sequence. The derived
// capacity hint goes first so a caller-supplied one still wins.
func NewHashSetFromKeys[K comparable](keys []K, opts ...HashSetOpt[K]) *HashSet[K] {
	opts = append([]HashSetOpt[K]{WithHashSetCapacity[K](uint32(len(keys)))}, opts...)
	s := NewHashSet[K](opts...)
	for _, key := range keys {
		s.Insert(key)
	}
	return s
}

func (s *HashSet[K]) Len() int64 {
	return s.m.Len()
}

func (s *HashSet[K]) Insert(key K) (HashPos[K, struct{}], bool) {
	return s.m.Put(key, struct{}{})
}

func (s *HashSet[K]) Contains(key K) bool {
	_, exists := s.m.Get(key)
	return exists
}

func (s *HashSet[K]) Find(key K) HashPos[K, struct{}] {
	return s.m.Find(key)
}

func (s *HashSet[K]) Remove(key K) int64 {
	return s.m.Delete(key)
}

func (s *HashSet[K]) Count(key K) int64 {
	return s.m.Count(key)
}

func (s *HashSet[K]) Reserve(n int64) error {
	return s.m.Reserve(n)
}

func (s *HashSet[K]) LoadFactor() float64 {
	return s.m.LoadFactor()
}

func (s *HashSet[K]) BucketCount() int {
	return s.m.BucketCount()
}

func (s *HashSet[K]) Foreach(action func(idx int64, key K) bool) {
	s.m.Foreach(func(idx int64, key K, _ struct{}) bool {
		return action(idx, key)
	})
}

func (s *HashSet[K]) Begin() HashPos[K, struct{}] {
	return s.m.Begin()
}

// Keys exports the set in its natural iteration order.
func (s *HashSet[K]) Keys() []K {
	keys := make([]K, 0, s.m.Len())
	s.Foreach(func(_ int64, key K) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (s *HashSet[K]) Clear() {
	s.m.Clear()
}
