package tree

import (
	"github.com/kvlab/assoc/lib/infra"
)

// TreeSet is the keys-only form of TreeMap. The multi variant
// (duplicate keys allowed) is selected with WithTreeSetDuplicates.
type TreeSet[K infra.OrderedKey] struct {
	m *TreeMap[K, struct{}]
}

type TreeSetOpt[K infra.OrderedKey] func(*rbTree[K, struct{}])

func WithTreeSetComparator[K infra.OrderedKey](cmp infra.OrderedKeyComparator[K]) TreeSetOpt[K] {
	return func(tree *rbTree[K, struct{}]) {
		tree.cmp = cmp
	}
}

func WithTreeSetDesc[K infra.OrderedKey]() TreeSetOpt[K] {
	return func(tree *rbTree[K, struct{}]) {
		tree.isDesc = true
	}
}

func WithTreeSetDuplicates[K infra.OrderedKey]() TreeSetOpt[K] {
	return func(tree *rbTree[K, struct{}]) {
		tree.allowDup = true
	}
}

func NewTreeSet[K infra.OrderedKey](opts ...TreeSetOpt[K]) *TreeSet[K] {
	m := NewTreeMap[K, struct{}]()
	for _, o := range opts {
		o(m.tree)
	}
	return &TreeSet[K]{m: m}
}

// NewTreeSetFromKeys bulk-loads an arbitrary key sequence.
func NewTreeSetFromKeys[K infra.OrderedKey](keys []K, opts ...TreeSetOpt[K]) *TreeSet[K] {
	s := NewTreeSet[K](opts...)
	for _, key := range keys {
		s.Insert(key)
	}
	return s
}

func (s *TreeSet[K]) Len() int64 {
	return s.m.Len()
}

func (s *TreeSet[K]) Insert(key K) (TreePos[K, struct{}], bool) {
	return s.m.Insert(key, struct{}{})
}

func (s *TreeSet[K]) Contains(key K) bool {
	_, exists := s.m.Get(key)
	return exists
}

func (s *TreeSet[K]) Find(key K) TreePos[K, struct{}] {
	return s.m.Find(key)
}

func (s *TreeSet[K]) Remove(key K) int64 {
	return s.m.Remove(key)
}

func (s *TreeSet[K]) RemoveAt(pos TreePos[K, struct{}]) error {
	return s.m.RemoveAt(pos)
}

func (s *TreeSet[K]) Count(key K) int64 {
	return s.m.Count(key)
}

func (s *TreeSet[K]) LowerBound(key K) TreePos[K, struct{}] {
	return s.m.LowerBound(key)
}

func (s *TreeSet[K]) UpperBound(key K) TreePos[K, struct{}] {
	return s.m.UpperBound(key)
}

func (s *TreeSet[K]) Foreach(action func(idx int64, key K) bool) {
	s.m.Foreach(func(idx int64, key K, _ struct{}) bool {
		return action(idx, key)
	})
}

func (s *TreeSet[K]) Begin() TreePos[K, struct{}] {
	return s.m.Begin()
}

// Keys exports the set in ascending comparator order.
func (s *TreeSet[K]) Keys() []K {
	return s.m.Keys()
}

func (s *TreeSet[K]) Release() {
	s.m.Release()
}
