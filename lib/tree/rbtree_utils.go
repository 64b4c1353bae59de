package tree

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/kvlab/assoc/lib/infra"
)

func isBlack[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return isNilLeaf[K, V](node) || node.Color() == Black
}

func isRed[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return !isNilLeaf[K, V](node) && node.Color() == Red
}

func isNilLeaf[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node == nil || (!node.HasKeyVal() && node.Parent() == nil && node.Left() == nil && node.Right() == nil)
}

func isRoot[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node != nil && node.Parent() == nil
}

func blackDepthTo[K infra.OrderedKey, V any](target, to RBNode[K, V]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities, exercised by the tests after
// every structural mutation.

// RedViolationValidate walks the tree in-order and reports any red
// node with a red parent or a red child (p3).
func RedViolationValidate[K infra.OrderedKey, V any](m *TreeMap[K, V]) error {
	size := m.Len()
	var aux RBNode[K, V] = m.Root()
	if size < 0 || aux == nil {
		return nil
	}

	stack := make([]RBNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; !isNilLeaf[K, V](aux); aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; isRed[K, V](aux) {
			if (!isRoot[K, V](aux.Parent()) && isRed[K, V](aux.Parent())) ||
				(isRed[K, V](aux.Left()) || isRed[K, V](aux.Right())) {
				return errors.New("rbtree red violation")
			}
		}

		stack = stack[:size-1]
		if aux.Right() != nil {
			for aux = aux.Right(); aux != nil; aux = aux.Left() {
				stack = append(stack, aux)
			}
		}
	}
	return nil
}

// BFS traversal to load all leaves.
func bfsLeaves[K infra.OrderedKey, V any](m *TreeMap[K, V]) []RBNode[K, V] {
	size := m.Len()
	var aux RBNode[K, V] = m.Root()
	if size < 0 || isNilLeaf[K, V](aux) {
		return nil
	}

	leaves := make([]RBNode[K, V], 0, size>>1+1)
	stack := make([]RBNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)

	for len(stack) > 0 {
		aux = stack[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ isNilLeaf[K, V](l) || isNilLeaf[K, V](r) {
			leaves = append(leaves, aux)
		}
		if !isNilLeaf[K, V](l) {
			stack = append(stack, l)
		}
		if !isNilLeaf[K, V](r) {
			stack = append(stack, r)
		}
		stack = stack[1:]
	}
	return leaves
}

// BlackViolationValidate checks that every leaf sits at the same black
// depth from the root (p4).
func BlackViolationValidate[K infra.OrderedKey, V any](m *TreeMap[K, V]) error {
	leaves := bfsLeaves[K, V](m)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K, V](leaves[0], m.Root())
	for i := 1; i < len(leaves); i++ {
		if blackDepthTo[K, V](leaves[i], m.Root()) != blackDepth {
			return errors.New("rbtree black violation")
		}
	}
	return nil
}

// OrderViolationValidate checks that the in-order key sequence is
// non-decreasing under the map's comparator.
func OrderViolationValidate[K infra.OrderedKey, V any](m *TreeMap[K, V]) error {
	var (
		prev    K
		hasPrev bool
		broken  bool
	)
	m.Foreach(func(_ int64, key K, _ V) bool {
		if hasPrev && m.tree.keyCompare(prev, key) > 0 {
			broken = true
			return false
		}
		prev, hasPrev = key, true
		return true
	})
	if broken {
		return errors.New("rbtree order violation")
	}
	return nil
}

// Validate aggregates every invariant check.
func Validate[K infra.OrderedKey, V any](m *TreeMap[K, V]) error {
	return multierr.Combine(
		RedViolationValidate[K, V](m),
		BlackViolationValidate[K, V](m),
		OrderViolationValidate[K, V](m),
	)
}
