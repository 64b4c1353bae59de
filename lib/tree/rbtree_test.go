package tree

import (
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvlab/assoc/lib/id"
)

type checkData struct {
	color RBColor
	key   uint64
}

func collectColors(m *TreeMap[uint64, uint64]) []checkData {
	res := make([]checkData, 0, m.Len())
	for pos := m.Begin(); pos.Valid(); pos = pos.Next() {
		res = append(res, checkData{pos.node.color, pos.node.key})
	}
	return res
}

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64, uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64, uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)
}

func TestRBTreeInsertAndRemove_Fixed(t *testing.T) {
	m := NewTreeMap[uint64, uint64]()

	m.Insert(52, 1)
	require.Equal(t, []checkData{
		{Black, 52},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	m.Insert(47, 1)
	require.Equal(t, []checkData{
		{Red, 47}, {Black, 52},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	m.Insert(3, 1)
	require.Equal(t, []checkData{
		{Red, 3}, {Black, 47}, {Red, 52},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	m.Insert(35, 1)
	require.Equal(t, []checkData{
		{Black, 3},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	m.Insert(24, 1)
	require.Equal(t, []checkData{
		{Red, 3},
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	// remove

	require.Equal(t, int64(1), m.Remove(24))
	require.Equal(t, []checkData{
		{Black, 3},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	require.Equal(t, int64(1), m.Remove(47))
	require.Equal(t, []checkData{
		{Black, 3},
		{Black, 35},
		{Black, 52},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	require.Equal(t, int64(1), m.Remove(52))
	require.Equal(t, []checkData{
		{Red, 3}, {Black, 35},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	require.Equal(t, int64(1), m.Remove(3))
	require.Equal(t, []checkData{
		{Black, 35},
	}, collectColors(m))
	require.NoError(t, Validate(m))

	require.Equal(t, int64(1), m.Remove(35))
	require.Equal(t, int64(0), m.Len())
	require.Equal(t, int64(0), m.Remove(35))
}

func TestRBTree_RemoveMin(t *testing.T) {
	m := NewTreeMap[uint64, uint64]()

	m.Insert(52, 1)
	m.Insert(47, 1)
	m.Insert(3, 1)
	m.Insert(35, 1)
	m.Insert(24, 1)

	expected := []uint64{3, 24, 35, 47, 52}
	for _, want := range expected {
		key, _, err := m.RemoveMin()
		require.NoError(t, err)
		require.Equal(t, want, key)
		require.NoError(t, Validate(m))
	}
	require.Equal(t, int64(0), m.Len())

	_, _, err := m.RemoveMin()
	require.Error(t, err)
}

func rbtreeRandomInsertAndRemoveSequentialNumberRunCore(t *testing.T, rbRmBySucc bool) {
	total := uint64(1000)
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	opts := []TreeMapOpt[uint64, uint64]{}
	if rbRmBySucc {
		opts = append(opts, WithTreeMapRemoveBorrowSucc[uint64, uint64]())
	}
	m := NewTreeMap[uint64, uint64](opts...)

	for i := uint64(0); i < insertTotal; i++ {
		m.Insert(i, 1)
		require.NoError(t, RedViolationValidate(m))
		require.NoError(t, BlackViolationValidate(m))
	}
	m.Foreach(func(idx int64, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		m.Insert(i, 1)
		require.NoError(t, RedViolationValidate(m))
		require.NoError(t, BlackViolationValidate(m))
	}

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		if i == 892 {
			pos := m.Find(i)
			require.True(t, pos.Valid())
			require.Equal(t, uint64(892), pos.Key())
		}
		require.Equal(t, int64(1), m.Remove(i))
		require.NoError(t, RedViolationValidate(m))
		require.NoError(t, BlackViolationValidate(m))
	}
	m.Foreach(func(idx int64, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
}

func TestRBTreeRandomInsertAndRemove_SequentialNumber(t *testing.T) {
	type testcase struct {
		name       string
		rbRmBySucc bool
	}
	testcases := []testcase{
		{
			name: "rm by pred",
		},
		{
			name:       "rm by succ",
			rbRmBySucc: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveSequentialNumberRunCore(tt, tc.rbRmBySucc)
		})
	}
}

func TestRBTreeRandomInsertAndRemove_SequentialNumber_Release(t *testing.T) {
	insertTotal := uint64(100_000)

	m := NewTreeMap[uint64, uint64]()

	rand := uint64(randv2.Uint32() % 1_000)
	for i := uint64(0); i < insertTotal; i++ {
		m.Insert(i, 1)
		if i%1000 == rand {
			require.NoError(t, RedViolationValidate(m))
			require.NoError(t, BlackViolationValidate(m))
		}
	}
	m.Foreach(func(idx int64, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	m.Release()
	require.Equal(t, int64(0), m.Len())
	require.Nil(t, m.Root())
}

func TestRBTreeRandomInsertAndRemove_ReverseSequentialNumber(t *testing.T) {
	total := int64(10000)
	insertTotal := int64(float64(total) * 0.8)
	removeTotal := int64(float64(total) * 0.2)

	m := NewTreeMap[int64, uint64](WithTreeMapDesc[int64, uint64]())

	rand := int64(randv2.Uint32() % 1_000)
	for i := insertTotal - 1; i >= 0; i-- {
		m.Insert(i, 1)
		if i%1000 == rand {
			require.NoError(t, RedViolationValidate(m))
			require.NoError(t, BlackViolationValidate(m))
		}
	}
	m.Foreach(func(idx int64, key int64, val uint64) bool {
		require.Equal(t, insertTotal-1-idx, key)
		return true
	})

	for i := removeTotal + insertTotal - 1; i >= insertTotal; i-- {
		m.Insert(i, 1)
	}
	m.Foreach(func(idx int64, key int64, val uint64) bool {
		require.Equal(t, removeTotal+insertTotal-1-idx, key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		require.Equal(t, int64(1), m.Remove(i))
	}
	m.Foreach(func(idx int64, key int64, val uint64) bool {
		require.Equal(t, insertTotal-1-idx, key)
		return true
	})
}

func rbtreeRandomInsertAndRemoveMonoNumberRunCore(t *testing.T, total uint64, rbRmBySucc bool, violationCheck bool) {
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	idGen, _ := id.MonotonicNonZeroID()
	insertElements := make([]uint64, 0, insertTotal)
	removeElements := make([]uint64, 0, removeTotal)

	ignore := uint32(0)

	for {
		num := idGen.Number()
		if ignore > 0 {
			ignore--
			continue
		}
		ignore = randv2.Uint32() % 100
		if ignore&0x1 == 0 && uint64(len(insertElements)) < insertTotal {
			insertElements = append(insertElements, num)
		} else if ignore&0x1 == 1 && uint64(len(removeElements)) < removeTotal {
			removeElements = append(removeElements, num)
		}
		if uint64(len(insertElements)) == insertTotal && uint64(len(removeElements)) == removeTotal {
			break
		}
	}

	shuffle := func(arr []uint64) {
		count := uint32(len(arr) >> 2)
		for i := uint32(0); i < count; i++ {
			j := randv2.Uint32() % (i + 1)
			arr[i], arr[j] = arr[j], arr[i]
		}
	}

	shuffle(insertElements)
	shuffle(removeElements)

	opts := []TreeMapOpt[uint64, uint64]{}
	if rbRmBySucc {
		opts = append(opts, WithTreeMapRemoveBorrowSucc[uint64, uint64]())
	}
	m := NewTreeMap[uint64, uint64](opts...)

	for i := uint64(0); i < insertTotal; i++ {
		m.Insert(insertElements[i], i)
		if violationCheck {
			require.NoError(t, RedViolationValidate(m))
			require.NoError(t, BlackViolationValidate(m))
		}
	}
	sort.Slice(insertElements, func(i, j int) bool {
		return insertElements[i] < insertElements[j]
	})
	m.Foreach(func(idx int64, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})

	for i := uint64(0); i < removeTotal; i++ {
		m.Insert(removeElements[i], 1)
		if violationCheck {
			require.NoError(t, RedViolationValidate(m))
			require.NoError(t, BlackViolationValidate(m))
		}
	}
	require.NoError(t, RedViolationValidate(m))
	require.NoError(t, BlackViolationValidate(m))

	for i := uint64(0); i < removeTotal; i++ {
		require.Equal(t, int64(1), m.Remove(removeElements[i]))
		if violationCheck {
			require.NoError(t, RedViolationValidate(m))
			require.NoError(t, BlackViolationValidate(m))
		}
	}
	m.Foreach(func(idx int64, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})
}

func TestRBTreeRandomInsertAndRemove_RandomMonotonicNumber(t *testing.T) {
	type testcase struct {
		name           string
		rbRmBySucc     bool
		total          uint64
		violationCheck bool
	}
	testcases := []testcase{
		{
			name:  "rm by pred 100000",
			total: 100000,
		},
		{
			name:       "rm by succ 100000",
			rbRmBySucc: true,
			total:      100000,
		},
		{
			name:           "violation check rm by pred 10000",
			total:          10000,
			violationCheck: true,
		},
		{
			name:           "violation check rm by succ 10000",
			rbRmBySucc:     true,
			total:          10000,
			violationCheck: true,
		},
	}
	t.Parallel()
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveMonoNumberRunCore(tt, tc.total, tc.rbRmBySucc, tc.violationCheck)
		})
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	m := NewTreeMap[int, []byte]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		m.Insert(rngArr[i], testByBytes)
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	m := NewTreeMap[int, []byte]()

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		m.Insert(i, testByBytes)
	}
}
