package id

// Gen generates the next number in a sequence.
type Gen func() uint64

// Generator yields process-local unique IDs.
type Generator interface {
	Number() uint64
	Str() string
}

var _ Generator = (*idDelegator)(nil)

type idDelegator struct {
	number Gen
	str    func() string
}

func (id *idDelegator) Number() uint64 { return id.number() }
func (id *idDelegator) Str() string    { return id.str() }
