package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// Meter finalizes every cell a dictionary operation creates. It is the hook for
// resource accounting: it is called once per new cell and never for subtrees
// that are reused by reference. An error aborts the operation and leaves the
// dictionary unchanged.
type Meter interface {
	Finalize(b *cell.Builder) (*cell.Cell, error)
}

// MeterFunc adapts a function to the Meter interface.
type MeterFunc func(b *cell.Builder) (*cell.Cell, error)

func (f MeterFunc) Finalize(b *cell.Builder) (*cell.Cell, error) { return f(b) }

type unmetered struct{}

func (unmetered) Finalize(b *cell.Builder) (*cell.Cell, error) { return b.Finalize() }

// CellBudget is a Meter that allows at most Limit cells to be created.
type CellBudget struct {
	Limit int
	built int
}

func NewCellBudget(limit int) *CellBudget {
	return &CellBudget{Limit: limit}
}

func (m *CellBudget) Finalize(b *cell.Builder) (*cell.Cell, error) {
	if m.built >= m.Limit {
		return nil, fmt.Errorf("%w: limit %d", ErrBudgetExceeded, m.Limit)
	}
	c, err := b.Finalize()
	if err != nil {
		return nil, err
	}
	m.built++
	return c, nil
}

// Built returns the number of cells created so far.
func (m *CellBudget) Built() int { return m.built }

// Remaining returns how many more cells may be created.
func (m *CellBudget) Remaining() int { return m.Limit - m.built }
