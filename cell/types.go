package cell

import "errors"

// HashBytes is the width of a cell content hash.
const HashBytes = 32

const (
	// MaxDataBits is the maximum number of data bits a cell can hold.
	MaxDataBits = 1023
	// MaxRefs is the maximum number of references a cell can hold.
	MaxRefs = 4
)

var (
	ErrCellUnderflow = errors.New("cell: underflow")
	ErrCellOverflow  = errors.New("cell: overflow")
	ErrBadBitLength  = errors.New("cell: bit length exceeds data")
	ErrBadBitString  = errors.New("cell: invalid bit string")
	ErrNilRef        = errors.New("cell: nil reference")
)
