package hashmap

import (
	"errors"

	"github.com/forestrie/go-celldict/cell"
)

// MaxKeyBits is the longest supported key. It is also the deepest any
// recursive walk over a dictionary can go.
const MaxKeyBits = cell.MaxDataBits

// Mode selects which outcomes of a set are allowed.
type Mode uint8

const (
	// ModeAdd permits inserting a key that is not yet present.
	ModeAdd Mode = 1 << iota
	// ModeReplace permits overwriting the value of a present key.
	ModeReplace

	ModeSet = ModeAdd | ModeReplace
)

// Entry is a single key/value pair read out of a dictionary.
type Entry struct {
	Key   cell.Bitstring
	Value cell.Slice
}

var (
	ErrKeyLengthMismatch = errors.New("hashmap: key length does not match the dictionary key length")
	ErrKeyTooLong        = errors.New("hashmap: key length exceeds the maximum")
	ErrMalformedLabel    = errors.New("hashmap: malformed label")
	ErrMalformedNode     = errors.New("hashmap: malformed node")
	ErrModeViolation     = errors.New("hashmap: set mode does not permit the operation")
	ErrInvalidSplit      = errors.New("hashmap: prefix does not split the dictionary")
	ErrCombineConflict   = errors.New("hashmap: both dictionaries hold the key")
	ErrBudgetExceeded    = errors.New("hashmap: cell budget exceeded")
	ErrAugmentMismatch   = errors.New("hashmap: stored extra does not match the dictionary")
	ErrEmptyRoot         = errors.New("hashmap: dictionary is empty")
	ErrOutOfOrderKey     = errors.New("hashmap: key out of order")
	ErrDuplicateKey      = errors.New("hashmap: duplicate key")
)
