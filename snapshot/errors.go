package snapshot

import "errors"

var (
	ErrBadBag           = errors.New("snapshot: malformed bag of cells")
	ErrHashMismatch     = errors.New("snapshot: cell does not match its recorded hash")
	ErrSnapshotNotFound = errors.New("snapshot: not found")
	ErrKeyBitsMismatch  = errors.New("snapshot: key length differs from the requested dictionary")
	ErrDirNotProvided   = errors.New("snapshot: a snapshot directory must be provided")
)
