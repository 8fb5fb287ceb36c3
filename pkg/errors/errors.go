package errors

import "errors"

// ErrOptimisticLock the row was modified by someone else since it was read.
var ErrOptimisticLock = errors.New("record was modified by another request, reload and retry")

// ErrShiftFull the conditional capacity update matched no row.
var ErrShiftFull = errors.New("shift has no spots left")

// ErrDuplicate a unique constraint rejected the write.
var ErrDuplicate = errors.New("duplicate record")
