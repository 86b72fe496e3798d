package store

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrNotClaimed is returned by MarkJobProcessing when the job was not in the
// pending state, i.e. another claim won or the job already finished. The
// worker treats this as "skip", not as a failure.
var ErrNotClaimed = errors.New("job not claimed")
