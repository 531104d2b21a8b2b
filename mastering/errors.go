package mastering

import "errors"

var (
	// ErrTooQuiet indicates the recording's loudness could not be
	// measured (silence or too little voice), so normalization would
	// apply an unbounded gain.
	ErrTooQuiet = errors.New("mastering: recording too quiet to normalize")

	// ErrBufferTooShort indicates the recording is shorter than the
	// minimum the chain accepts. Checked before any transform.
	ErrBufferTooShort = errors.New("mastering: buffer shorter than one second")

	// ErrInProgress indicates a mastering run for the same recording is
	// already active. Runs on distinct recordings are independent.
	ErrInProgress = errors.New("mastering: already processing this recording")
)
