package archive

import (
	"errors"
	"io"
)

// ErrMemberTooLarge is returned by readBounded when a member's
// decompressed bytes exceed cap, even if the zip header's declared
// size claimed otherwise.
var ErrMemberTooLarge = errors.New("archive: member exceeds max bytes")

// readBounded reads at most cap+1 bytes from r and returns an error if
// more than cap bytes were available, so a lying uncompressed-size
// header in the local/central record can never smuggle more bytes
// through than the guardrail allows. Partial bytes are discarded on
// overflow per §4.5.
func readBounded(r io.Reader, cap int64) ([]byte, error) {
	limited := io.LimitReader(r, cap+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > cap {
		return nil, ErrMemberTooLarge
	}
	return data, nil
}
