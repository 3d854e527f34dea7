package docx

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSource is returned when merged package lacks body markers,
	// relationship manifest or a part referenced by the manifest.
	ErrMalformedSource = errors.New("malformed source document")
	// ErrMalformedTemplate is returned when template package cannot be used
	// for rendering.
	ErrMalformedTemplate = errors.New("malformed template")
)

func malformedSource(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedSource, fmt.Sprintf(format, args...))
}

// Warning describes part which could not be merged. Rendering continues and
// caller decides whether result is acceptable.
type Warning struct {
	Part   string // package path of the part
	RelID  string // relationship id the part was referenced by
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (%s): %s", w.Part, w.RelID, w.Reason)
}
