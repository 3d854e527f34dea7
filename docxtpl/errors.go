package docxtpl

import "fmt"

// TagError describes malformed placeholder found while rendering.
type TagError struct {
	Part   string
	Tag    string
	Reason string
}

func (e *TagError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("%s: %s", e.Part, e.Reason)
	}
	return fmt.Sprintf("%s: tag %q: %s", e.Part, e.Tag, e.Reason)
}
