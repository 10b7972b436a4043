package formfs

import (
	"fmt"
	"io"
)

// sequenceLog records field names in the order they arrive.
type sequenceLog struct {
	w io.Writer
}

func (s sequenceLog) record(name string) error {
	if s.w == nil {
		return nil
	}
	if _, err := io.WriteString(s.w, name+"\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrSequenceLog, err)
	}
	return nil
}
