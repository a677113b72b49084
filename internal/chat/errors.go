package chat

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ingest path. Both are reported to the originating
// connection only and never cause any fan-out.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

func validationErr(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}
