package grid

import (
	"errors"
	"fmt"

	"github.com/zeusync/blueprint/internal/core/document"
)

var (
	ErrInvalidSettings = errors.New("invalid grid settings")
	ErrDuplicateChunk  = errors.New("duplicate chunk")
	ErrChunkPayload    = errors.New("bad chunk payload")
	ErrUnknownTile     = errors.New("tile id not in tile map")
	ErrGridOwned       = errors.New("grid already has an owner")
)

// malformed reports err as a document error too, so callers can match either.
func malformed(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", document.ErrMalformedDocument, err, fmt.Sprintf(format, args...))
}
