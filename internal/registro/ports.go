package registro

import (
	"context"

	"odonto/internal/core"
)

// Writer appends a paid installment to the practice's payments register.
// The returned rowRef identifies where the entry landed (a sheet range or
// a synthetic reference for the in-memory writer).
type Writer interface {
	Append(ctx context.Context, r core.Rata) (rowRef string, err error)
}
