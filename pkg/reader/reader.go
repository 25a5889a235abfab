// Package reader defines the inbound reader contract (§6): something that
// turns a byte stream into finished table slices against a schema supplied
// by the caller. Concrete wire formats (CSV, syslog, Zeek, JSON, ...) are
// external collaborators; this package only fixes the shape they implement.
package reader

import (
	"context"

	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/table"
)

// Consumer accepts one finished table slice at a time, in offset order.
type Consumer func(slice *table.Slice) error

// Reader is the inbound contract every wire-format adapter implements.
// SetSchema is called once before the first Read; Schema exposes whatever
// the reader ultimately settled on (a reader may narrow or annotate the
// schema it was given, e.g. adding a fallback record type).
type Reader interface {
	SetSchema(s *schema.Schema)
	Schema() *schema.Schema

	// Read pulls up to maxEvents records, batched into slices of at most
	// maxSliceSize rows each, handing each finished slice to consume. It
	// returns the number of rows produced and a *pkgerrors.ReaderError
	// wrapping one of end_of_input, timeout, stalled, parse_error, or
	// format_error when the source can't continue.
	Read(ctx context.Context, maxEvents, maxSliceSize int, consume Consumer) (rowsProduced int, err error)
}
