package partition

import (
	"encoding/json"

	"github.com/solarflare-labs/vastore/internal/table"
)

const (
	segmentFile  = "segment.bin"
	indexesFile  = "indexes.bin"
	synopsesFile = "synopses.bin"
	metaFile     = "meta.json"
)

// Meta is the sealed partition's self-describing manifest (§4.6): uuid,
// schema, id range, row count, encoding tag. It is written last during
// seal so a reader can treat its absence as "not a partition".
type Meta struct {
	UUID     string                  `json:"uuid"`
	Layouts  map[string]table.Layout `json:"layouts"`
	IDLo     uint64                  `json:"id_lo"`
	IDHi     uint64                  `json:"id_hi"`
	RowCount int                     `json:"row_count"`
	Encoding table.Encoding          `json:"encoding"`
}

func (m Meta) marshal() ([]byte, error) {
	return json.Marshal(m)
}

func unmarshalMeta(data []byte) (Meta, error) {
	var m Meta
	err := json.Unmarshal(data, &m)
	return m, err
}
