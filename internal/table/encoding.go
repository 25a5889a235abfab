package table

// Encoding identifies the binary representation a Slice was serialized
// with, so a decoder can dispatch without any external type context
// (§4.1: "new encodings may be registered at process start; there is no
// runtime extensibility per slice").
type Encoding uint8

const (
	// EncodingNative is the one encoding this core ships: a
	// self-describing, row-major layout header followed by per-cell
	// tagged values (internal/value's binary codec). It is not Apache
	// Arrow — no pack example imports a columnar IPC library, so this
	// core defines its own minimal wire format rather than reaching for
	// one (see DESIGN.md).
	EncodingNative Encoding = 1
)

type codec struct {
	encode func(s *Slice) []byte
	decode func(buf []byte) (*Slice, int, error)
}

var encodingRegistry = map[Encoding]codec{}

func init() {
	RegisterEncoding(EncodingNative, codec{encode: encodeNative, decode: decodeNative})
}

// RegisterEncoding adds a codec to the process-wide registry. Intended to
// be called from package init() functions only (§9 Design Notes: "the
// registry of encodings/synopsis/index factories is process-wide; it is
// populated once at startup and then read-only").
func RegisterEncoding(tag Encoding, c codec) {
	encodingRegistry[tag] = c
}
