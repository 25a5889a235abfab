package valueindex

import "encoding/binary"

func appendU32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func readU32(buf []byte) (uint32, int) {
	return binary.LittleEndian.Uint32(buf), 4
}
