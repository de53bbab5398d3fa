package edgestore

import (
	"encoding/binary"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

// HeaderSize is the byte length of the persisted store header.
const HeaderSize = 8

type header struct {
	rowStride uint32
	rowCount  uint32
}

func (h header) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.rowStride)
	binary.LittleEndian.PutUint32(buf[4:8], h.rowCount)
}

// decodeHeader parses and checks a segment against the expected stride. It
// returns the header and the row payload that follows it.
func decodeHeader(name string, data []byte, wantStride int) (header, []byte, error) {
	if len(data) < HeaderSize {
		return header{}, nil, isoerrors.New(isoerrors.ErrCodeCorruptStore,
			"store %s: header truncated (%d bytes)", name, len(data))
	}
	h := header{
		rowStride: binary.LittleEndian.Uint32(data[0:4]),
		rowCount:  binary.LittleEndian.Uint32(data[4:8]),
	}
	if h.rowStride == 0 {
		return header{}, nil, isoerrors.New(isoerrors.ErrCodeCorruptStore, "store %s: zero row stride", name)
	}
	if int64(h.rowStride) != int64(wantStride) {
		return header{}, nil, isoerrors.New(isoerrors.ErrCodeSchemaMismatch,
			"store %s: persisted row stride %d, expected %d", name, h.rowStride, wantStride)
	}
	payload := data[HeaderSize:]
	if want := uint64(h.rowStride) * uint64(h.rowCount); uint64(len(payload)) < want {
		return header{}, nil, isoerrors.New(isoerrors.ErrCodeCorruptStore,
			"store %s: %d rows of %d bytes need %d bytes, have %d", name, h.rowCount, h.rowStride, want, len(payload))
	}
	return h, payload, nil
}
