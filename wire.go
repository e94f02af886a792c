// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"encoding/binary"
	"fmt"
)

// ParamsRecordSize is the size of the marshalled parameter record. The three
// scalars are padded to 16 bytes to satisfy uniform-buffer alignment.
const ParamsRecordSize = 16

// MarshalParams encodes p as the fixed-layout record consumed by
// accelerators:
//
//	offset 0  width    u32 little-endian
//	offset 4  height   u32
//	offset 8  max_iter u32
//	offset 12 padding  u32 (zero)
//
// p must be valid.
func MarshalParams(p Params) []byte {
	buf := make([]byte, ParamsRecordSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(p.Width))   //nolint:gosec // validated
	binary.LittleEndian.PutUint32(buf[4:], uint32(p.Height))  //nolint:gosec // validated
	binary.LittleEndian.PutUint32(buf[8:], uint32(p.MaxIter)) //nolint:gosec // validated
	return buf
}

// UnmarshalParams decodes a record produced by MarshalParams.
func UnmarshalParams(b []byte) (Params, error) {
	if len(b) != ParamsRecordSize {
		return Params{}, fmt.Errorf("%w: params record is %d bytes, want %d",
			ErrInvalidParameters, len(b), ParamsRecordSize)
	}
	p := Params{
		Width:   int(binary.LittleEndian.Uint32(b[0:])),
		Height:  int(binary.LittleEndian.Uint32(b[4:])),
		MaxIter: int(binary.LittleEndian.Uint32(b[8:])),
	}
	return p, p.Validate()
}

// CountsSize returns the byte size of the output buffer for p.
func CountsSize(p Params) uint64 {
	return uint64(p.Cells()) * 4 //nolint:gosec // Cells bounded by MaxCells
}

// UnmarshalCounts decodes a flat buffer of little-endian u32 escape counts,
// one per cell in row-major order. A buffer of the wrong length is an
// ErrAcceleratorFailure: the device did not produce a whole grid.
func UnmarshalCounts(b []byte, cells int) ([]uint32, error) {
	if len(b) != cells*4 {
		return nil, fmt.Errorf("%w: counts buffer is %d bytes, want %d",
			ErrAcceleratorFailure, len(b), cells*4)
	}
	counts := make([]uint32, cells)
	for i := range counts {
		counts[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return counts, nil
}

// MarshalCounts is the inverse of UnmarshalCounts.
func MarshalCounts(counts []uint32) []byte {
	b := make([]byte, len(counts)*4)
	for i, c := range counts {
		binary.LittleEndian.PutUint32(b[i*4:], c)
	}
	return b
}
