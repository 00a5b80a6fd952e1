// Package nifti reads single-file NIfTI-1 and NIfTI-2 images, including
// CIFTI-2 dense data series, optionally gzip-compressed.
package nifti

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	nifti1HeaderSize = 348
	nifti2HeaderSize = 540
)

// NIfTI datatype codes
const (
	DTUint8   = 2
	DTInt16   = 4
	DTInt32   = 8
	DTFloat32 = 16
	DTFloat64 = 64
	DTInt8    = 256
	DTUint16  = 512
	DTUint32  = 768
	DTInt64   = 1024
	DTUint64  = 1280
)

// CIFTI-2 intent codes occupy 3000-3099; dense data series is 3002.
const (
	IntentCiftiFirst    = 3000
	IntentCiftiLast     = 3099
	IntentCiftiDtseries = 3002
)

var (
	ErrNotNIfTI     = errors.New("not a NIfTI file")
	ErrTwoFile      = errors.New("two-file (.hdr/.img) NIfTI images are not supported")
	ErrDatatype     = errors.New("unsupported NIfTI datatype")
	ErrBadDimension = errors.New("invalid NIfTI dimensions")
)

// Header is the version-independent subset of a NIfTI header the reader needs.
type Header struct {
	Version    int
	ByteOrder  binary.ByteOrder
	Dim        [8]int64
	Datatype   int16
	Bitpix     int16
	VoxOffset  int64
	SclSlope   float64
	SclInter   float64
	IntentCode int32
	Descrip    string
}

// IsCifti reports whether the intent code marks a CIFTI-2 matrix.
func (h *Header) IsCifti() bool {
	return h.IntentCode >= IntentCiftiFirst && h.IntentCode <= IntentCiftiLast
}

// NumValues is the number of stored voxel values implied by dim. Decoded
// headers are validated so the product cannot overflow.
func (h *Header) NumValues() int64 {
	n := int64(1)
	for i := 1; i <= int(h.Dim[0]); i++ {
		n *= h.Dim[i]
	}
	return n
}

// Scale applies scl_slope/scl_inter. A zero or non-finite slope means the
// stored values are used as is.
func (h *Header) Scale(v float64) float64 {
	if h.SclSlope == 0 || math.IsNaN(h.SclSlope) || math.IsInf(h.SclSlope, 0) {
		return v
	}
	return v*h.SclSlope + h.SclInter
}

// nifti1Header mirrors the 348-byte on-disk layout. Blank fields are skipped
// by binary.Read.
type nifti1Header struct {
	SizeofHdr  int32
	_          [35]byte
	DimInfo    byte
	Dim        [8]int16
	IntentP    [3]float32
	IntentCode int16
	Datatype   int16
	Bitpix     int16
	SliceStart int16
	Pixdim     [8]float32
	VoxOffset  float32
	SclSlope   float32
	SclInter   float32
	_          [28]byte
	Descrip    [80]byte
	AuxFile    [24]byte
	_          [76]byte
	IntentName [16]byte
	Magic      [4]byte
}

// nifti2Header mirrors the 540-byte on-disk layout.
type nifti2Header struct {
	SizeofHdr  int32
	Magic      [8]byte
	Datatype   int16
	Bitpix     int16
	Dim        [8]int64
	IntentP    [3]float64
	Pixdim     [8]float64
	VoxOffset  int64
	SclSlope   float64
	SclInter   float64
	_          [48]byte
	Descrip    [80]byte
	AuxFile    [24]byte
	_          [160]byte
	IntentCode int32
	IntentName [16]byte
	DimInfo    byte
	_          [15]byte
}

// ReadHeader reads and decodes a NIfTI-1 or NIfTI-2 header from r, consuming
// exactly the header bytes.
func ReadHeader(r io.Reader) (*Header, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, fmt.Errorf("reading header size: %w", err)
	}

	order, size, err := detectVersion(sizeBuf)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	copy(buf, sizeBuf[:])
	if _, err := io.ReadFull(r, buf[4:]); err != nil {
		return nil, fmt.Errorf("reading %d-byte header: %w", size, err)
	}

	if size == nifti1HeaderSize {
		return decodeNIfTI1(buf, order)
	}
	return decodeNIfTI2(buf, order)
}

func detectVersion(sizeBuf [4]byte) (binary.ByteOrder, int, error) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		switch order.Uint32(sizeBuf[:]) {
		case nifti1HeaderSize:
			return order, nifti1HeaderSize, nil
		case nifti2HeaderSize:
			return order, nifti2HeaderSize, nil
		}
	}
	return nil, 0, ErrNotNIfTI
}

func decodeNIfTI1(buf []byte, order binary.ByteOrder) (*Header, error) {
	var raw nifti1Header
	if err := binary.Read(bytes.NewReader(buf), order, &raw); err != nil {
		return nil, fmt.Errorf("decoding NIfTI-1 header: %w", err)
	}

	switch string(raw.Magic[:3]) {
	case "n+1":
	case "ni1":
		return nil, ErrTwoFile
	default:
		return nil, fmt.Errorf("%w: bad NIfTI-1 magic %q", ErrNotNIfTI, raw.Magic[:])
	}

	h := &Header{
		Version:    1,
		ByteOrder:  order,
		Datatype:   raw.Datatype,
		Bitpix:     raw.Bitpix,
		VoxOffset:  int64(raw.VoxOffset),
		SclSlope:   float64(raw.SclSlope),
		SclInter:   float64(raw.SclInter),
		IntentCode: int32(raw.IntentCode),
		Descrip:    cString(raw.Descrip[:]),
	}
	for i, d := range raw.Dim {
		h.Dim[i] = int64(d)
	}
	return h, h.validate()
}

func decodeNIfTI2(buf []byte, order binary.ByteOrder) (*Header, error) {
	var raw nifti2Header
	if err := binary.Read(bytes.NewReader(buf), order, &raw); err != nil {
		return nil, fmt.Errorf("decoding NIfTI-2 header: %w", err)
	}

	switch string(raw.Magic[:3]) {
	case "n+2":
	case "ni2":
		return nil, ErrTwoFile
	default:
		return nil, fmt.Errorf("%w: bad NIfTI-2 magic %q", ErrNotNIfTI, raw.Magic[:])
	}

	h := &Header{
		Version:    2,
		ByteOrder:  order,
		Dim:        raw.Dim,
		Datatype:   raw.Datatype,
		Bitpix:     raw.Bitpix,
		VoxOffset:  raw.VoxOffset,
		SclSlope:   raw.SclSlope,
		SclInter:   raw.SclInter,
		IntentCode: raw.IntentCode,
		Descrip:    cString(raw.Descrip[:]),
	}
	return h, h.validate()
}

func (h *Header) validate() error {
	if h.Dim[0] < 1 || h.Dim[0] > 7 {
		return fmt.Errorf("%w: dim[0]=%d", ErrBadDimension, h.Dim[0])
	}
	width, err := bytesPerValue(h.Datatype)
	if err != nil {
		return err
	}
	limit := int64(math.MaxInt) / int64(width)
	n := int64(1)
	for i := 1; i <= int(h.Dim[0]); i++ {
		if h.Dim[i] < 1 {
			return fmt.Errorf("%w: dim[%d]=%d", ErrBadDimension, i, h.Dim[i])
		}
		if n > limit/h.Dim[i] {
			return fmt.Errorf("%w: dim[1..%d] overflows the addressable size", ErrBadDimension, h.Dim[0])
		}
		n *= h.Dim[i]
	}
	return nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
