package nifti

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Image is a decoded NIfTI image. Data holds every stored value, scaled, in
// file order (first dimension fastest).
type Image struct {
	Header *Header
	Data   []float64
}

// Open reads the NIfTI file at path. Gzip compression is detected from the
// stream itself, so ".nii.gz" and ".nii" are handled the same way.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read decodes a NIfTI image from r.
func Read(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotNIfTI, err)
	}

	var src io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer zr.Close()
		src = bufio.NewReader(zr)
	}

	hdr, err := ReadHeader(src)
	if err != nil {
		return nil, err
	}

	headerSize := int64(nifti1HeaderSize)
	if hdr.Version == 2 {
		headerSize = nifti2HeaderSize
	}
	if hdr.VoxOffset < headerSize {
		// NIfTI-1 single files must carry the 4-byte extension flag, but
		// some writers leave vox_offset at zero.
		hdr.VoxOffset = headerSize + 4
	}

	// Skip the extension flag and any extensions (CIFTI XML lives here).
	if _, err := io.CopyN(io.Discard, src, hdr.VoxOffset-headerSize); err != nil {
		return nil, fmt.Errorf("skipping to vox_offset %d: %w", hdr.VoxOffset, err)
	}

	data, err := readValues(src, hdr)
	if err != nil {
		return nil, err
	}

	return &Image{Header: hdr, Data: data}, nil
}

// readChunk bounds how many values are buffered at once, so a header that
// claims more data than the stream holds fails on the first short read.
const readChunk = 1 << 16

func readValues(r io.Reader, hdr *Header) ([]float64, error) {
	width, err := bytesPerValue(hdr.Datatype)
	if err != nil {
		return nil, err
	}

	n := int(hdr.NumValues())
	order := hdr.ByteOrder
	data := make([]float64, 0, min(n, readChunk))
	raw := make([]byte, min(n, readChunk)*width)

	for remaining := n; remaining > 0; {
		k := min(remaining, readChunk)
		b := raw[:k*width]
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, fmt.Errorf("reading %d values of datatype %d: %w", n, hdr.Datatype, err)
		}
		for i := 0; i < k; i++ {
			data = append(data, hdr.Scale(decodeValue(b[i*width:(i+1)*width], hdr.Datatype, order)))
		}
		remaining -= k
	}
	return data, nil
}

func bytesPerValue(datatype int16) (int, error) {
	switch datatype {
	case DTUint8, DTInt8:
		return 1, nil
	case DTInt16, DTUint16:
		return 2, nil
	case DTInt32, DTUint32, DTFloat32:
		return 4, nil
	case DTInt64, DTUint64, DTFloat64:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrDatatype, datatype)
	}
}

func decodeValue(b []byte, datatype int16, order binary.ByteOrder) float64 {
	switch datatype {
	case DTUint8:
		return float64(b[0])
	case DTInt8:
		return float64(int8(b[0]))
	case DTInt16:
		return float64(int16(order.Uint16(b)))
	case DTUint16:
		return float64(order.Uint16(b))
	case DTInt32:
		return float64(int32(order.Uint32(b)))
	case DTUint32:
		return float64(order.Uint32(b))
	case DTFloat32:
		return float64(math.Float32frombits(order.Uint32(b)))
	case DTInt64:
		return float64(int64(order.Uint64(b)))
	case DTUint64:
		return float64(order.Uint64(b))
	case DTFloat64:
		return math.Float64frombits(order.Uint64(b))
	}
	return math.NaN()
}
