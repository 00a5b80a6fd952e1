package nifti

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testImage struct {
	version  int
	order    binary.ByteOrder
	dim      []int64
	datatype int16
	intent   int32
	slope    float64
	inter    float64
	ext      []byte // bytes between header and data, after the 4-byte flag
	values   []float64
}

func (ti testImage) encode(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	var dim [8]int64
	dim[0] = int64(len(ti.dim))
	copy(dim[1:], ti.dim)

	width, err := bytesPerValue(ti.datatype)
	require.NoError(t, err)

	switch ti.version {
	case 1:
		h := nifti1Header{
			SizeofHdr:  nifti1HeaderSize,
			IntentCode: int16(ti.intent),
			Datatype:   ti.datatype,
			Bitpix:     int16(width * 8),
			VoxOffset:  float32(nifti1HeaderSize + 4 + len(ti.ext)),
			SclSlope:   float32(ti.slope),
			SclInter:   float32(ti.inter),
		}
		for i := range dim {
			h.Dim[i] = int16(dim[i])
		}
		copy(h.Magic[:], "n+1\x00")
		require.NoError(t, binary.Write(&buf, ti.order, &h))
	case 2:
		h := nifti2Header{
			SizeofHdr:  nifti2HeaderSize,
			Datatype:   ti.datatype,
			Bitpix:     int16(width * 8),
			Dim:        dim,
			VoxOffset:  int64(nifti2HeaderSize + 4 + len(ti.ext)),
			SclSlope:   ti.slope,
			SclInter:   ti.inter,
			IntentCode: ti.intent,
		}
		copy(h.Magic[:], "n+2\x00\r\n\x1a\n")
		require.NoError(t, binary.Write(&buf, ti.order, &h))
	default:
		t.Fatalf("unknown NIfTI version %d", ti.version)
	}

	buf.Write([]byte{0, 0, 0, 0})
	buf.Write(ti.ext)

	for _, v := range ti.values {
		switch ti.datatype {
		case DTFloat32:
			require.NoError(t, binary.Write(&buf, ti.order, float32(v)))
		case DTFloat64:
			require.NoError(t, binary.Write(&buf, ti.order, v))
		case DTInt16:
			require.NoError(t, binary.Write(&buf, ti.order, int16(v)))
		case DTUint8:
			buf.WriteByte(uint8(v))
		default:
			t.Fatalf("test encoder does not handle datatype %d", ti.datatype)
		}
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, b []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	zw := gzip.NewWriter(&out)
	_, err := zw.Write(b)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return out.Bytes()
}

func TestRead(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}

	tests := []struct {
		name    string
		image   testImage
		gzipped bool
		want    []float64
	}{
		{
			name: "nifti-1 little endian float32",
			image: testImage{
				version: 1, order: binary.LittleEndian, dim: []int64{2, 3},
				datatype: DTFloat32, values: values,
			},
			want: values,
		},
		{
			name: "nifti-1 big endian int16 with scaling",
			image: testImage{
				version: 1, order: binary.BigEndian, dim: []int64{6},
				datatype: DTInt16, slope: 0.5, inter: 10, values: values,
			},
			want: []float64{10.5, 11, 11.5, 12, 12.5, 13},
		},
		{
			name: "nifti-2 cifti dtseries float32 with extension",
			image: testImage{
				version: 2, order: binary.LittleEndian, dim: []int64{1, 1, 1, 1, 3, 2},
				datatype: DTFloat32, intent: IntentCiftiDtseries,
				ext: bytes.Repeat([]byte{'x'}, 64), values: values,
			},
			want: values,
		},
		{
			name: "nifti-2 big endian float64 gzipped",
			image: testImage{
				version: 2, order: binary.BigEndian, dim: []int64{3, 2},
				datatype: DTFloat64, values: values,
			},
			gzipped: true,
			want:    values,
		},
		{
			name: "nifti-1 uint8 zero slope ignored",
			image: testImage{
				version: 1, order: binary.LittleEndian, dim: []int64{6},
				datatype: DTUint8, slope: 0, inter: 100, values: values,
			},
			want: values,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.image.encode(t)
			if tt.gzipped {
				raw = gzipBytes(t, raw)
			}

			img, err := Read(bytes.NewReader(raw))
			require.NoError(t, err)

			assert.Equal(t, tt.image.version, img.Header.Version)
			assert.Equal(t, tt.image.intent, img.Header.IntentCode)
			assert.Equal(t, int64(len(tt.image.dim)), img.Header.Dim[0])
			require.Len(t, img.Data, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], img.Data[i], 1e-6, "value %d", i)
			}
		})
	}
}

func TestReadCiftiFlag(t *testing.T) {
	raw := testImage{
		version: 2, order: binary.LittleEndian, dim: []int64{1, 1, 1, 1, 2, 2},
		datatype: DTFloat32, intent: IntentCiftiDtseries, values: []float64{1, 2, 3, 4},
	}.encode(t)

	img, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, img.Header.IsCifti())
	assert.Equal(t, int64(4), img.Header.NumValues())
}

func TestReadErrors(t *testing.T) {
	t.Run("not nifti", func(t *testing.T) {
		_, err := Read(bytes.NewReader(bytes.Repeat([]byte{7}, 600)))
		require.ErrorIs(t, err, ErrNotNIfTI)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Read(bytes.NewReader(nil))
		require.ErrorIs(t, err, ErrNotNIfTI)
	})

	t.Run("two-file magic", func(t *testing.T) {
		raw := testImage{
			version: 1, order: binary.LittleEndian, dim: []int64{2},
			datatype: DTFloat32, values: []float64{1, 2},
		}.encode(t)
		copy(raw[344:], "ni1\x00")
		_, err := Read(bytes.NewReader(raw))
		require.ErrorIs(t, err, ErrTwoFile)
	})

	t.Run("unsupported datatype", func(t *testing.T) {
		raw := testImage{
			version: 1, order: binary.LittleEndian, dim: []int64{2},
			datatype: DTFloat32, values: []float64{1, 2},
		}.encode(t)
		binary.LittleEndian.PutUint16(raw[70:], 32) // complex64
		_, err := Read(bytes.NewReader(raw))
		require.ErrorIs(t, err, ErrDatatype)
	})

	t.Run("truncated data", func(t *testing.T) {
		raw := testImage{
			version: 2, order: binary.LittleEndian, dim: []int64{4},
			datatype: DTFloat64, values: []float64{1, 2, 3, 4},
		}.encode(t)
		_, err := Read(bytes.NewReader(raw[:len(raw)-8]))
		require.Error(t, err)
	})

	t.Run("zero dimension", func(t *testing.T) {
		raw := testImage{
			version: 2, order: binary.LittleEndian, dim: []int64{0},
			datatype: DTFloat64,
		}.encode(t)
		_, err := Read(bytes.NewReader(raw))
		require.ErrorIs(t, err, ErrBadDimension)
	})

	t.Run("overflowing dimensions", func(t *testing.T) {
		raw := testImage{
			version: 2, order: binary.LittleEndian, dim: []int64{1 << 62, 2},
			datatype: DTFloat32,
		}.encode(t)
		var err error
		require.NotPanics(t, func() { _, err = Read(bytes.NewReader(raw)) })
		require.ErrorIs(t, err, ErrBadDimension)
	})

	t.Run("dimensions larger than the data", func(t *testing.T) {
		raw := testImage{
			version: 2, order: binary.LittleEndian, dim: []int64{1 << 40},
			datatype: DTFloat32, values: []float64{1, 2, 3},
		}.encode(t)
		_, err := Read(bytes.NewReader(raw))
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("data spanning several chunks", func(t *testing.T) {
		values := make([]float64, readChunk+3)
		for i := range values {
			values[i] = float64(i % 1000)
		}
		raw := testImage{
			version: 2, order: binary.LittleEndian, dim: []int64{int64(len(values))},
			datatype: DTFloat32, values: values,
		}.encode(t)
		img, err := Read(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, values, img.Data)
	})
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub.dtseries.nii.gz")
	raw := testImage{
		version: 2, order: binary.LittleEndian, dim: []int64{1, 1, 1, 1, 2, 1},
		datatype: DTFloat32, intent: IntentCiftiDtseries, values: []float64{math.Pi, 1},
	}.encode(t)
	require.NoError(t, os.WriteFile(path, gzipBytes(t, raw), 0o644))

	img, err := Open(path)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, img.Data[0], 1e-6)

	_, err = Open(filepath.Join(dir, "missing.nii"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
