package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/data/sub-01_task-rest.dtseries.nii", want: "sub-01_task-rest"},
		{in: "bold.nii.gz", want: "bold"},
		{in: "/data/noext", want: "noext"},
		{in: "/data/.hidden", want: ".hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.in))
		})
	}
}

func TestHistogramPlotterWritesPNG(t *testing.T) {
	means := make([]float64, 0, 200)
	for i := 0; i < 100; i++ {
		means = append(means, float64(i)*0.001, 10+float64(i)*0.001)
	}
	snapshot := append([]float64(nil), means...)

	path := filepath.Join(t.TempDir(), "sub01_scanA.png")
	require.NoError(t, NewHistogramPlotter().Plot(means, 5, "sub01", path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), raw[:8])
	assert.Equal(t, snapshot, means, "plotting must not modify the means")
}

func TestHistogramPlotterMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allPlots", "sub01_scanA.png")
	err := NewHistogramPlotter().Plot([]float64{1, 2, 3}, 2, "sub01", path)
	require.Error(t, err)
}
