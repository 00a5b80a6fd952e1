package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1024, cfg.Threshold.Resolution)
	assert.Equal(t, "scott", cfg.Threshold.Bandwidth)
	assert.Empty(t, cfg.Threshold.FallbackResolutions)
	assert.False(t, cfg.Plot.Enabled, "plotting is off unless asked for")
	assert.Equal(t, TextData{Comment: "#"}, cfg.Text)
	require.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    *ConfigData
		wantErr bool
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			want: DefaultConfig(),
		},
		{
			name: "full document",
			yaml: `
threshold:
  resolution: 2048
  fallback_resolutions: [4096, 8192]
  bandwidth: silverman
plot:
  enabled: true
text:
  transpose: true
  skip_rows: 1
  comment: "%"
`,
			want: &ConfigData{
				Threshold: ThresholdData{
					Resolution:          2048,
					FallbackResolutions: []int{4096, 8192},
					Bandwidth:           "silverman",
				},
				Plot: PlotData{Enabled: true},
				Text: TextData{Transpose: true, SkipRows: 1, Comment: "%"},
			},
		},
		{
			name: "empty comment disables comments",
			yaml: "text:\n  comment: \"\"\n",
			want: func() *ConfigData {
				c := DefaultConfig()
				c.Text.Comment = ""
				return c
			}(),
		},
		{
			name:    "negative skip rows",
			yaml:    "text:\n  skip_rows: -1\n",
			wantErr: true,
		},
		{
			name: "plot disabled explicitly",
			yaml: "plot:\n  enabled: false\n",
			want: DefaultConfig(),
		},
		{
			name:    "resolution too small",
			yaml:    "threshold:\n  resolution: 2\n",
			wantErr: true,
		},
		{
			name:    "fallback too small",
			yaml:    "threshold:\n  fallback_resolutions: [1]\n",
			wantErr: true,
		},
		{
			name:    "unknown bandwidth",
			yaml:    "threshold:\n  bandwidth: wide\n",
			wantErr: true,
		},
		{
			name:    "unknown key",
			yaml:    "threshold:\n  resolutoin: 2048\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mask.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold:\n  resolution: 512\n"), 0o644))

	cfg, err := NewYAMLProvider(path).LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Threshold.Resolution)

	_, err = NewYAMLProvider(filepath.Join(dir, "missing.yaml")).LoadConfig()
	require.Error(t, err)
}
