package timeseries

import (
	"fmt"

	"github.com/chrissnell/dtseries-mask/pkg/nifti"
)

// NIfTILoader reads NIfTI-1/NIfTI-2 images and CIFTI-2 dense series.
type NIfTILoader struct{}

// Load reads path and orients the data as (locations, timepoints).
func (NIfTILoader) Load(path string) (*Matrix, error) {
	img, err := nifti.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	m, err := FromImage(img)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return m, nil
}

// FromImage orients a decoded image. CIFTI matrices keep timepoints on dim[5]
// and brainordinates on dim[6], stored timepoint-fastest, which is already
// row-major (location, time). Volumes store voxels fastest with time on
// dim[4] and above, so they are transposed.
func FromImage(img *nifti.Image) (*Matrix, error) {
	h := img.Header

	if h.IsCifti() {
		if h.Dim[0] < 6 {
			return nil, fmt.Errorf("CIFTI intent %d with only %d dimensions", h.IntentCode, h.Dim[0])
		}
		timepoints := int(h.Dim[5])
		locations := int(h.Dim[6])
		return NewMatrix(locations, timepoints, img.Data)
	}

	locations := 1
	for i := 1; i <= 3 && i <= int(h.Dim[0]); i++ {
		locations *= int(h.Dim[i])
	}
	timepoints := 1
	for i := 4; i <= int(h.Dim[0]); i++ {
		timepoints *= int(h.Dim[i])
	}

	data := make([]float64, locations*timepoints)
	for t := 0; t < timepoints; t++ {
		for loc := 0; loc < locations; loc++ {
			data[loc*timepoints+t] = img.Data[t*locations+loc]
		}
	}
	return NewMatrix(locations, timepoints, data)
}
