// Package mask turns a threshold into a per-location binary mask and writes it.
package mask

// Mask holds one value per location: 1.0 where the location's temporal mean
// is at or below the threshold, 0.0 elsewhere.
type Mask []float64

// Build applies threshold to the mean vector.
func Build(means []float64, threshold float64) Mask {
	m := make(Mask, len(means))
	for i, mu := range means {
		if mu <= threshold {
			m[i] = 1.0
		}
	}
	return m
}

// Count returns how many locations are marked and unmarked.
func (m Mask) Count() (ones, zeros int) {
	for _, v := range m {
		if v == 1.0 {
			ones++
		} else {
			zeros++
		}
	}
	return ones, zeros
}
