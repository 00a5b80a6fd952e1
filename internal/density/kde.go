// Package density fits Gaussian kernel density estimates over 1-D samples.
package density

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerateInput is returned when the samples cannot support a density
// estimate, most commonly because every value is the same.
var ErrDegenerateInput = errors.New("degenerate input for density estimation")

// BandwidthRule selects how the kernel bandwidth is derived from the sample.
type BandwidthRule string

const (
	// Scott uses factor n^(-1/5).
	Scott BandwidthRule = "scott"
	// Silverman uses factor (3n/4)^(-1/5).
	Silverman BandwidthRule = "silverman"
)

// ParseBandwidthRule maps a configuration value to a rule. Empty means Scott.
func ParseBandwidthRule(s string) (BandwidthRule, error) {
	switch BandwidthRule(strings.ToLower(strings.TrimSpace(s))) {
	case "", Scott:
		return Scott, nil
	case Silverman:
		return Silverman, nil
	default:
		return "", fmt.Errorf("unknown bandwidth rule %q", s)
	}
}

// Factor returns the multiplier applied to the sample standard deviation.
func (r BandwidthRule) Factor(n int) float64 {
	switch r {
	case Silverman:
		return math.Pow(float64(n)*3/4, -1.0/5)
	default:
		return math.Pow(float64(n), -1.0/5)
	}
}

// KDE is a fitted Gaussian kernel density estimate. It is immutable.
type KDE struct {
	samples   []float64
	bandwidth float64
	rule      BandwidthRule
}

// Fit builds a KDE over samples. The bandwidth is the sample standard
// deviation (n-1 denominator) times the rule's factor, the same convention
// as scipy's gaussian_kde.
func Fit(samples []float64, rule BandwidthRule) (*KDE, error) {
	n := len(samples)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrDegenerateInput, n)
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: sample %d is %v", ErrDegenerateInput, i, v)
		}
	}

	if floats.Min(samples) == floats.Max(samples) {
		return nil, fmt.Errorf("%w: all %d samples are %v", ErrDegenerateInput, n, samples[0])
	}
	sd := stat.StdDev(samples, nil)

	if rule == "" {
		rule = Scott
	}

	own := make([]float64, n)
	copy(own, samples)

	return &KDE{
		samples:   own,
		bandwidth: sd * rule.Factor(n),
		rule:      rule,
	}, nil
}

// Bandwidth returns the kernel standard deviation.
func (k *KDE) Bandwidth() float64 {
	return k.bandwidth
}

// Rule returns the bandwidth rule the estimate was fit with.
func (k *KDE) Rule() BandwidthRule {
	return k.rule
}

// N returns the number of samples.
func (k *KDE) N() int {
	return len(k.samples)
}

// Evaluate returns the estimated density at x.
func (k *KDE) Evaluate(x float64) float64 {
	sum := 0.0
	for _, xi := range k.samples {
		sum += distuv.UnitNormal.Prob((x - xi) / k.bandwidth)
	}
	return sum / (float64(len(k.samples)) * k.bandwidth)
}
