package pipeline

import "path/filepath"

const (
	PlotDirName = "allPlots"
	MaskDirName = "allMasks"
)

// PlotPath is <outdir>/allPlots/<subject>_<scanner>.png
func PlotPath(outputDir, subject, scanner string) string {
	return filepath.Join(outputDir, PlotDirName, subject+"_"+scanner+".png")
}

// MaskPath is <outdir>/allMasks/<subject>_<scanner>_mask.txt
func MaskPath(outputDir, subject, scanner string) string {
	return filepath.Join(outputDir, MaskDirName, subject+"_"+scanner+"_mask.txt")
}
