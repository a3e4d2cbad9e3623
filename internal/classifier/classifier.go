// Package classifier decides which scanned files are old enough to remove.
package classifier

import (
	"fmt"
	"math"
	"time"

	"github.com/fenilsonani/stalesweep/internal/config"
	"github.com/fenilsonani/stalesweep/internal/scanner"
)

// ErrNegativeDaysOld is returned by Cutoff for a negative threshold
var ErrNegativeDaysOld = config.ErrNegativeDaysOld

// Candidate is a scanned file selected for removal
type Candidate struct {
	scanner.ScannedFile
	SourceLocationDescription string `json:"source_location" yaml:"source_location"`
}

// SizeMB returns the size in mebibytes rounded to two decimals
func (c Candidate) SizeMB() float64 {
	return RoundMB(c.SizeBytes)
}

// RoundMB converts bytes to mebibytes rounded to two decimals.
func RoundMB(bytes uint64) float64 {
	return math.Round(float64(bytes)/(1024*1024)*100) / 100
}

// Cutoff returns now minus daysOld fixed 24-hour days, independent of
// daylight-saving changes in now's zone.
func Cutoff(now time.Time, daysOld int) (time.Time, error) {
	if daysOld < 0 {
		return time.Time{}, fmt.Errorf("%w (got %d)", ErrNegativeDaysOld, daysOld)
	}
	return now.Add(-time.Duration(daysOld) * 24 * time.Hour), nil
}

// Classify returns the files last written strictly before cutoff, in input
// order. A file written exactly at the cutoff is kept.
func Classify(files []scanner.ScannedFile, description string, cutoff time.Time) []Candidate {
	candidates := make([]Candidate, 0, len(files))
	for _, f := range files {
		if f.LastWriteTime.Before(cutoff) {
			candidates = append(candidates, Candidate{
				ScannedFile:               f,
				SourceLocationDescription: description,
			})
		}
	}
	return candidates
}

// TotalSize sums the candidate sizes
func TotalSize(candidates []Candidate) uint64 {
	var total uint64
	for _, c := range candidates {
		total += c.SizeBytes
	}
	return total
}
