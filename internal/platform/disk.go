package platform

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// VolumeUsage describes the filesystem a location lives on.
type VolumeUsage struct {
	Path        string  `json:"path" yaml:"path"`
	Fstype      string  `json:"fstype" yaml:"fstype"`
	Total       uint64  `json:"total" yaml:"total"`
	Free        uint64  `json:"free" yaml:"free"`
	Used        uint64  `json:"used" yaml:"used"`
	UsedPercent float64 `json:"used_percent" yaml:"used_percent"`
}

// GetVolumeUsage reports usage of the volume containing path.
func GetVolumeUsage(path string) (*VolumeUsage, error) {
	stat, err := disk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read volume usage for %s: %w", path, err)
	}

	return &VolumeUsage{
		Path:        stat.Path,
		Fstype:      stat.Fstype,
		Total:       stat.Total,
		Free:        stat.Free,
		Used:        stat.Used,
		UsedPercent: stat.UsedPercent,
	}, nil
}
