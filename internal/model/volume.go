package model

// Volume describes a mounted filesystem usable as a backup destination.
type Volume struct {
	Path       string `json:"path"`
	Label      string `json:"label"`
	TotalBytes uint64 `json:"total_bytes"`
	FreeBytes  uint64 `json:"free_bytes"`
	UsedBytes  uint64 `json:"used_bytes"`
}
