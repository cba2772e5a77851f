package model

import "fmt"

// Operation selects how the media server is treated while the copy runs.
type Operation string

const (
	// OpHotCopy copies while the server keeps running.
	OpHotCopy Operation = "hot"
	// OpColdCopy stops the server for the whole copy.
	OpColdCopy Operation = "cold"
	// OpSmartSync behaves like a hot copy followed by a short cold sync
	// window, so the server is paused as well.
	OpSmartSync Operation = "smart"
)

func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OpHotCopy, OpColdCopy, OpSmartSync:
		return Operation(s), nil
	default:
		return "", fmt.Errorf("unknown operation %q (want hot, cold or smart)", s)
	}
}

// StopsService reports whether the operation pauses the media server.
func (o Operation) StopsService() bool {
	return o == OpColdCopy || o == OpSmartSync
}
