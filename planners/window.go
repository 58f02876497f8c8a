package planners

import (
	"fmt"

	"github.com/reusee/rlm/chunks"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/vars"
)

// ChunkWindow is the recommended chunk size and overlap, in runes.
type ChunkWindow struct {
	Size    int
	Overlap int
}

const (
	DefaultChunkSize    = 15000
	DefaultChunkOverlap = 500
)

// ChunkWindow panics when the configured overlap is not smaller than the size.
func (Module) ChunkWindow(
	loader configs.Loader,
) ChunkWindow {
	window := ChunkWindow{
		Size: vars.FirstNonZero(
			configs.First[int](loader, "chunk_size"),
			DefaultChunkSize,
		),
		Overlap: *vars.FirstNonZero(
			configs.First[*int](loader, "chunk_overlap"),
			vars.PtrTo(DefaultChunkOverlap),
		),
	}
	if err := chunks.CheckWindow(window.Size, window.Overlap); err != nil {
		panic(fmt.Errorf("config chunk_size/chunk_overlap: %w", err))
	}
	return window
}
