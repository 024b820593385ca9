package render

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// RenderItem is one draw call: a mesh drawn with a material under a world transform.
// Items live in an ItemArena and are only valid until the arena's next Reset.
type RenderItem struct {
	Material         material.Material
	MeshInstance     *model.MeshInstance
	SkeletonMatrices []mgl32.Mat4
	WorldMatrix      mgl32.Mat4
	WorldBounds      common.AABB
	Camera           camera.Camera

	// RenderOrderHint is the projection of the object's bounds center on the camera's viewing
	// axis. Larger values are farther from the camera.
	RenderOrderHint float32
}

// ItemArena hands out RenderItem slots for one frame. Slots are allocated once and reused: Reset
// rewinds the cursor without freeing anything. When a frame needs more slots than the arena
// holds, the arena doubles; slots already handed out keep their addresses.
type ItemArena struct {
	slots  []*RenderItem
	cursor int
	logger *zap.Logger
}

// NewItemArena creates an arena with capacity preallocated slots.
//
// Parameters:
//   - capacity: the initial slot count (at least 1)
//   - logger: receives a warning each time the arena grows
//
// Returns:
//   - *ItemArena: the arena
func NewItemArena(capacity int, logger *zap.Logger) *ItemArena {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &ItemArena{logger: logger}
	a.grow(max(capacity, 1))
	return a
}

// Alloc returns a zeroed slot for the current frame.
func (a *ItemArena) Alloc() *RenderItem {
	if a.cursor == len(a.slots) {
		prev := len(a.slots)
		a.grow(prev)
		a.logger.Warn("render item arena grew", zap.Int("from", prev), zap.Int("to", len(a.slots)))
	}
	item := a.slots[a.cursor]
	a.cursor++
	*item = RenderItem{}
	return item
}

// Reset returns every slot to the arena. Items handed out before Reset must no longer be used.
func (a *ItemArena) Reset() {
	a.cursor = 0
}

// Len returns the number of slots handed out since the last Reset.
func (a *ItemArena) Len() int {
	return a.cursor
}

// Cap returns the number of allocated slots.
func (a *ItemArena) Cap() int {
	return len(a.slots)
}

func (a *ItemArena) grow(n int) {
	block := make([]RenderItem, n)
	for i := range block {
		a.slots = append(a.slots, &block[i])
	}
}
