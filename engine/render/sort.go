package render

import (
	"cmp"

	"github.com/Carmen-Shannon/oxy-render/engine/light"
)

// CompareOpaque orders opaque items by material render order, then material render order hint
// (grouping draws by material), then front to back.
func CompareOpaque(a, b *RenderItem) int {
	if c := cmp.Compare(a.Material.RenderOrder(), b.Material.RenderOrder()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Material.RenderOrderHint(), b.Material.RenderOrderHint()); c != 0 {
		return c
	}
	return cmp.Compare(a.RenderOrderHint, b.RenderOrderHint)
}

// CompareTransparent orders transparent items by material render order, then back to front.
func CompareTransparent(a, b *RenderItem) int {
	if c := cmp.Compare(a.Material.RenderOrder(), b.Material.RenderOrder()); c != 0 {
		return c
	}
	return cmp.Compare(b.RenderOrderHint, a.RenderOrderHint)
}

// CompareLights orders lights by type, with shadow casters after non-casters of the same type.
func CompareLights(a, b light.Light) int {
	if c := cmp.Compare(a.Type(), b.Type()); c != 0 {
		return c
	}
	return cmp.Compare(castRank(a), castRank(b))
}

func castRank(l light.Light) int {
	if l.CastsShadows() {
		return 1
	}
	return 0
}
