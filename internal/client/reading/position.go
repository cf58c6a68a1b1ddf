package reading

// Block is a block-level element of a rendered document. Top is the
// distance of its top edge from the top of the viewport; it is negative for
// blocks scrolled above the viewport.
type Block struct {
	Top float64
}

// BlockEnumerator is the view of a rendered document the tracker needs.
type BlockEnumerator interface {
	// Blocks returns the qualifying blocks in document order. ok is false
	// while the document is not rendered far enough to be enumerated.
	Blocks() (blocks []Block, ok bool)
	// ScrollBy scrolls the viewport; positive delta moves content up.
	ScrollBy(delta float64)
}

// Locate returns the block nearest the anchor line: the first block whose
// top is at or below anchor, or the last block with offset 0 when the
// reader has scrolled past every block. ok is false for an empty document.
func Locate(blocks []Block, anchor float64) (index int, offset float64, ok bool) {
	if len(blocks) == 0 {
		return 0, 0, false
	}
	for i, b := range blocks {
		if b.Top >= anchor {
			return i, b.Top - anchor, true
		}
	}
	return len(blocks) - 1, 0, true
}

// RestoreDelta returns how far to scroll so that block index ends up offset
// units below the anchor. An index past the end is clamped to the last block.
func RestoreDelta(blocks []Block, anchor float64, index int, offset float64) (float64, bool) {
	if len(blocks) == 0 || index < 0 {
		return 0, false
	}
	if index >= len(blocks) {
		index = len(blocks) - 1
	}
	return blocks[index].Top - (anchor + offset), true
}
