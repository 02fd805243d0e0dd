package playlists

import "sort"

// positionCalculator calculates the new order of a playlist when a
// selection of items moves by the same delta.
// It separates the pure position calculation logic from database operations.
type positionCalculator struct {
	sorted []int // sorted positions to move
	count  int   // total item count
	delta  int   // movement amount (negative = up, positive = down)
}

// newPositionCalculator creates a calculator for moving positions by delta.
func newPositionCalculator(positions []int, count, delta int) *positionCalculator {
	sorted := make([]int, len(positions))
	copy(sorted, positions)
	sort.Ints(sorted)
	return &positionCalculator{sorted: sorted, count: count, delta: delta}
}

// valid reports whether every position exists and appears once.
func (c *positionCalculator) valid() bool {
	for i, pos := range c.sorted {
		if pos < 0 || pos >= c.count {
			return false
		}
		if i > 0 && c.sorted[i-1] == pos {
			return false
		}
	}
	return true
}

// canMove returns true if the move is valid (within bounds).
// Returns false if there are no positions to move, delta is zero,
// or the move would go out of bounds.
func (c *positionCalculator) canMove() bool {
	if len(c.sorted) == 0 || c.delta == 0 || !c.valid() {
		return false
	}
	if c.delta < 0 {
		return c.sorted[0]+c.delta >= 0
	}
	return c.sorted[len(c.sorted)-1]+c.delta < c.count
}

// newPositions returns the new positions after the move.
// The input should be the original (unsorted) positions array.
func (c *positionCalculator) newPositions(originalPositions []int) []int {
	result := make([]int, len(originalPositions))
	for i, pos := range originalPositions {
		result[i] = pos + c.delta
	}
	return result
}

// span returns the inclusive range of positions the move touches.
// Items outside it keep their position.
func (c *positionCalculator) span() (lo, hi int) {
	first, last := c.sorted[0], c.sorted[len(c.sorted)-1]
	return min(first, first+c.delta), max(last, last+c.delta)
}

// order returns, for each position after the move, the position the item
// held before it. Selected items land at pos+delta; the others fill the
// remaining slots keeping their relative order.
func (c *positionCalculator) order() []int {
	if !c.canMove() {
		return nil
	}

	result := make([]int, c.count)
	taken := make([]bool, c.count)
	selected := make(map[int]bool, len(c.sorted))
	for _, pos := range c.sorted {
		selected[pos] = true
		result[pos+c.delta] = pos
		taken[pos+c.delta] = true
	}

	slot := 0
	for pos := range c.count {
		if selected[pos] {
			continue
		}
		for taken[slot] {
			slot++
		}
		result[slot] = pos
		taken[slot] = true
	}
	return result
}
