package playlists

import (
	"reflect"
	"testing"
)

func TestPositionCalculator_canMove(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		count     int
		delta     int
		want      bool
	}{
		{"nothing selected", nil, 5, 1, false},
		{"zero delta", []int{1, 2}, 5, 0, false},
		{"up", []int{2, 3}, 5, -1, true},
		{"up past the first item", []int{0, 1}, 5, -1, false},
		{"down", []int{1, 2}, 5, 1, true},
		{"down past the last item", []int{3, 4}, 5, 1, false},
		{"unsorted selection", []int{3, 1, 2}, 5, -1, true},
		{"single item jumps two", []int{2}, 5, -2, true},
		{"single item to the end", []int{2}, 5, 2, true},
		{"first item stays first", []int{0}, 5, -1, false},
		{"last item stays last", []int{4}, 5, 1, false},
		{"position out of range", []int{7}, 5, -1, false},
		{"negative position", []int{-1, 2}, 5, 1, false},
		{"duplicate position", []int{2, 2}, 5, 1, false},
		{"empty playlist", []int{0}, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := newPositionCalculator(tt.positions, tt.count, tt.delta)
			if got := calc.canMove(); got != tt.want {
				t.Errorf("canMove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionCalculator_newPositions(t *testing.T) {
	// Results follow the caller's order, not the sorted one.
	calc := newPositionCalculator([]int{4, 2, 3}, 5, -1)
	if got, want := calc.newPositions([]int{4, 2, 3}), []int{3, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("newPositions() = %v, want %v", got, want)
	}

	calc = newPositionCalculator([]int{3, 4}, 7, -2)
	if got, want := calc.newPositions([]int{3, 4}), []int{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("newPositions() = %v, want %v", got, want)
	}
}

func TestPositionCalculator_order(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		count     int
		delta     int
		want      []int
	}{
		{
			name:      "cannot move returns nil",
			positions: []int{0},
			count:     5,
			delta:     -1,
			want:      nil,
		},
		{
			name:      "move up single position",
			positions: []int{2},
			count:     5,
			delta:     -1,
			want:      []int{0, 2, 1, 3, 4},
		},
		{
			name:      "move up multiple positions",
			positions: []int{2, 3},
			count:     5,
			delta:     -1,
			want:      []int{0, 2, 3, 1, 4},
		},
		{
			name:      "move down single position",
			positions: []int{2},
			count:     5,
			delta:     1,
			want:      []int{0, 1, 3, 2, 4},
		},
		{
			name:      "move down multiple positions",
			positions: []int{1, 2},
			count:     5,
			delta:     1,
			want:      []int{0, 3, 1, 2, 4},
		},
		{
			name:      "move up by 2",
			positions: []int{3},
			count:     5,
			delta:     -2,
			want:      []int{0, 3, 1, 2, 4},
		},
		{
			name:      "move down by 2",
			positions: []int{1},
			count:     5,
			delta:     2,
			want:      []int{0, 2, 3, 1, 4},
		},
		{
			name:      "move up scattered positions",
			positions: []int{4, 2},
			count:     6,
			delta:     -1,
			want:      []int{0, 2, 1, 4, 3, 5},
		},
		{
			name:      "move down scattered positions by 2",
			positions: []int{0, 2},
			count:     5,
			delta:     2,
			want:      []int{1, 3, 0, 4, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := newPositionCalculator(tt.positions, tt.count, tt.delta)
			got := calc.order()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionCalculator_span(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		delta     int
		lo, hi    int
	}{
		{"up", []int{2, 3}, -1, 1, 3},
		{"down", []int{1, 2}, 2, 1, 4},
		{"scattered", []int{4, 0}, 1, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := newPositionCalculator(tt.positions, 10, tt.delta).span()
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("span() = (%d, %d), want (%d, %d)", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestPositionCalculator_valid(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		want      bool
	}{
		{"in range", []int{0, 4}, true},
		{"negative", []int{-1, 2}, false},
		{"past end", []int{5}, false},
		{"duplicate", []int{2, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newPositionCalculator(tt.positions, 5, 1).valid(); got != tt.want {
				t.Errorf("valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionCalculator_doesNotMutateInput(t *testing.T) {
	original := []int{3, 1, 2}
	positions := make([]int, len(original))
	copy(positions, original)

	calc := newPositionCalculator(positions, 5, -1)
	calc.order()

	if !reflect.DeepEqual(positions, original) {
		t.Errorf("input positions were mutated: got %v, want %v", positions, original)
	}
}
