package core

import "testing"

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{
			name:     "overlapping rects",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(5, 5, 10, 10),
			expected: true,
		},
		{
			name:     "non-overlapping horizontal",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(15, 0, 10, 10),
			expected: false,
		},
		{
			name:     "non-overlapping vertical",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(0, 15, 10, 10),
			expected: false,
		},
		{
			name:     "adjacent horizontal (no overlap)",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(10, 0, 10, 10),
			expected: false,
		},
		{
			name:     "adjacent vertical (no overlap)",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(0, 10, 10, 10),
			expected: false,
		},
		{
			name:     "contained rect",
			a:        NewRect(0, 0, 20, 20),
			b:        NewRect(5, 5, 5, 5),
			expected: true,
		},
		{
			name:     "single pixel overlap",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(9, 9, 10, 10),
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.a.Intersects(tc.b)
			if result != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", result, tc.expected)
			}
			// Also test symmetry
			resultReverse := tc.b.Intersects(tc.a)
			if resultReverse != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", resultReverse, tc.expected)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(5, 10, 20, 15)

	if r.Right() != 25 {
		t.Errorf("Right() = %d, expected 25", r.Right())
	}
	if r.Bottom() != 25 {
		t.Errorf("Bottom() = %d, expected 25", r.Bottom())
	}

	moved := r.Translate(3, -2)
	if moved.X != 8 || moved.Y != 8 || moved.W != 20 || moved.H != 15 {
		t.Errorf("Translate(3, -2) = %+v", moved)
	}
}

func TestRectContainsRect(t *testing.T) {
	area := NewRect(0, 0, 100, 50)

	tests := []struct {
		name     string
		r        Rect
		expected bool
	}{
		{"fully inside", NewRect(10, 10, 10, 10), true},
		{"touching bottom-right corner", NewRect(90, 40, 10, 10), true},
		{"same rect", area, true},
		{"crossing right edge", NewRect(95, 10, 10, 10), false},
		{"crossing top edge", NewRect(10, -1, 10, 10), false},
		{"completely outside", NewRect(200, 200, 10, 10), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := area.ContainsRect(tc.r); got != tc.expected {
				t.Errorf("ContainsRect(%+v) = %v, expected %v", tc.r, got, tc.expected)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Point{0, 0}, Point{3, 4}); d != 5 {
		t.Errorf("Distance() = %v, expected 5", d)
	}
	if d := Distance(Point{7, 7}, Point{7, 7}); d != 0 {
		t.Errorf("Distance() to self = %v, expected 0", d)
	}
}

func TestDirectionReverseAndParse(t *testing.T) {
	if DirUp.Reverse() != DirDown {
		t.Error("Reverse of up should be down")
	}
	if DirLeft.Reverse() != DirRight {
		t.Error("Reverse of left should be right")
	}

	for _, d := range CardinalDirections {
		parsed, ok := ParseDirection(d.String())
		if !ok || parsed != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d.String(), parsed, ok)
		}
	}

	if _, ok := ParseDirection("diagonal"); ok {
		t.Error("ParseDirection should reject unknown names")
	}
}

func TestAbs(t *testing.T) {
	if Abs(5) != 5 {
		t.Error("Abs(5) should be 5")
	}
	if Abs(-5) != 5 {
		t.Error("Abs(-5) should be 5")
	}
	if Abs(0) != 0 {
		t.Error("Abs(0) should be 0")
	}
}
