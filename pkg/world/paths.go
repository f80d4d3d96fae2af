package world

// BoxPath returns the four corners of an axis-aligned box as a closed
// loop in counter-clockwise order (bottom-left first, Y up).
func BoxPath(center, size Vec2) []Vec2 {
	hw := size.X / 2
	hh := size.Y / 2
	return []Vec2{
		{center.X - hw, center.Y - hh},
		{center.X + hw, center.Y - hh},
		{center.X + hw, center.Y + hh},
		{center.X - hw, center.Y + hh},
	}
}

// PathBounds returns the axis-aligned bounding box of a point path.
// The second return is false for an empty path.
func PathBounds(path []Vec2) (min, max Vec2, ok bool) {
	if len(path) == 0 {
		return Vec2{}, Vec2{}, false
	}
	min, max = path[0], path[0]
	for _, p := range path[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max, true
}

// BoundsOverlap reports whether two axis-aligned boxes given by their
// min/max corners intersect (touching counts as intersecting).
func BoundsOverlap(minA, maxA, minB, maxB Vec2) bool {
	return minA.X <= maxB.X && maxA.X >= minB.X &&
		minA.Y <= maxB.Y && maxA.Y >= minB.Y
}
