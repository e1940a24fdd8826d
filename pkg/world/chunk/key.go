package chunk

import "math"

// Key packs two signed 32-bit chunk-grid coordinates into one value:
// the grid X in the high 32 bits, the grid Z in the low 32 bits.
type Key uint64

// KeyOf returns the key for grid coordinates (gx, gz).
func KeyOf(gx, gz int32) Key {
	return Key(uint64(uint32(gx))<<32 | uint64(uint32(gz)))
}

// KeyAt returns the key of the chunk containing world block column (x, z).
func KeyAt(x, z int) Key {
	return KeyOf(int32(IndexOf(x, Width)), int32(IndexOf(z, Length)))
}

// Offset returns the grid coordinates packed in k. It inverts KeyOf exactly.
func (k Key) Offset() (gx, gz int32) {
	return int32(uint32(k >> 32)), int32(uint32(k))
}

// Neighbor returns the key of the chunk dx, dz grid cells away.
func (k Key) Neighbor(dx, dz int32) Key {
	gx, gz := k.Offset()
	return KeyOf(gx+dx, gz+dz)
}

// Origin returns the world block coordinates of the chunk's (0, 0) column.
func (k Key) Origin() (x, z int) {
	gx, gz := k.Offset()
	return int(gx) * Width, int(gz) * Length
}

// IndexOf maps a world block coordinate to its chunk-grid index,
// rounding toward negative infinity.
func IndexOf(w, size int) int {
	if w < 0 {
		return (w+1)/size - 1
	}
	return w / size
}

// LocalIndexOf returns the position of world coordinate w inside its chunk, in [0, size).
func LocalIndexOf(w, size int) int {
	m := w % size
	if m < 0 {
		m += size
	}
	return m
}

// Rect is an inclusive rectangle of chunk-grid coordinates.
type Rect struct {
	MinX, MaxX int32
	MinZ, MaxZ int32
}

// RectAround returns the grid rectangle covering radius chunks on each side of
// the world position (x, z).
func RectAround(x, z float64, radius int) Rect {
	minX, maxX := span(x, radius, Width)
	minZ, maxZ := span(z, radius, Length)
	return Rect{MinX: minX, MaxX: maxX, MinZ: minZ, MaxZ: maxZ}
}

func span(coordinate float64, radius, size int) (lo, hi int32) {
	extent := float64(radius * size)
	lo = int32(IndexOf(int(math.Floor(coordinate-extent)), size))
	hi = int32(IndexOf(int(math.Floor(coordinate+extent)), size))
	return lo, hi
}

// Contains reports whether the chunk addressed by k lies inside r.
func (r Rect) Contains(k Key) bool {
	gx, gz := k.Offset()
	return gx >= r.MinX && gx <= r.MaxX && gz >= r.MinZ && gz <= r.MaxZ
}

// Len returns the number of chunks in r.
func (r Rect) Len() int {
	if r.MaxX < r.MinX || r.MaxZ < r.MinZ {
		return 0
	}
	return int(r.MaxX-r.MinX+1) * int(r.MaxZ-r.MinZ+1)
}

// Keys returns every key in r, X-major.
func (r Rect) Keys() []Key {
	keys := make([]Key, 0, r.Len())
	for x := r.MinX; x <= r.MaxX; x++ {
		for z := r.MinZ; z <= r.MaxZ; z++ {
			keys = append(keys, KeyOf(x, z))
		}
	}
	return keys
}
