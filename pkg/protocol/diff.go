package protocol

import "fmt"

const diffSize = 16

// MaxDiffsPerPackage is the number of diffs that fit next to a code byte and a
// count byte.
const MaxDiffsPerPackage = (Capacity - 2) / diffSize

// BlockDiff is a single block change exchanged between client and server.
type BlockDiff struct {
	X, Y, Z int32
	Type    uint32
}

// WriteBlockDiffs appends a count byte and as many diffs as fit in one package,
// at most MaxDiffsPerPackage. It returns how many were written; the caller keeps
// the rest for a later package.
func WriteBlockDiffs(b *Buffer, diffs []BlockDiff) (int, error) {
	n := min(len(diffs), MaxDiffsPerPackage, (b.Free()-1)/diffSize)
	if err := b.WriteU8(uint8(n)); err != nil {
		return 0, err
	}
	for _, d := range diffs[:n] {
		if err := writeDiff(b, d); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func writeDiff(b *Buffer, d BlockDiff) error {
	if err := b.WriteI32(d.X); err != nil {
		return err
	}
	if err := b.WriteI32(d.Y); err != nil {
		return err
	}
	if err := b.WriteI32(d.Z); err != nil {
		return err
	}
	return b.WriteU32(d.Type)
}

// ReadBlockDiffs reads a count byte followed by that many diffs.
func ReadBlockDiffs(b *Buffer) ([]BlockDiff, error) {
	count, err := b.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("read diff count: %w", err)
	}
	if int(count)*diffSize > b.Unread() {
		return nil, fmt.Errorf("read %d diffs: %w", count, ErrBufferUnderflow)
	}

	diffs := make([]BlockDiff, count)
	for i := range diffs {
		d := &diffs[i]
		d.X, _ = b.ReadI32()
		d.Y, _ = b.ReadI32()
		d.Z, _ = b.ReadI32()
		d.Type, _ = b.ReadU32()
	}
	return diffs, nil
}
