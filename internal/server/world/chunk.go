package world

import (
	"github.com/go-theft-craft/voxelstream/pkg/protocol"
	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// EncodeChunk returns the compressed snapshot of a touched chunk. touched is
// false, with no data, when the chunk was never modified and the client should
// generate it itself.
func (w *World) EncodeChunk(key chunk.Key) (data []byte, touched bool, err error) {
	w.mu.RLock()
	c, ok := w.chunks[key]
	if ok {
		c = c.Clone()
	}
	w.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	data, err = protocol.CompressChunk(c)
	if err != nil {
		return nil, true, err
	}
	return data, true, nil
}
