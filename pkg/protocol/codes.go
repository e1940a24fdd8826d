package protocol

import "fmt"

// Request codes, client to server. The code is the first byte of every package.
const (
	RequestConnect uint8 = iota
	RequestUpdateBlockDiffs
	RequestLoadChunk
)

// Response codes, server to client.
const (
	ResponseWorldSettings uint8 = iota
	ResponseUpdateBlockDiffs
	ResponseChunkIsUnchanged
	ResponseChunkDataStart
	ResponseChunkDataPart
)

// RequestName returns a readable name for a request code.
func RequestName(code uint8) string {
	switch code {
	case RequestConnect:
		return "connect"
	case RequestUpdateBlockDiffs:
		return "update_block_diffs"
	case RequestLoadChunk:
		return "load_chunk"
	default:
		return fmt.Sprintf("unknown(%d)", code)
	}
}

// ResponseName returns a readable name for a response code.
func ResponseName(code uint8) string {
	switch code {
	case ResponseWorldSettings:
		return "world_settings"
	case ResponseUpdateBlockDiffs:
		return "update_block_diffs"
	case ResponseChunkIsUnchanged:
		return "chunk_is_unchanged"
	case ResponseChunkDataStart:
		return "chunk_data_start"
	case ResponseChunkDataPart:
		return "chunk_data_part"
	default:
		return fmt.Sprintf("unknown(%d)", code)
	}
}
