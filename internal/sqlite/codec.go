package sqlite

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EncodeSnapshot renders a serialized database as a JSON array of byte
// values, the persistence slot format.
func EncodeSnapshot(db []byte) []byte {
	out := make([]byte, 0, len(db)*4+2)
	out = append(out, '[')
	for i, b := range db {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(b), 10)
	}
	return append(out, ']')
}

// DecodeSnapshot parses a JSON array of byte values back into the
// serialized database.
func DecodeSnapshot(data []byte) ([]byte, error) {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("decoding snapshot: value %d at offset %d is not a byte", v, i)
		}
		out[i] = byte(v)
	}
	return out, nil
}
