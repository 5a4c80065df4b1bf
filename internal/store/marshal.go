package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalConditions converts condition counts to JSON TEXT.
// Keys are sorted by encoding/json; HTML escaping is disabled so stored
// text matches what users see.
func marshalConditions(c map[string]int) (string, error) {
	if len(c) == 0 {
		return "{}", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("marshal conditions: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalConditions parses JSON TEXT to condition counts.
func unmarshalConditions(data string) (map[string]int, error) {
	c := map[string]int{}
	if data == "" || data == "{}" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("unmarshal conditions: %w", err)
	}
	return c, nil
}
