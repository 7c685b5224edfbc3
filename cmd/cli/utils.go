// Utility functions for the sliceguard CLI

package cli

import (
	"strconv"
	"strings"
)

// parseValue turns a CLI string into the most specific JSON-compatible
// value: bool, integer, float, then string.
func parseValue(value string) interface{} {
	// Only explicit boolean strings; ParseBool would accept "0"/"1"
	// which should stay integers.
	lowerValue := strings.ToLower(value)
	if lowerValue == "true" || lowerValue == "false" {
		return lowerValue == "true"
	}

	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return value
}
