// gcode.go: Trailing-comment metadata extraction from generated G-code
//
// Slicers append a block of `; key = value` comment lines to the end of the
// files they generate. The extractor is a total function over raw text: it
// never fails, it only finds less. Only the final 4KB of the input is
// examined since that is where the metadata block lives.

package sliceguard

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// gcodeTailWindow is how many trailing bytes of a G-code file are scanned
// for metadata comments.
const gcodeTailWindow = 4096

// GcodeMetadata holds the well-known trailing metadata fields plus any
// other `key = value` comment pairs discovered in the tail of the file.
// Numeric fields parsed from malformed text are NaN; callers must treat
// them as possibly non-finite.
type GcodeMetadata struct {
	EstimatedTime  string            `json:"estimatedTime,omitempty"`
	FilamentUsedMm float64           `json:"filamentUsedMm,omitempty"`
	FilamentUsedG  float64           `json:"filamentUsedG,omitempty"`
	FilamentCost   float64           `json:"filamentCost,omitempty"`
	LayerCount     int               `json:"layerCount,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// MarshalJSON omits absent and malformed numeric fields: NaN has no JSON
// representation, and encoding it verbatim would fail the whole document.
func (m GcodeMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 6)
	if m.EstimatedTime != "" {
		out["estimatedTime"] = m.EstimatedTime
	}
	if !math.IsNaN(m.FilamentUsedMm) && !math.IsInf(m.FilamentUsedMm, 0) {
		out["filamentUsedMm"] = m.FilamentUsedMm
	}
	if !math.IsNaN(m.FilamentUsedG) && !math.IsInf(m.FilamentUsedG, 0) {
		out["filamentUsedG"] = m.FilamentUsedG
	}
	if !math.IsNaN(m.FilamentCost) && !math.IsInf(m.FilamentCost, 0) {
		out["filamentCost"] = m.FilamentCost
	}
	if m.LayerCount != 0 {
		out["layerCount"] = m.LayerCount
	}
	if len(m.Extra) > 0 {
		out["extra"] = m.Extra
	}
	return json.Marshal(out)
}

// The five well-known patterns, tried in order against each comment line.
// The first match wins and suppresses generic capture for that line.
var (
	reEstimatedTime  = regexp.MustCompile(`(?i)^estimated printing time.*?=\s*(.+)$`)
	reFilamentUsedMm = regexp.MustCompile(`(?i)^filament used \[mm\]\s*=\s*(.+)$`)
	reFilamentUsedG  = regexp.MustCompile(`(?i)^filament used \[g\]\s*=\s*(.+)$`)
	reFilamentCost   = regexp.MustCompile(`(?i)^filament cost\s*=\s*(.+)$`)
	reLayerCount     = regexp.MustCompile(`(?i)^total layers count\s*=\s*(.+)$`)

	reGenericKV = regexp.MustCompile(`^([A-Za-z][^=]*?)\s*=\s*(.*)$`)
)

// ExtractGcodeMetadata scans the trailing comment block of raw G-code text
// and returns whatever metadata it finds. It is pure and never fails; any
// input, including the empty string, produces a (possibly empty) result.
func ExtractGcodeMetadata(text string) GcodeMetadata {
	meta := GcodeMetadata{
		FilamentUsedMm: math.NaN(),
		FilamentUsedG:  math.NaN(),
		FilamentCost:   math.NaN(),
		Extra:          make(map[string]string),
	}

	if len(text) > gcodeTailWindow {
		text = text[len(text)-gcodeTailWindow:]
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ";") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, ";"))
		if line == "" {
			continue
		}

		if m := reEstimatedTime.FindStringSubmatch(line); m != nil {
			meta.EstimatedTime = strings.TrimSpace(m[1])
			continue
		}
		if m := reFilamentUsedMm.FindStringSubmatch(line); m != nil {
			meta.FilamentUsedMm = parseFloatField(m[1])
			continue
		}
		if m := reFilamentUsedG.FindStringSubmatch(line); m != nil {
			meta.FilamentUsedG = parseFloatField(m[1])
			continue
		}
		if m := reFilamentCost.FindStringSubmatch(line); m != nil {
			meta.FilamentCost = parseFloatField(m[1])
			continue
		}
		if m := reLayerCount.FindStringSubmatch(line); m != nil {
			value := strings.TrimSpace(m[1])
			if n, err := strconv.Atoi(value); err == nil {
				meta.LayerCount = n
			} else if _, taken := meta.Extra["total_layers_count"]; !taken {
				// An int has no NaN; keep the unparsed text so the
				// malformed value is not lost entirely.
				meta.Extra["total_layers_count"] = value
			}
			continue
		}

		// Generic key = value capture: first occurrence wins, later
		// duplicates are dropped.
		if m := reGenericKV.FindStringSubmatch(line); m != nil {
			key := normalizeMetadataKey(m[1])
			if _, taken := meta.Extra[key]; !taken {
				meta.Extra[key] = strings.TrimSpace(m[2])
			}
		}
	}

	return meta
}

// parseFloatField parses a numeric metadata value, yielding NaN when the
// source text is malformed.
func parseFloatField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// normalizeMetadataKey lowercases a generic key and collapses internal
// whitespace runs to single underscores.
func normalizeMetadataKey(key string) string {
	return strings.Join(strings.Fields(strings.ToLower(key)), "_")
}
