package main

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	tri "github.com/esimov/triklops"
)

// parseHexColor parses an RGB color written as "rrggbb" or "#rrggbb".
func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("%q is not a 6 digit hex color", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xff}, nil
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// resolveSeed returns the seed given on the command line, or draws one from
// entropy. It is called once per invocation so every job shares the value.
func resolveSeed(seed *uint64) *uint64 {
	if seed != nil {
		return seed
	}
	v := tri.RandomSeed()
	return &v
}
