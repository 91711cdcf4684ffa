package braille

import "math/bits"

// asciiCandidate pairs a fallback glyph with the 2x4 pixel mask (in the same
// bit layout as a braille cell) it visually approximates.
type asciiCandidate struct {
	Ch   rune
	Mask uint8
}

// asciiCandidates is the fixed mask set M referenced by spec §4.1: block
// glyphs ordered from emptiest to fullest, used to break population-count
// ties by first-in-table order.
var asciiCandidates = []asciiCandidate{
	{' ', 0x00},
	{'▘', 0x03}, // upper-left quadrant
	{'▝', 0x18}, // upper-right quadrant
	{'▖', 0x44}, // lower-left quadrant
	{'▗', 0xA0}, // lower-right quadrant
	{'▀', 0x1B}, // upper half
	{'▄', 0xE4}, // lower half
	{'▌', 0x47}, // left half
	{'▐', 0xB8}, // right half
	{'▚', 0xA3}, // diagonal: upper-left + lower-right
	{'▞', 0x5C}, // diagonal: upper-right + lower-left
	{'█', 0xFF}, // full block
}

// BuildASCIIFallback computes, for every possible 8-bit braille mask, the
// ASCII/block glyph whose mask shares the most set bits with it
// (population-count ranking; ties broken by first-in-table order). It is
// pure and deterministic, so callers needing the table (tests, alternate
// renderers) can call it directly instead of depending on Buffer internals.
func BuildASCIIFallback() [256]rune {
	var table [256]rune
	for m := 0; m < 256; m++ {
		bestIdx := -1
		bestCommon := -1
		for idx, cand := range asciiCandidates {
			common := bits.OnesCount8(uint8(m) & cand.Mask)
			if common > bestCommon {
				bestCommon = common
				bestIdx = idx
			}
		}
		table[m] = asciiCandidates[bestIdx].Ch
	}
	return table
}

var asciiFallbackTable = BuildASCIIFallback()
