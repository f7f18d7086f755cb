// Package quality decodes ASCII-encoded sequencing quality strings.
package quality

import (
	"errors"
	"unicode/utf8"
)

// Phred encoding offsets.
const (
	Phred33Offset = 33
	Phred64Offset = 64
)

// ErrDivisionByZero is returned when averaging an empty score array.
var ErrDivisionByZero = errors.New("division by zero: empty score array")

// Encoding represents the quality score encoding scheme.
type Encoding uint8

// Quality encoding schemes.
const (
	EncodingPhred33 Encoding = iota // Sanger/Illumina 1.8+ (offset 33)
	EncodingPhred64                 // Illumina 1.3-1.7 (offset 64)
)

// Offset returns the ASCII offset subtracted for enc.
func (enc Encoding) Offset() int {
	if enc == EncodingPhred64 {
		return Phred64Offset
	}
	return Phred33Offset
}

// String returns the conventional name of the encoding.
func (enc Encoding) String() string {
	if enc == EncodingPhred64 {
		return "phred64"
	}
	return "phred33"
}

// DetectEncoding scans quality strings and returns the likely encoding.
// If any byte < 59 (';'), it's definitely Phred+33.
// If minimum byte >= 64 ('@'), it's Phred+64.
// Otherwise (ambiguous 59-63 range), defaults to Phred+33.
func DetectEncoding(qualities [][]byte) Encoding {
	minByte := byte(255)

	for _, qual := range qualities {
		for _, b := range qual {
			if b < minByte {
				minByte = b
			}
			if b < 59 {
				return EncodingPhred33
			}
		}
	}

	if minByte == 255 {
		return EncodingPhred33
	}
	if minByte >= 64 {
		return EncodingPhred64
	}
	return EncodingPhred33
}

// Decode converts a Phred+33 quality string into one score per character.
// Characters are not range checked: anything below '!' decodes to a
// negative score.
func Decode(qual string) []int {
	return DecodeOffset(qual, Phred33Offset)
}

// DecodeOffset is Decode with an explicit ASCII offset.
func DecodeOffset(qual string, offset int) []int {
	scores := make([]int, 0, len(qual))
	for _, r := range qual {
		scores = append(scores, int(r)-offset)
	}
	return scores
}

// DecodeBytes decodes a quality line held in a byte slice, appending the
// scores to dst and returning the extended slice.
func DecodeBytes(dst []int, qual []byte, offset int) []int {
	for i := 0; i < len(qual); {
		b := qual[i]
		if b < utf8.RuneSelf {
			dst = append(dst, int(b)-offset)
			i++
			continue
		}
		r, size := utf8.DecodeRune(qual[i:])
		dst = append(dst, int(r)-offset)
		i += size
	}
	return dst
}

// Average returns the arithmetic mean of scores.
func Average(scores []int) (float64, error) {
	if len(scores) == 0 {
		return 0, ErrDivisionByZero
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores)), nil
}
