package jsonstream

import (
	"unicode/utf16"
	"unicode/utf8"
)

// appendScalar encodes r into the output encoding and appends it to
// buf, returning the StringAttrs bits that scalar contributes. The
// output attribute bitmask is updated per output scalar written to a
// string token.
func appendScalar(buf *growableBuffer, alloc Allocator, r rune, enc Encoding) StringAttrs {
	var attrs StringAttrs
	switch {
	case r == 0:
		attrs = AttrContainsNull | AttrContainsControl
	case r < 0x20:
		attrs = AttrContainsControl
	case r >= 0x10000:
		attrs = AttrContainsNonASCII | AttrContainsNonBMP
	case r >= 0x80:
		attrs = AttrContainsNonASCII
	}

	switch enc {
	case EncodingUTF16LE, EncodingUTF16BE:
		little := enc == EncodingUTF16LE
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			appendUTF16Unit(buf, alloc, uint16(hi), little)
			appendUTF16Unit(buf, alloc, uint16(lo), little)
		} else {
			appendUTF16Unit(buf, alloc, uint16(r), little)
		}
	case EncodingUTF32LE:
		buf.append(alloc, byte(r), byte(r>>8), byte(r>>16), byte(r>>24))
	case EncodingUTF32BE:
		buf.append(alloc, byte(r>>24), byte(r>>16), byte(r>>8), byte(r))
	default: // EncodingUTF8 and fallback
		var tmp [utf8.UTFMax]byte
		n := utf8.EncodeRune(tmp[:], r)
		buf.append(alloc, tmp[:n]...)
	}
	return attrs
}

func appendUTF16Unit(buf *growableBuffer, alloc Allocator, unit uint16, little bool) {
	if little {
		buf.append(alloc, byte(unit), byte(unit>>8))
	} else {
		buf.append(alloc, byte(unit>>8), byte(unit))
	}
}
