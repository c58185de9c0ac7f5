package jsonstream

// Encoding is the closed set of Unicode encodings the decoder
// understands
type Encoding int8

const (
	EncodingUnknown Encoding = iota
	EncodingUTF8
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingUTF32LE
	EncodingUTF32BE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "UTF-8"
	case EncodingUTF16LE:
		return "UTF-16LE"
	case EncodingUTF16BE:
		return "UTF-16BE"
	case EncodingUTF32LE:
		return "UTF-32LE"
	case EncodingUTF32BE:
		return "UTF-32BE"
	default:
		return "unknown"
	}
}

// minSequenceLength is the minimum number of bytes a scalar can take
// in the given encoding. EncodingUnknown has none; it is only
// meaningful before parsing starts.
func (e Encoding) minSequenceLength() int {
	switch e {
	case EncodingUTF8:
		return 1
	case EncodingUTF16LE, EncodingUTF16BE:
		return 2
	case EncodingUTF32LE, EncodingUTF32BE:
		return 4
	default:
		return 0
	}
}

// decodeResult is the verdict the byte decoder returns for each byte
// fed to it
type decodeResult int8

const (
	decodePending decodeResult = iota
	decodeComplete
	decodeInvalidInclusive
	decodeInvalidExclusive
)

// decoderState is the small state enum shared across every encoding;
// the encoding together with this state determines how the
// accumulator bits are interpreted.
type decoderState int8

const (
	decStateReset decoderState = iota
	decStateProcessed1of2
	decStateProcessed1of3
	decStateProcessed2of3
	decStateProcessed1of4
	decStateProcessed2of4
	decStateProcessed3of4
)

const (
	maxRune        = 0x10FFFF
	surrogateStart = 0xD800
	surrogateMid   = 0xDC00
	surrogateEnd   = 0xDFFF
)

// byteDecoder is a pure per-byte state machine. It holds at most a
// few bytes of partial-sequence state: a decoder state enum plus a
// 32-bit accumulator.
type byteDecoder struct {
	state decoderState
	bits  uint32 // accumulated partial scalar / surrogate-pair bits

	// replayByte/hasReplay hold a byte that was already consumed into
	// bits before an exclusive rejection became visible, and so must
	// be fed through DecodeByte again (ahead of the triggering byte)
	// to keep byte-pair/byte-quad alignment. Only the UTF-16
	// lone-high-surrogate case sets this.
	replayByte byte
	hasReplay  bool
}

// Reset returns the decoder to its initial state.
func (d *byteDecoder) Reset() {
	d.state = decStateReset
	d.bits = 0
	d.hasReplay = false
}

// TakeReplayByte returns a byte stashed by the most recent exclusive
// rejection that must be reprocessed before the byte that revealed the
// rejection, and clears it. Returns ok=false when nothing is pending.
func (d *byteDecoder) TakeReplayByte() (byte, bool) {
	if !d.hasReplay {
		return 0, false
	}
	d.hasReplay = false
	return d.replayByte, true
}

// DecodeByte feeds one byte to the decoder under the given encoding
// and returns the verdict, the total byte length of the sequence that
// verdict concerns, and (for decodeComplete) the decoded scalar.
func (d *byteDecoder) DecodeByte(enc Encoding, b byte) (decodeResult, int, rune) {
	switch enc {
	case EncodingUTF8:
		return d.decodeUTF8(b)
	case EncodingUTF16LE:
		return d.decodeUTF16(b, true)
	case EncodingUTF16BE:
		return d.decodeUTF16(b, false)
	case EncodingUTF32LE:
		return d.decodeUTF32(b, true)
	case EncodingUTF32BE:
		return d.decodeUTF32(b, false)
	default:
		// Unknown is only valid pre-start; the autodetector consumes
		// bytes itself and never calls DecodeByte with it once an
		// encoding has been chosen.
		return decodeInvalidExclusive, 0, 0
	}
}

func (d *byteDecoder) reject(inclusiveBytes int) (decodeResult, int, rune) {
	d.Reset()
	return decodeInvalidInclusive, inclusiveBytes, 0
}

// rejectExclusive reports n previously consumed bytes as invalid,
// without counting the byte that triggered the rejection. The caller
// must reprocess that byte in a fresh decoder state.
func (d *byteDecoder) rejectExclusive(n int) (decodeResult, int, rune) {
	d.Reset()
	return decodeInvalidExclusive, n, 0
}

// rejectExclusiveWithReplay is rejectExclusive plus one extra byte
// that was consumed into the accumulator after the n reported bytes
// but before the triggering byte, and so is not part of the invalid
// sequence either. The caller must reprocess replay before it
// reprocesses the triggering byte.
func (d *byteDecoder) rejectExclusiveWithReplay(n int, replay byte) (decodeResult, int, rune) {
	d.Reset()
	d.replayByte = replay
	d.hasReplay = true
	return decodeInvalidExclusive, n, 0
}

// ---- UTF-8 ----

func (d *byteDecoder) decodeUTF8(b byte) (decodeResult, int, rune) {
	switch d.state {
	case decStateReset:
		switch {
		case b < 0x80:
			return decodeComplete, 1, rune(b)
		case b < 0xC0:
			// stray continuation byte
			return d.reject(1)
		case b == 0xC0 || b == 0xC1:
			// always-overlong lead bytes
			return d.reject(1)
		case b < 0xE0:
			d.bits = uint32(b & 0x1F)
			d.state = decStateProcessed1of2
			return decodePending, 0, 0
		case b < 0xF0:
			d.bits = uint32(b & 0x0F)
			d.state = decStateProcessed1of3
			return decodePending, 0, 0
		case b < 0xF5:
			d.bits = uint32(b & 0x07)
			d.state = decStateProcessed1of4
			return decodePending, 0, 0
		default: // F5-FF: always out of range
			return d.reject(1)
		}

	case decStateProcessed1of2:
		if !isUTF8Continuation(b) {
			return d.rejectExclusive(1)
		}
		r := d.bits<<6 | uint32(b&0x3F)
		d.Reset()
		return decodeComplete, 2, rune(r)

	case decStateProcessed1of3:
		if !isUTF8Continuation(b) {
			return d.rejectExclusive(1)
		}
		d.bits = d.bits<<6 | uint32(b&0x3F)
		d.state = decStateProcessed2of3
		return decodePending, 0, 0

	case decStateProcessed2of3:
		if !isUTF8Continuation(b) {
			return d.rejectExclusive(2)
		}
		r := d.bits<<6 | uint32(b&0x3F)
		d.Reset()
		if r < 0x800 || (r >= surrogateStart && r <= surrogateEnd) {
			return decodeInvalidInclusive, 3, 0
		}
		return decodeComplete, 3, rune(r)

	case decStateProcessed1of4:
		if !isUTF8Continuation(b) {
			return d.rejectExclusive(1)
		}
		d.bits = d.bits<<6 | uint32(b&0x3F)
		d.state = decStateProcessed2of4
		return decodePending, 0, 0

	case decStateProcessed2of4:
		if !isUTF8Continuation(b) {
			return d.rejectExclusive(2)
		}
		d.bits = d.bits<<6 | uint32(b&0x3F)
		d.state = decStateProcessed3of4
		return decodePending, 0, 0

	case decStateProcessed3of4:
		if !isUTF8Continuation(b) {
			return d.rejectExclusive(3)
		}
		r := d.bits<<6 | uint32(b&0x3F)
		d.Reset()
		if r < 0x10000 || r > maxRune {
			return decodeInvalidInclusive, 4, 0
		}
		return decodeComplete, 4, rune(r)
	}
	return d.reject(1)
}

func isUTF8Continuation(b byte) bool { return b&0xC0 == 0x80 }

// ---- UTF-16 ----

// decodeUTF16 handles both endiannesses. A surrogate pair spans two
// 16-bit code units (4 bytes); a lone trailing surrogate is rejected
// inclusively over its own 2 bytes, and a leading surrogate not
// followed by a trailing surrogate is rejected exclusively over its
// own 2 bytes, with the decoder reset and the first byte of the
// offending code unit handed back via TakeReplayByte, so that code
// unit is decoded afresh (replay byte first, then the byte that
// revealed the mismatch).
func (d *byteDecoder) decodeUTF16(b byte, little bool) (decodeResult, int, rune) {
	switch d.state {
	case decStateReset:
		d.bits = uint32(b)
		d.state = decStateProcessed1of2
		return decodePending, 0, 0

	case decStateProcessed1of2:
		unit := combine16(d.bits, uint32(b), little)
		switch {
		case unit >= surrogateMid && unit <= surrogateEnd:
			return d.reject(2)
		case unit >= surrogateStart && unit < surrogateMid:
			d.bits = unit
			d.state = decStateProcessed1of4
			return decodePending, 0, 0
		default:
			d.Reset()
			return decodeComplete, 2, rune(unit)
		}

	case decStateProcessed1of4:
		// high surrogate is in d.bits; b is the first byte of the
		// trailing code unit.
		d.bits = d.bits<<8 | uint32(b)
		d.state = decStateProcessed2of4
		return decodePending, 0, 0

	case decStateProcessed2of4:
		high := d.bits >> 8
		firstByte := d.bits & 0xFF
		low := combine16(firstByte, uint32(b), little)
		if low < surrogateMid || low > surrogateEnd {
			// firstByte (byte3) was already consumed into d.bits when
			// this became visible on b (byte4); it was never its own
			// decode decision and must be replayed before b, or
			// byte-pair alignment desyncs for the rest of the stream.
			return d.rejectExclusiveWithReplay(2, byte(firstByte))
		}
		scalar := 0x10000 + (high-surrogateStart)*0x400 + (low - surrogateMid)
		d.Reset()
		return decodeComplete, 4, rune(scalar)
	}
	return d.reject(1)
}

func combine16(b0, b1 uint32, little bool) uint32 {
	if little {
		return b0 | b1<<8
	}
	return b0<<8 | b1
}

// ---- UTF-32 ----

func (d *byteDecoder) decodeUTF32(b byte, little bool) (decodeResult, int, rune) {
	switch d.state {
	case decStateReset:
		d.bits = uint32(b)
		d.state = decStateProcessed1of4
		return decodePending, 0, 0
	case decStateProcessed1of4:
		d.bits |= uint32(b) << 8
		d.state = decStateProcessed2of4
		return decodePending, 0, 0
	case decStateProcessed2of4:
		d.bits |= uint32(b) << 16
		d.state = decStateProcessed3of4
		return decodePending, 0, 0
	case decStateProcessed3of4:
		d.bits |= uint32(b) << 24
		r := orderUTF32(d.bits, little)
		d.Reset()
		if r > maxRune || (r >= surrogateStart && r <= surrogateEnd) {
			return decodeInvalidInclusive, 4, 0
		}
		return decodeComplete, 4, rune(r)
	}
	return d.reject(1)
}

// orderUTF32 reinterprets the 4 accumulated bytes (stored LE-wise in
// d.bits as they arrived) according to the declared stream order.
func orderUTF32(bits uint32, little bool) uint32 {
	if little {
		return bits
	}
	b0 := bits & 0xFF
	b1 := (bits >> 8) & 0xFF
	b2 := (bits >> 16) & 0xFF
	b3 := (bits >> 24) & 0xFF
	return b0<<24 | b1<<16 | b2<<8 | b3
}
