package jsonstream

// autodetector buffers up to the first four input bytes when the
// input encoding is unknown and matches them against an RFC
// 4627-style BOM and zero-byte-pattern table.
type autodetector struct {
	buf [4]byte
	n   int
}

func (a *autodetector) reset() { a.n = 0 }

// bytes returns the buffered bytes collected so far, for replay
// through the decoder once an encoding has been chosen. Every
// buffered byte is replayed, BOM included: the lexer's own
// byte-offset-0 U+FEFF check is what enforces allow-bom, uniformly
// whether the BOM came from an explicit WithInputEncoding or from
// autodetection.
func (a *autodetector) bytes() []byte { return a.buf[:a.n] }

// feed adds one byte to the buffer. It returns true once four bytes
// have been collected (the normal case) so the caller can resolve the
// encoding and replay the buffered bytes.
func (a *autodetector) feed(b byte) bool {
	a.buf[a.n] = b
	a.n++
	return a.n == 4
}

func nz(b byte) bool { return b != 0 }

// resolve matches the buffered bytes (a.n of them, 0-4) against the
// BOM and zero-byte pattern table, returning the chosen encoding and
// the byte length of the BOM it matched (0 if none). The BOM bytes are
// not skipped: they are replayed with the rest (see bytes), and the
// lexer enforces the allow-bom option.
func (a *autodetector) resolve() (enc Encoding, bomLen int, ok bool) {
	b := a.buf
	switch a.n {
	case 4:
		switch {
		case b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
			return EncodingUTF8, 3, true
		case b[0] == 0xFF && b[1] == 0xFE && b[2] == 0x00 && b[3] == 0x00:
			return EncodingUTF32LE, 4, true
		case b[0] == 0xFF && b[1] == 0xFE && nz(b[2]) && b[3] == 0x00:
			return EncodingUTF16LE, 2, true
		case b[0] == 0x00 && b[1] == 0x00 && b[2] == 0xFE && b[3] == 0xFF:
			return EncodingUTF32BE, 4, true
		case b[0] == 0xFE && b[1] == 0xFF:
			return EncodingUTF16BE, 2, true
		case nz(b[0]) && nz(b[1]):
			return EncodingUTF8, 0, true
		case nz(b[0]) && b[1] == 0x00 && nz(b[2]):
			return EncodingUTF16LE, 0, true
		case nz(b[0]) && b[1] == 0x00 && b[2] == 0x00 && b[3] == 0x00:
			return EncodingUTF32LE, 0, true
		case b[0] == 0x00 && nz(b[1]):
			return EncodingUTF16BE, 0, true
		case b[0] == 0x00 && b[1] == 0x00 && b[2] == 0x00 && nz(b[3]):
			return EncodingUTF32BE, 0, true
		default:
			return EncodingUnknown, 0, false
		}

	case 3:
		// Short-input tail rule: always UTF-8.
		return EncodingUTF8, 0, true

	case 2:
		switch {
		case b[0] == 0xFF && b[1] == 0xFE:
			return EncodingUTF16LE, 2, true
		case b[0] == 0xFE && b[1] == 0xFF:
			return EncodingUTF16BE, 2, true
		case nz(b[0]) && nz(b[1]):
			return EncodingUTF8, 0, true
		case nz(b[0]) && b[1] == 0x00:
			return EncodingUTF16LE, 0, true
		case b[0] == 0x00 && nz(b[1]):
			return EncodingUTF16BE, 0, true
		default:
			return EncodingUnknown, 0, false
		}

	case 1:
		return EncodingUTF8, 0, true

	case 0:
		// Empty document: default to UTF-8 so the lexer's flush sees an
		// idle-state EOF and reports the real problem (an empty input
		// has no top-level value) via ErrMoreTokensExpected.
		return EncodingUTF8, 0, true

	default:
		return EncodingUnknown, 0, false
	}
}
