package jsonstream

import (
	"fmt"
	"testing"
)

func bomBytesFor(enc Encoding) []byte {
	switch enc {
	case EncodingUTF8:
		return []byte{0xEF, 0xBB, 0xBF}
	case EncodingUTF16LE:
		return []byte{0xFF, 0xFE}
	case EncodingUTF16BE:
		return []byte{0xFE, 0xFF}
	case EncodingUTF32LE:
		return []byte{0xFF, 0xFE, 0x00, 0x00}
	case EncodingUTF32BE:
		return []byte{0x00, 0x00, 0xFE, 0xFF}
	}
	return nil
}

func encodeRune(enc Encoding, r rune) []byte {
	switch enc {
	case EncodingUTF8:
		return []byte(string(r))
	case EncodingUTF16LE:
		return []byte{byte(r), byte(r >> 8)}
	case EncodingUTF16BE:
		return []byte{byte(r >> 8), byte(r)}
	case EncodingUTF32LE:
		return []byte{byte(r), byte(r >> 8), byte(r >> 16), byte(r >> 24)}
	case EncodingUTF32BE:
		return []byte{byte(r >> 24), byte(r >> 16), byte(r >> 8), byte(r)}
	}
	return nil
}

func encodeASCII(enc Encoding, s string) []byte {
	var out []byte
	for _, r := range s {
		out = append(out, encodeRune(enc, r)...)
	}
	return out
}

// TestAutodetectRoundTrip covers every encoding the autodetector
// recognizes, with and without a leading BOM, asserting both that
// EncodingDetected reports the right value and that the document
// parses to the expected event.
func TestAutodetectRoundTrip(t *testing.T) {
	encodings := []Encoding{
		EncodingUTF8,
		EncodingUTF16LE,
		EncodingUTF16BE,
		EncodingUTF32LE,
		EncodingUTF32BE,
	}
	for _, enc := range encodings {
		for _, withBOM := range []bool{false, true} {
			enc, withBOM := enc, withBOM
			t.Run(fmt.Sprintf("%s/bom=%v", enc, withBOM), func(t *testing.T) {
				var raw []byte
				if withBOM {
					raw = append(raw, bomBytesFor(enc)...)
				}
				raw = append(raw, encodeASCII(enc, "null")...)

				var calls int
				var seen Encoding
				l := &eventLog{}
				h := recordingHandlers(l)
				h.EncodingDetected = func(p *Parser, e Encoding) {
					calls++
					seen = e
				}
				var opts []Option
				if withBOM {
					opts = append(opts, WithAllowBOM(true))
				}
				p := New(h, opts...)
				if err := p.Parse(raw, true); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if calls != 1 {
					t.Fatalf("expected EncodingDetected to fire once, got %d", calls)
				}
				if seen != enc {
					t.Fatalf("detected %v, want %v", seen, enc)
				}
				assertEvents(t, l, []string{"null"})
			})
		}
	}
}

func TestAutodetectWithoutBOMAcrossAllEncodings(t *testing.T) {
	encodings := []Encoding{
		EncodingUTF8,
		EncodingUTF16LE,
		EncodingUTF16BE,
		EncodingUTF32LE,
		EncodingUTF32BE,
	}
	for _, enc := range encodings {
		enc := enc
		t.Run(enc.String(), func(t *testing.T) {
			raw := encodeASCII(enc, `{"a":1}`)
			l, err := parseAll(t, string(raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertEvents(t, l, []string{"startObject", "member(a,first=true)", "number(1)", "endObject"})
		})
	}
}
