package jsonstream

import (
	"fmt"
	"strings"
	"testing"
)

// eventLog records handler calls as short strings, in call order, so
// tests can assert the exact event sequence a scenario produces.
type eventLog struct {
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func recordingHandlers(l *eventLog) Handlers {
	return Handlers{
		Null: func(p *Parser) HandlerResult {
			l.add("null")
			return ResultContinue
		},
		Bool: func(p *Parser, v bool) HandlerResult {
			l.add("bool(%v)", v)
			return ResultContinue
		},
		String: func(p *Parser, v []byte, attrs StringAttrs) HandlerResult {
			l.add("string(%s)", v)
			return ResultContinue
		},
		Number: func(p *Parser, v float64) HandlerResult {
			l.add("number(%g)", v)
			return ResultContinue
		},
		SpecialNumber: func(p *Parser, k SpecialNumber) HandlerResult {
			l.add("special(%s)", k)
			return ResultContinue
		},
		StartObject: func(p *Parser) HandlerResult {
			l.add("startObject")
			return ResultContinue
		},
		EndObject: func(p *Parser) HandlerResult {
			l.add("endObject")
			return ResultContinue
		},
		ObjectMember: func(p *Parser, name []byte, first bool) HandlerResult {
			l.add("member(%s,first=%v)", name, first)
			return ResultContinue
		},
		StartArray: func(p *Parser) HandlerResult {
			l.add("startArray")
			return ResultContinue
		},
		EndArray: func(p *Parser) HandlerResult {
			l.add("endArray")
			return ResultContinue
		},
		ArrayItem: func(p *Parser, first bool) HandlerResult {
			l.add("item(first=%v)", first)
			return ResultContinue
		},
	}
}

func parseAll(t *testing.T, input string, opts ...Option) (*eventLog, error) {
	t.Helper()
	l := &eventLog{}
	p := New(recordingHandlers(l), opts...)
	err := p.Parse([]byte(input), true)
	return l, err
}

func TestScenarioObjectWithArray(t *testing.T) {
	l, err := parseAll(t, `{"a":1,"b":[true,null]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"startObject",
		"member(a,first=true)",
		"number(1)",
		"member(b,first=false)",
		"startArray",
		"item(first=true)",
		"bool(true)",
		"item(first=false)",
		"null",
		"endArray",
		"endObject",
	}
	assertEvents(t, l, want)
}

func TestEmptyObjectAndArray(t *testing.T) {
	l, err := parseAll(t, `{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"startObject", "endObject"})

	l2, err := parseAll(t, `[]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l2, []string{"startArray", "endArray"})
}

func TestTopLevelScalars(t *testing.T) {
	for _, test := range []struct {
		input string
		want  string
	}{
		{"null", "null"},
		{"true", "bool(true)"},
		{"false", "bool(false)"},
		{`"hi"`, "string(hi)"},
		{"42", "number(42)"},
		{"-1.5e2", "number(-150)"},
	} {
		t.Run(test.input, func(t *testing.T) {
			l, err := parseAll(t, test.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertEvents(t, l, []string{test.want})
		})
	}
}

func TestChunkedParsingMatchesSingleShot(t *testing.T) {
	input := `{"a":[1,2,3],"b":"hello world"}`
	full, err := parseAll(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l := &eventLog{}
	p := New(recordingHandlers(l))
	for i := 0; i < len(input); i++ {
		if err := p.Parse([]byte{input[i]}, i == len(input)-1); err != nil {
			t.Fatalf("chunked parse failed at byte %d: %v", i, err)
		}
	}
	assertEvents(t, l, full.events)
}

func TestDuplicateMemberRejected(t *testing.T) {
	_, err := parseAll(t, `{"a":1,"a":2}`, WithTrackObjectMembers(true))
	assertErrorKind(t, err, ErrDuplicateObjectMember)
}

func TestDuplicateMemberAllowedWhenNotTracked(t *testing.T) {
	_, err := parseAll(t, `{"a":1,"a":2}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNestedObjectsTrackMembersIndependently(t *testing.T) {
	_, err := parseAll(t, `{"a":{"a":1},"b":2}`, WithTrackObjectMembers(true))
	if err != nil {
		t.Fatalf("unexpected error: nested objects should have independent member scopes: %v", err)
	}
}

func TestTrailingCommaRejectedByDefault(t *testing.T) {
	_, err := parseAll(t, `[1,2,]`)
	assertErrorKind(t, err, ErrUnexpectedToken)
}

func TestTrailingCommaAllowedWithOption(t *testing.T) {
	_, err := parseAll(t, `[1,2,]`, WithAllowTrailingCommas(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = parseAll(t, `{"a":1,}`, WithAllowTrailingCommas(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSpecialNumbers(t *testing.T) {
	l, err := parseAll(t, `[NaN,Infinity,-Infinity]`, WithAllowSpecialNumbers(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{
		"startArray",
		"item(first=true)", "special(NaN)",
		"item(first=false)", "special(Infinity)",
		"item(first=false)", "special(-Infinity)",
		"endArray",
	})
}

func TestSpecialNumbersRejectedByDefault(t *testing.T) {
	_, err := parseAll(t, `NaN`)
	assertErrorKind(t, err, ErrUnknownToken)
}

func TestHexNumbers(t *testing.T) {
	l, err := parseAll(t, `0xFF`, WithAllowHexNumbers(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"number(255)"})
}

func TestStringEscapes(t *testing.T) {
	l, err := parseAll(t, `"a\tbA\n"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"string(a\tbA\n)"})
}

func TestNonASCIICharacterInString(t *testing.T) {
	l, err := parseAll(t, `"𝄞"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.events) != 1 || !strings.HasPrefix(l.events[0], "string(") {
		t.Fatalf("expected one string event, got %v", l.events)
	}
}

func TestSurrogatePairEscape(t *testing.T) {
	// \uD834\uDD1E is U+1D11E (MUSICAL SYMBOL G CLEF) as a backslash-u
	// surrogate pair, exercising hex-escape reassembly rather than a raw
	// UTF-8 encoded codepoint.
	l, err := parseAll(t, `"\uD834\uDD1E"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"string(𝄞)"})
}

func TestUnpairedSurrogateRejected(t *testing.T) {
	_, err := parseAll(t, `"\uD834"`)
	assertErrorKind(t, err, ErrUnpairedSurrogateEscapeSequence)
}

func TestLeadingZeroRejected(t *testing.T) {
	_, err := parseAll(t, `01`)
	assertErrorKind(t, err, ErrInvalidNumber)
}

func TestUnescapedControlCharacterRejectedByDefault(t *testing.T) {
	_, err := parseAll(t, "\"a\tb\"")
	assertErrorKind(t, err, ErrUnescapedControlCharacter)
}

func TestUnescapedControlCharacterAllowedWithOption(t *testing.T) {
	_, err := parseAll(t, "\"a\tb\"", WithAllowUnescapedControlCharacters(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCommentsDiscardedWhenAllowed(t *testing.T) {
	l, err := parseAll(t, "// leading\n{/* inline */\"a\":1}\n", WithAllowComments(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"startObject", "member(a,first=true)", "number(1)", "endObject"})
}

func TestCommentsRejectedByDefault(t *testing.T) {
	_, err := parseAll(t, "// hi\nnull")
	assertErrorKind(t, err, ErrUnknownToken)
}

func TestIncompleteTokenAtFlush(t *testing.T) {
	_, err := parseAll(t, `"unterminated`)
	assertErrorKind(t, err, ErrIncompleteToken)
}

func TestMoreTokensExpectedAtFlush(t *testing.T) {
	_, err := parseAll(t, `{"a":`)
	assertErrorKind(t, err, ErrMoreTokensExpected)
}

func TestBOMRejectedByDefault(t *testing.T) {
	_, err := parseAll(t, "\xEF\xBB\xBF{}")
	assertErrorKind(t, err, ErrBOMNotAllowed)
}

func TestBOMAllowedWithOption(t *testing.T) {
	l, err := parseAll(t, "\xEF\xBB\xBF{}", WithAllowBOM(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"startObject", "endObject"})
}

func TestEncodingDetectedFiresOnce(t *testing.T) {
	var calls int
	var seen Encoding
	h := recordingHandlers(&eventLog{})
	h.EncodingDetected = func(p *Parser, enc Encoding) {
		calls++
		seen = enc
	}
	p := New(h)
	if err := p.Parse([]byte(`null`), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected EncodingDetected to fire exactly once, got %d", calls)
	}
	if seen != EncodingUTF8 {
		t.Errorf("expected UTF-8, got %v", seen)
	}
}

func TestExplicitInputEncodingSkipsAutodetection(t *testing.T) {
	// "null" encoded as UTF-16LE.
	raw := []byte{'n', 0, 'u', 0, 'l', 0, 'l', 0}
	l := &eventLog{}
	p := New(recordingHandlers(l), WithInputEncoding(EncodingUTF16LE))
	if err := p.Parse(raw, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"null"})
}

func TestResetAllowsReuse(t *testing.T) {
	l := &eventLog{}
	p := New(recordingHandlers(l))
	if err := p.Parse([]byte(`null`), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.events = nil
	if err := p.Parse([]byte(`true`), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"bool(true)"})
}

func TestMaxOutputStringLength(t *testing.T) {
	_, err := parseAll(t, `"abcdef"`, WithMaxOutputStringLength(3))
	assertErrorKind(t, err, ErrTooLongString)
}

func TestMaxLengthNumberAccepted(t *testing.T) {
	l, err := parseAll(t, strings.Repeat("9", 63))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.events) != 1 || !strings.HasPrefix(l.events[0], "number(") {
		t.Fatalf("expected one number event, got %v", l.events)
	}
}

func TestTooLongNumberRejected(t *testing.T) {
	_, err := parseAll(t, strings.Repeat("9", 64))
	assertErrorKind(t, err, ErrTooLongNumber)
}

func TestErrorDepthAtTopLevel(t *testing.T) {
	_, err := parseAll(t, `,`)
	pe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if pe.Depth != 0 {
		t.Fatalf("expected depth 0, got %d", pe.Depth)
	}
}

func TestErrorDepthReflectsArrayNesting(t *testing.T) {
	_, err := parseAll(t, `[[[,]]]`)
	pe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if pe.Kind != ErrUnexpectedToken {
		t.Fatalf("expected ErrUnexpectedToken, got %s", pe.Kind)
	}
	if pe.Depth != 3 {
		t.Fatalf("expected depth 3, got %d", pe.Depth)
	}
}

func TestErrorDepthReflectsObjectNesting(t *testing.T) {
	_, err := parseAll(t, `{"a":{"b":{"c":}}}`)
	pe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if pe.Depth != 3 {
		t.Fatalf("expected depth 3, got %d", pe.Depth)
	}
}

// TestNumberParsingIsLocaleIndependent pins decimal-point handling to
// '.' regardless of any process locale: strconv.ParseFloat never
// consults it, so a comma is never accepted as a fraction separator.
func TestNumberParsingIsLocaleIndependent(t *testing.T) {
	l, err := parseAll(t, `1234.5`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, l, []string{"number(1234.5)"})

	_, err = parseAll(t, `1234,5`)
	assertErrorKind(t, err, ErrUnexpectedToken)
}

func assertEvents(t *testing.T, l *eventLog, want []string) {
	t.Helper()
	if len(l.events) != len(want) {
		t.Fatalf("event count mismatch\n got: %v\nwant: %v", l.events, want)
	}
	for i := range want {
		if l.events[i] != want[i] {
			t.Fatalf("event %d mismatch\n got: %v\nwant: %v", i, l.events, want)
		}
	}
}

func assertErrorKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error kind %s, got nil", kind)
	}
	pe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if pe.Kind != kind {
		t.Fatalf("expected error kind %s, got %s", kind, pe.Kind)
	}
}
