package jsonstream

// Option configures a Parser before parsing starts. Options
// (input/output encoding, every allow-* flag, the member-tracking
// flag, and the max string length) are applied only by New, so none
// can change once Parse has been called. The shape mirrors `opal-lang/opal/runtime/lexer/v2`'s
// functional LexerOpt pattern (`WithTelemetryBasic`, `WithScriptMode`,
// ...), adapted here to this parser's own knobs.
type Option func(*config)

type config struct {
	inputEncoding          Encoding
	inputEncodingSet       bool
	outputEncoding         Encoding
	allowBOM               bool
	allowComments          bool
	allowTrailingCommas    bool
	allowSpecialNumbers    bool
	allowHexNumbers        bool
	allowUnescapedControls bool
	replaceInvalidSequences bool
	trackObjectMembers     bool
	maxOutputStringLength  int // 0 means unlimited
	allocator              Allocator
}

func defaultConfig() config {
	return config{
		outputEncoding: EncodingUTF8,
		allocator:      defaultAllocator{},
	}
}

// WithInputEncoding fixes the input encoding, overriding
// autodetection. If it is passed to New more than once, the last value
// wins.
func WithInputEncoding(enc Encoding) Option {
	return func(c *config) {
		c.inputEncoding = enc
		c.inputEncodingSet = true
	}
}

// WithOutputEncoding controls the byte form of string tokens
// delivered to handlers. Defaults to UTF-8.
func WithOutputEncoding(enc Encoding) Option {
	return func(c *config) { c.outputEncoding = enc }
}

// WithAllowBOM permits a leading U+FEFF at byte offset 0.
func WithAllowBOM(allow bool) Option {
	return func(c *config) { c.allowBOM = allow }
}

// WithAllowComments permits "//" and "/* */" comments, which the
// grammar engine discards without ever surfacing as an event.
func WithAllowComments(allow bool) Option {
	return func(c *config) { c.allowComments = allow }
}

// WithAllowTrailingCommas permits a trailing "," before a closing "}"
// or "]".
func WithAllowTrailingCommas(allow bool) Option {
	return func(c *config) { c.allowTrailingCommas = allow }
}

// WithAllowSpecialNumbers permits the NaN, Infinity, and -Infinity
// literals.
func WithAllowSpecialNumbers(allow bool) Option {
	return func(c *config) { c.allowSpecialNumbers = allow }
}

// WithAllowHexNumbers permits unsigned 0x../0X.. integer literals.
func WithAllowHexNumbers(allow bool) Option {
	return func(c *config) { c.allowHexNumbers = allow }
}

// WithAllowUnescapedControlCharacters permits raw control characters
// (< U+0020) inside string literals without requiring \u escapes.
func WithAllowUnescapedControlCharacters(allow bool) Option {
	return func(c *config) { c.allowUnescapedControls = allow }
}

// WithReplaceInvalidEncodingSequences makes the decoder substitute
// U+FFFD for every invalid byte sequence instead of failing the
// parse.
func WithReplaceInvalidEncodingSequences(replace bool) Option {
	return func(c *config) { c.replaceInvalidSequences = replace }
}

// WithTrackObjectMembers enables duplicate-member-name detection.
func WithTrackObjectMembers(track bool) Option {
	return func(c *config) { c.trackObjectMembers = track }
}

// WithMaxOutputStringLength caps the output-encoded length of any one
// string token; 0 (the default) means unlimited.
func WithMaxOutputStringLength(n int) Option {
	return func(c *config) { c.maxOutputStringLength = n }
}

// WithAllocator supplies a custom Allocator for buffer growth, the Go
// analogue of pluggable malloc/realloc suite.
func WithAllocator(a Allocator) Option {
	return func(c *config) {
		if a != nil {
			c.allocator = a
		}
	}
}
