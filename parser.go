package jsonstream

import (
	"fmt"
)

// Parser is a streaming, event-driven JSON parser. It never builds a
// DOM: every value, object-member, and array-item is reported through
// the Handlers supplied to New as soon as its token is recognized.
//
// A Parser is driven by one or more calls to Parse, each carrying the
// next chunk of input bytes; the final call sets isFinal. Handlers
// must never call Parse, Reset, or Close on the same Parser instance
// they were invoked from — doing so returns an error wrapping
// ErrUsage.
type Parser struct {
	cfg      config
	handlers Handlers

	autodetector     autodetector
	encodingResolved bool
	encoding         Encoding

	byteDec byteDecoder
	loc     locationTracker
	lexer   lexer
	driver  driverState

	arrayFirstItem bool

	started          bool
	finished         bool
	documentComplete bool
	err              *Error

	inHandler bool
	userData  any
}

// New creates a Parser that reports events to handlers, configured by
// opts. The functional-options shape mirrors
// `opal-lang/opal/runtime/lexer/v2`'s LexerOpt pattern.
func New(handlers Handlers, opts ...Option) *Parser {
	p := &Parser{handlers: handlers}
	p.cfg = defaultConfig()
	for _, opt := range opts {
		opt(&p.cfg)
	}
	p.lexer.loc = &p.loc
	p.driver.reset()
	return p
}

// Reset returns the Parser to its just-constructed state (same
// handlers and options) so it can parse a new document, retaining any
// heap buffer the lexer's growable output buffer already holds.
func (p *Parser) Reset() error {
	if p.inHandler {
		return usageError("Reset called re-entrantly from a handler")
	}
	p.autodetector.reset()
	p.encodingResolved = false
	p.encoding = EncodingUnknown
	p.byteDec.Reset()
	p.loc = locationTracker{}
	p.lexer.reset()
	p.driver.reset()
	p.arrayFirstItem = false
	p.started = false
	p.finished = false
	p.documentComplete = false
	p.err = nil
	return nil
}

// Close releases every buffer the Parser holds, including the lexer's
// heap-promoted output buffer, which Reset otherwise retains.
func (p *Parser) Close() error {
	if p.inHandler {
		return usageError("Close called re-entrantly from a handler")
	}
	p.lexer.out.releaseHeap()
	p.driver.gstack.symbols = nil
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("jsonstream: %s: %w", msg, ErrUsage)
}

// StartedParsing reports whether Parse has been called at least once
// since construction or the last Reset.
func (p *Parser) StartedParsing() bool { return p.started }

// FinishedParsing reports whether the final chunk (isFinal true) has
// been passed to Parse.
func (p *Parser) FinishedParsing() bool { return p.finished }

// GetError returns the sticky parse error, or nil if parsing has not
// failed (yet).
func (p *Parser) GetError() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// GetErrorLocation returns the location GetError's error occurred at,
// the zero Location if there is no error.
func (p *Parser) GetErrorLocation() Location {
	if p.err == nil {
		return Location{}
	}
	return p.err.Location
}

// GetTokenLocation returns the start location of the token currently
// (or most recently) being recognized — meaningful from inside a
// handler.
func (p *Parser) GetTokenLocation() Location { return p.loc.tokenStart }

// GetInputEncoding returns the resolved input encoding and whether it
// has been resolved yet (by autodetection or an explicit
// WithInputEncoding option).
func (p *Parser) GetInputEncoding() (Encoding, bool) { return p.encoding, p.encodingResolved }

// GetUserData returns the opaque value last passed to SetUserData, nil
// if none has been set.
func (p *Parser) GetUserData() any { return p.userData }

// SetUserData stores an opaque value handlers can retrieve via
// GetUserData, letting a caller thread state through parse callbacks
// without a package-level variable.
func (p *Parser) SetUserData(v any) { p.userData = v }

// Parse feeds the next chunk of input bytes to the Parser. isFinal
// must be true on (and only on) the last call for a document; after
// that call, FinishedParsing reports true and no further bytes may be
// fed.
func (p *Parser) Parse(data []byte, isFinal bool) error {
	if p.inHandler {
		return usageError("Parse called re-entrantly from a handler")
	}
	if p.err != nil {
		return p.err
	}
	if p.finished {
		return usageError("Parse called after the final chunk")
	}

	p.started = true
	p.inHandler = true
	defer func() { p.inHandler = false }()

	for _, b := range data {
		if err := p.feedByte(b); err != nil {
			// Lexer errors are raised without access to the nesting
			// depth; stamp it here for every error kind.
			err.Depth = p.driver.depth
			p.err = err
			return err
		}
	}

	if isFinal {
		p.finished = true
		if err := p.feedEOF(); err != nil {
			err.Depth = p.driver.depth
			p.err = err
			return err
		}
	}
	return nil
}

func (p *Parser) feedByte(b byte) *Error {
	if !p.encodingResolved {
		if p.cfg.inputEncodingSet {
			p.encoding = p.cfg.inputEncoding
			p.encodingResolved = true
			p.announceEncoding()
			return p.decodeAndLex(b)
		}
		if !p.autodetector.feed(b) {
			return nil
		}
		return p.resolveAutodetected()
	}
	return p.decodeAndLex(b)
}

func (p *Parser) feedEOF() *Error {
	if !p.encodingResolved {
		if p.cfg.inputEncodingSet {
			p.encoding = p.cfg.inputEncoding
			p.encodingResolved = true
			p.announceEncoding()
			return p.flushAtEOF()
		}
		enc, _, ok := p.autodetector.resolve()
		if !ok {
			return newParseError(ErrInvalidEncodingSequence, p.loc.current, p.driver.depth)
		}
		p.encoding = enc
		buffered := p.autodetector.bytes()
		p.encodingResolved = true
		p.announceEncoding()
		for _, b := range buffered {
			if err := p.decodeAndLex(b); err != nil {
				return err
			}
		}
	}
	return p.flushAtEOF()
}

func (p *Parser) flushAtEOF() *Error {
	res, err := p.lexer.feed(&p.cfg, p.cfg.allocator, eofRune)
	if err != nil {
		return err
	}
	if res.tokenReady {
		if err := p.completeToken(res.kind); err != nil {
			return err
		}
	}
	if !p.documentComplete {
		return newParseError(ErrMoreTokensExpected, p.loc.current, p.driver.depth)
	}
	return nil
}

func (p *Parser) resolveAutodetected() *Error {
	enc, _, ok := p.autodetector.resolve()
	if !ok {
		return newParseError(ErrInvalidEncodingSequence, p.loc.current, p.driver.depth)
	}
	p.encoding = enc
	p.encodingResolved = true
	p.announceEncoding()
	for _, b := range p.autodetector.bytes() {
		if err := p.decodeAndLex(b); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) announceEncoding() {
	if p.handlers.EncodingDetected != nil {
		p.handlers.EncodingDetected(p, p.encoding)
	}
}

// decodeAndLex runs one input byte through the byte decoder, and on a
// completed (or, when allowed, replaced-invalid) scalar, through the
// lexer and grammar driver.
func (p *Parser) decodeAndLex(b byte) *Error {
	res, n, r := p.byteDec.DecodeByte(p.encoding, b)
	switch res {
	case decodePending:
		return nil
	case decodeComplete:
		return p.consumeScalar(r, n)
	case decodeInvalidInclusive:
		if !p.cfg.replaceInvalidSequences {
			return newParseError(ErrInvalidEncodingSequence, p.loc.current, p.driver.depth)
		}
		return p.consumeScalar(0xFFFD, n)
	case decodeInvalidExclusive:
		if !p.cfg.replaceInvalidSequences {
			return newParseError(ErrInvalidEncodingSequence, p.loc.current, p.driver.depth)
		}
		if n > 0 {
			if err := p.consumeScalar(0xFFFD, n); err != nil {
				return err
			}
		}
		// A lone UTF-16 high surrogate followed by a non-trailing-
		// surrogate code unit stashes that unit's first byte: it was
		// already consumed into the decoder's accumulator before the
		// rejection became visible, so it must be replayed ahead of b
		// to keep byte-pair alignment with the rest of the stream.
		if replay, ok := p.byteDec.TakeReplayByte(); ok {
			if err := p.decodeAndLex(replay); err != nil {
				return err
			}
		}
		// The byte that revealed the rejection was never accounted for;
		// the decoder has already been reset, so run it through fresh.
		return p.decodeAndLex(b)
	}
	return nil
}

// consumeScalar feeds one decoded scalar, n input-bytes wide, to the
// lexer, repeating the feed in idle state if the lexer reports the
// scalar was not consumed (it terminated, and does not belong to, the
// token in progress). Location advances exactly once, on whichever
// feed call actually consumes r.
func (p *Parser) consumeScalar(r rune, n int) *Error {
	for {
		res, err := p.lexer.feed(&p.cfg, p.cfg.allocator, r)
		if err != nil {
			return err
		}
		if res.tokenReady {
			if err := p.completeToken(res.kind); err != nil {
				return err
			}
		}
		if res.consumed {
			p.loc.advance(r, n)
			return nil
		}
	}
}

func (p *Parser) completeToken(kind TokenKind) *Error {
	if kind == TokenComment {
		return nil
	}
	tokText := p.lexer.out.slice()
	loc := p.loc.tokenStart
	res, err := drive(p, &p.driver, kind, tokText, loc)
	if err != nil {
		return err
	}
	if res.done {
		p.documentComplete = true
	}
	return nil
}
