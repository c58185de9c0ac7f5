// Package cborevents records a jsonstream event sequence and encodes
// it as a compact CBOR binary log, letting a parsed token stream be
// piped to another process without re-serializing back to JSON text.
package cborevents

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/mcvoid/jsonstream"
)

// EventKind tags which jsonstream event a recorded Event represents.
type EventKind uint8

const (
	EventNull EventKind = iota
	EventBool
	EventString
	EventNumber
	EventSpecialNumber
	EventStartObject
	EventEndObject
	EventObjectMember
	EventStartArray
	EventEndArray
	EventArrayItem
	EventEncodingDetected
)

// Event is one recorded jsonstream callback, tagged by Kind; only the
// fields relevant to Kind are populated. It is the CBOR wire struct —
// field names are kept short since cbor/v2 encodes struct field names
// as map keys by default.
type Event struct {
	Kind     EventKind
	Bool     bool                     `cbor:",omitempty"`
	Str      []byte                   `cbor:",omitempty"`
	Num      float64                  `cbor:",omitempty"`
	Special  jsonstream.SpecialNumber
	Name     []byte `cbor:",omitempty"`
	First    bool   `cbor:",omitempty"`
	Encoding jsonstream.Encoding
}

// Recorder implements jsonstream.Handlers, buffering every event it
// receives in order. Call Handlers to obtain the callback set to pass
// to jsonstream.New, drive the parser, then call Finish to encode the
// buffered log.
type Recorder struct {
	events []Event
}

// NewRecorder returns an empty Recorder ready to have its Handlers
// wired into a jsonstream.Parser.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Handlers returns the jsonstream.Handlers set that appends to this
// Recorder's buffered event log. Every field except RawNumber is
// populated, EncodingDetected included: numbers are recorded once, as
// the float64 the Number handler receives, and their verbatim text is
// not kept.
func (r *Recorder) Handlers() jsonstream.Handlers {
	return jsonstream.Handlers{
		Null: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventNull})
			return jsonstream.ResultContinue
		},
		Bool: func(p *jsonstream.Parser, value bool) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventBool, Bool: value})
			return jsonstream.ResultContinue
		},
		String: func(p *jsonstream.Parser, value []byte, attrs jsonstream.StringAttrs) jsonstream.HandlerResult {
			cp := append([]byte(nil), value...)
			r.events = append(r.events, Event{Kind: EventString, Str: cp})
			return jsonstream.ResultContinue
		},
		Number: func(p *jsonstream.Parser, value float64) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventNumber, Num: value})
			return jsonstream.ResultContinue
		},
		SpecialNumber: func(p *jsonstream.Parser, kind jsonstream.SpecialNumber) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventSpecialNumber, Special: kind})
			return jsonstream.ResultContinue
		},
		StartObject: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventStartObject})
			return jsonstream.ResultContinue
		},
		EndObject: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventEndObject})
			return jsonstream.ResultContinue
		},
		ObjectMember: func(p *jsonstream.Parser, name []byte, first bool) jsonstream.HandlerResult {
			cp := append([]byte(nil), name...)
			r.events = append(r.events, Event{Kind: EventObjectMember, Name: cp, First: first})
			return jsonstream.ResultContinue
		},
		StartArray: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventStartArray})
			return jsonstream.ResultContinue
		},
		EndArray: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventEndArray})
			return jsonstream.ResultContinue
		},
		ArrayItem: func(p *jsonstream.Parser, first bool) jsonstream.HandlerResult {
			r.events = append(r.events, Event{Kind: EventArrayItem, First: first})
			return jsonstream.ResultContinue
		},
		EncodingDetected: func(p *jsonstream.Parser, enc jsonstream.Encoding) {
			r.events = append(r.events, Event{Kind: EventEncodingDetected, Encoding: enc})
		},
	}
}

// Events returns the event log recorded so far, in call order.
func (r *Recorder) Events() []Event { return r.events }

// Finish encodes the buffered event log into deterministic CBOR,
// grounded on opal-lang/opal/core/planfmt's own CanonicalPlan encoding
// (cbor.CanonicalEncOptions().EncMode(), then Marshal).
func (r *Recorder) Finish() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cborevents: build CBOR encoder: %w", err)
	}
	data, err := encMode.Marshal(r.events)
	if err != nil {
		return nil, fmt.Errorf("cborevents: encode event log: %w", err)
	}
	return data, nil
}

// Decode parses a CBOR byte slice produced by Finish back into an
// Event slice, for a downstream consumer that only needs the wire
// format (and not a live jsonstream.Parser).
func Decode(data []byte) ([]Event, error) {
	var events []Event
	if err := cbor.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("cborevents: decode event log: %w", err)
	}
	return events, nil
}
