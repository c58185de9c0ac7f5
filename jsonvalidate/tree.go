// Package jsonvalidate rebuilds a jsonstream event sequence into a
// plain interface{} tree and validates it against a JSON Schema. It
// exists entirely outside the core jsonstream package: the core never
// builds a DOM, so any caller that wants one — this package included —
// is just another jsonstream.Handlers implementation.
package jsonvalidate

import (
	"fmt"
	"math"

	"github.com/mcvoid/jsonstream"
)

// frame is one open array or object on the tree builder's stack. The
// push-on-open, fold-into-parent-on-close shape mirrors mcvoid/json's
// original PDA parser (pushValue/popValue/growArray/growObject): at
// most one in-progress container is ever on the stack per nesting
// level, and closing it folds the finished value into whatever frame
// is now on top.
type frame struct {
	isObj bool
	obj   map[string]interface{}
	arr   []interface{}
	key   string
}

// Tree drives a jsonstream.Parser and accumulates its events into a
// tree of nil, bool, float64, string, []interface{}, and
// map[string]interface{} values — exactly the shape
// encoding/json.Unmarshal produces into an any, so
// github.com/santhosh-tekuri/jsonschema/v5 can validate the result
// with no conversion layer.
type Tree struct {
	maxDepth int
	maxNodes int

	stack    []frame
	nodes    int
	root     interface{}
	haveRoot bool
	err      error
}

func (t *Tree) fail(err error) jsonstream.HandlerResult {
	if t.err == nil {
		t.err = err
	}
	return jsonstream.ResultAbort
}

func (t *Tree) place(v interface{}) jsonstream.HandlerResult {
	t.nodes++
	if t.maxNodes > 0 && t.nodes > t.maxNodes {
		return t.fail(fmt.Errorf("jsonvalidate: instance exceeds %d nodes", t.maxNodes))
	}
	if len(t.stack) == 0 {
		t.root = v
		t.haveRoot = true
		return jsonstream.ResultContinue
	}
	f := &t.stack[len(t.stack)-1]
	if f.isObj {
		f.obj[f.key] = v
	} else {
		f.arr = append(f.arr, v)
	}
	return jsonstream.ResultContinue
}

func (t *Tree) push(f frame) jsonstream.HandlerResult {
	if t.maxDepth > 0 && len(t.stack) >= t.maxDepth {
		return t.fail(fmt.Errorf("jsonvalidate: instance exceeds max depth %d", t.maxDepth))
	}
	t.stack = append(t.stack, f)
	return jsonstream.ResultContinue
}

func (t *Tree) pop() frame {
	f := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return f
}

// handlers returns the jsonstream.Handlers set that drives this Tree.
// Only Number (not RawNumber) is registered: this package wants the
// IEEE-754 conversion, never the verbatim text.
func (t *Tree) handlers() jsonstream.Handlers {
	return jsonstream.Handlers{
		Null: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			return t.place(nil)
		},
		Bool: func(p *jsonstream.Parser, value bool) jsonstream.HandlerResult {
			return t.place(value)
		},
		String: func(p *jsonstream.Parser, value []byte, attrs jsonstream.StringAttrs) jsonstream.HandlerResult {
			return t.place(string(value))
		},
		Number: func(p *jsonstream.Parser, value float64) jsonstream.HandlerResult {
			return t.place(value)
		},
		SpecialNumber: func(p *jsonstream.Parser, kind jsonstream.SpecialNumber) jsonstream.HandlerResult {
			switch kind {
			case jsonstream.SpecialNaN:
				return t.place(math.NaN())
			case jsonstream.SpecialPositiveInfinity:
				return t.place(math.Inf(1))
			case jsonstream.SpecialNegativeInfinity:
				return t.place(math.Inf(-1))
			default:
				return t.fail(fmt.Errorf("jsonvalidate: unknown special number %v", kind))
			}
		},
		StartObject: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			return t.push(frame{isObj: true, obj: map[string]interface{}{}})
		},
		ObjectMember: func(p *jsonstream.Parser, name []byte, first bool) jsonstream.HandlerResult {
			t.stack[len(t.stack)-1].key = string(name)
			return jsonstream.ResultContinue
		},
		EndObject: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			f := t.pop()
			return t.place(f.obj)
		},
		StartArray: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			return t.push(frame{arr: []interface{}{}})
		},
		EndArray: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			f := t.pop()
			return t.place(f.arr)
		},
	}
}

// BuildTree parses data as a single, complete document and returns the
// decoded value as a plain interface{} tree. opts configure the
// depth/node guards; parseOpts are forwarded to jsonstream.New (for
// example WithAllowComments or WithAllowTrailingCommas).
func BuildTree(data []byte, opts []Option, parseOpts ...jsonstream.Option) (interface{}, error) {
	t := &Tree{maxDepth: defaultMaxDepth, maxNodes: defaultMaxNodes}
	for _, opt := range opts {
		opt(t)
	}
	p := jsonstream.New(t.handlers(), parseOpts...)
	if err := p.Parse(data, true); err != nil {
		return nil, err
	}
	if t.err != nil {
		return nil, t.err
	}
	if !t.haveRoot {
		return nil, fmt.Errorf("jsonvalidate: no value parsed")
	}
	return t.root, nil
}

// Option configures the guards BuildTree and Validator.Validate apply
// to the tree they build, before the instance is ever handed to the
// schema library.
type Option func(*Tree)

// WithMaxDepth caps nesting depth. 0 means unlimited.
func WithMaxDepth(n int) Option { return func(t *Tree) { t.maxDepth = n } }

// WithMaxNodes caps the total number of values in one instance: every
// scalar and every container, the top-level value included. 0 means
// unlimited.
func WithMaxNodes(n int) Option { return func(t *Tree) { t.maxNodes = n } }

const (
	defaultMaxDepth = 10000
	defaultMaxNodes = 1 << 20
)
