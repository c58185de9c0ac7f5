package jsonstream

// stackSymbol is either a grammar non-terminal or (once shifted past
// symTerminalBase) a terminal mirroring a TokenKind, the two symbol
// kinds the symbol-stack LL(1) grammar engine operates on.
type stackSymbol byte

const (
	symMembers stackSymbol = iota
	symMember
	symMoreMembers
	symMembersAfterComma
	symItems
	symItem
	symMoreItems
	symItemsAfterComma
	symValue

	numNonTerminals
	symTerminalBase = numNonTerminals
)

func terminalSymbol(k TokenKind) stackSymbol { return symTerminalBase + stackSymbol(k) }

func (s stackSymbol) isTerminal() bool { return s >= symTerminalBase }

func (s stackSymbol) tokenKind() TokenKind { return TokenKind(s - symTerminalBase) }

// grammarStack is the explicit, non-recursive parse stack used in
// place of a recursive-descent call stack. It starts holding a single
// symValue (the document's one top-level value); an empty stack means
// that value, and the document, is complete.
type grammarStack struct {
	symbols []stackSymbol
}

func (g *grammarStack) reset() {
	g.symbols = g.symbols[:0]
	g.symbols = append(g.symbols, symValue)
}

func (g *grammarStack) empty() bool { return len(g.symbols) == 0 }

func (g *grammarStack) top() stackSymbol { return g.symbols[len(g.symbols)-1] }

func (g *grammarStack) pop() { g.symbols = g.symbols[:len(g.symbols)-1] }

// replaceTop pops the current top and pushes rhs in right-to-left
// order, so rhs[0] ends up on top (next to be matched).
func (g *grammarStack) replaceTop(rhs ...stackSymbol) {
	g.symbols = g.symbols[:len(g.symbols)-1]
	for i := len(rhs) - 1; i >= 0; i-- {
		g.symbols = append(g.symbols, rhs[i])
	}
}

// driverState is the per-document state the grammar engine threads
// through drive(): the symbol stack, a depth counter for Error.Depth,
// and the per-object member stack (duplicate tracker and member count
// behind ObjectMember's first flag). ArrayItem's first flag lives on
// the Parser as arrayFirstItem.
type driverState struct {
	gstack  grammarStack
	depth   int
	members memberStack
}

func (st *driverState) reset() {
	st.gstack.reset()
	st.depth = 0
	st.members.reset()
}

// driveResult reports what the grammar engine wants the facade to do
// after matching one completed token, for every completed token that
// is not a comment (comments never touch the stack).
type driveResult struct {
	done bool // the stack is now empty: the top-level value is complete
}

// drive consumes one completed, non-comment token against the symbol
// stack, firing handlers as productions are selected (and, for "}" and
// "]", when the terminal itself is matched — see fireOnTerminalMatch).
func drive(p *Parser, st *driverState, kind TokenKind, tokText []byte, loc Location) (driveResult, *Error) {
	for {
		if st.gstack.empty() {
			return driveResult{done: true}, newParseError(ErrUnexpectedToken, loc, st.depth)
		}
		top := st.gstack.top()

		if top.isTerminal() {
			want := top.tokenKind()
			if kind != want {
				return driveResult{}, newParseError(ErrUnexpectedToken, loc, st.depth)
			}
			st.gstack.pop()
			if res := fireOnTerminalMatch(p, want); res == ResultAbort {
				return driveResult{}, newParseError(ErrAbortedByHandler, loc, st.depth)
			}
			switch want {
			case TokenRightBrace:
				st.depth--
				st.members.pop()
			case TokenRightBracket:
				st.depth--
				// Arrays own no member frame. Once one closes, any
				// enclosing array is past its first item, even when the
				// closed array was empty.
				p.arrayFirstItem = false
			}
			return driveResult{done: st.gstack.empty()}, nil
		}

		// Non-terminal: select a production by the lookahead token kind,
		// fire its handler (if any), and replace the stack top with the
		// production's RHS. The loop then re-examines the stack without
		// consuming a new token, exactly as a fresh symbol may itself be
		// a non-terminal requiring another production selection.
		switch top {
		case symValue:
			if !kind.isValueStart() {
				return driveResult{}, newParseError(ErrUnexpectedToken, loc, st.depth)
			}
			res := fireValueStart(p, kind, tokText)
			if res == ResultAbort {
				return driveResult{}, newParseError(ErrAbortedByHandler, loc, st.depth)
			}
			switch kind {
			case TokenLeftBrace:
				st.depth++
				st.members.push()
				st.gstack.replaceTop(terminalSymbol(TokenLeftBrace), symMembers, terminalSymbol(TokenRightBrace))
				continue
			case TokenLeftBracket:
				st.depth++
				st.gstack.replaceTop(terminalSymbol(TokenLeftBracket), symItems, terminalSymbol(TokenRightBracket))
				continue
			default:
				// A scalar VALUE is itself the terminal; replace symValue
				// with the single matching terminal symbol so the same
				// loop iteration's terminal-matching branch consumes the
				// current token and returns.
				st.gstack.replaceTop(terminalSymbol(kind))
				continue
			}

		case symMembers:
			if kind == TokenRightBrace {
				st.gstack.replaceTop() // epsilon
				continue
			}
			st.gstack.replaceTop(symMember, symMoreMembers)
			continue

		case symMember:
			if kind != TokenString {
				return driveResult{}, newParseError(ErrUnexpectedToken, loc, st.depth)
			}
			first := st.members.top == nil || st.members.top.count == 0
			if st.members.top != nil {
				st.members.top.count++
			}
			if p.cfg.trackObjectMembers {
				if st.members.seen(tokText) {
					return driveResult{}, newParseError(ErrDuplicateObjectMember, loc, st.depth)
				}
				st.members.record(tokText)
			}
			res := ResultContinue
			if p.handlers.ObjectMember != nil {
				res = p.handlers.ObjectMember(p, tokText, first)
			}
			if res == ResultDuplicate {
				return driveResult{}, newParseError(ErrDuplicateObjectMember, loc, st.depth)
			}
			if res == ResultAbort {
				return driveResult{}, newParseError(ErrAbortedByHandler, loc, st.depth)
			}
			st.gstack.replaceTop(terminalSymbol(TokenString), terminalSymbol(TokenColon), symValue)
			continue

		case symMoreMembers:
			if kind == TokenComma {
				if p.cfg.allowTrailingCommas {
					st.gstack.replaceTop(terminalSymbol(TokenComma), symMembersAfterComma)
				} else {
					st.gstack.replaceTop(terminalSymbol(TokenComma), symMember, symMoreMembers)
				}
				continue
			}
			st.gstack.replaceTop() // epsilon
			continue

		case symMembersAfterComma:
			if kind == TokenRightBrace {
				st.gstack.replaceTop() // epsilon: trailing comma before "}"
				continue
			}
			st.gstack.replaceTop(symMember, symMoreMembers)
			continue

		case symItems:
			if kind == TokenRightBracket {
				st.gstack.replaceTop()
				continue
			}
			st.gstack.replaceTop(symItem, symMoreItems)
			continue

		case symItem:
			if !kind.isValueStart() {
				return driveResult{}, newParseError(ErrUnexpectedToken, loc, st.depth)
			}
			first := p.arrayFirstItem
			res := ResultContinue
			if p.handlers.ArrayItem != nil {
				res = p.handlers.ArrayItem(p, first)
			}
			if res == ResultAbort {
				return driveResult{}, newParseError(ErrAbortedByHandler, loc, st.depth)
			}
			p.arrayFirstItem = false
			st.gstack.replaceTop(symValue)
			continue

		case symMoreItems:
			if kind == TokenComma {
				if p.cfg.allowTrailingCommas {
					st.gstack.replaceTop(terminalSymbol(TokenComma), symItemsAfterComma)
				} else {
					st.gstack.replaceTop(terminalSymbol(TokenComma), symItem, symMoreItems)
				}
				continue
			}
			st.gstack.replaceTop()
			continue

		case symItemsAfterComma:
			if kind == TokenRightBracket {
				st.gstack.replaceTop()
				continue
			}
			st.gstack.replaceTop(symItem, symMoreItems)
			continue
		}
	}
}

// fireValueStart fires the handler that corresponds to a VALUE
// production's chosen alternative, at production-selection time (i.e.
// before the container's contents, if any, are parsed) — except
// StartObject/StartArray's matching end-handlers, which
// fireOnTerminalMatch fires when "}"/"]" are actually matched.
func fireValueStart(p *Parser, kind TokenKind, tokText []byte) HandlerResult {
	h := p.handlers
	switch kind {
	case TokenNull:
		if h.Null != nil {
			return h.Null(p)
		}
	case TokenTrue:
		if h.Bool != nil {
			return h.Bool(p, true)
		}
	case TokenFalse:
		if h.Bool != nil {
			return h.Bool(p, false)
		}
	case TokenString:
		if h.String != nil {
			return h.String(p, tokText, p.lexer.stringAttrs)
		}
	case TokenNumber:
		return fireNumber(p, tokText)
	case TokenNaN:
		if h.SpecialNumber != nil {
			return h.SpecialNumber(p, SpecialNaN)
		}
	case TokenInfinity:
		if h.SpecialNumber != nil {
			return h.SpecialNumber(p, SpecialPositiveInfinity)
		}
	case TokenNegInfinity:
		if h.SpecialNumber != nil {
			return h.SpecialNumber(p, SpecialNegativeInfinity)
		}
	case TokenLeftBrace:
		if h.StartObject != nil {
			return h.StartObject(p)
		}
	case TokenLeftBracket:
		p.arrayFirstItem = true
		if h.StartArray != nil {
			return h.StartArray(p)
		}
	}
	return ResultContinue
}

// fireNumber fires RawNumber then Number, per the ordering Handlers
// documents.
func fireNumber(p *Parser, tokText []byte) HandlerResult {
	h := p.handlers
	if h.RawNumber != nil {
		if res := h.RawNumber(p, tokText, p.lexer.decimalPointIndex); res != ResultContinue {
			return res
		}
	}
	if h.Number != nil {
		var value float64
		if p.cfg.allowHexNumbers && len(tokText) > 2 && tokText[0] == '0' && (tokText[1] == 'x' || tokText[1] == 'X') {
			value = parseHexNumber(tokText[2:])
		} else {
			// On overflow strconv.ParseFloat returns ±Inf together with
			// ErrRange; that infinity is the IEEE-754 result, so it is
			// delivered as is.
			value, _ = parseDecimalNumber(tokText, p.lexer.decimalPointIndex)
		}
		return h.Number(p, value)
	}
	return ResultContinue
}

// fireOnTerminalMatch fires EndObject/EndArray, the two handlers that
// fire when their terminal is matched rather than at
// production-selection time (selecting them early would fire before
// the container's own contents had been parsed at all).
func fireOnTerminalMatch(p *Parser, kind TokenKind) HandlerResult {
	switch kind {
	case TokenRightBrace:
		if p.handlers.EndObject != nil {
			return p.handlers.EndObject(p)
		}
	case TokenRightBracket:
		if p.handlers.EndArray != nil {
			return p.handlers.EndArray(p)
		}
	}
	return ResultContinue
}
