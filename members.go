package jsonstream

// memberName is one entry of a per-object linked list of previously
// seen member names, holding the raw output-encoded key bytes so
// later comparisons are exact byte-for-byte checks with no decoding
// involved.
type memberName struct {
	bytes []byte
	next  *memberName
}

// memberFrame is the per-open-object list of member names seen so
// far; each frame also holds a pointer to its enclosing object's
// frame, so nested objects track duplicates independently. Arrays
// never allocate a frame.
type memberFrame struct {
	head  *memberName
	count int // members seen so far, tracked regardless of duplicate detection
	parent *memberFrame
}

// memberStack is the stack of memberFrames, pushed on every "{" and
// popped on its matching "}". Frames are kept whether or not
// track-object-members is enabled, since their count drives
// ObjectMember's first flag; names are recorded only when it is.
type memberStack struct {
	top *memberFrame
}

func (s *memberStack) push() {
	s.top = &memberFrame{parent: s.top}
}

func (s *memberStack) pop() {
	if s.top != nil {
		s.top = s.top.parent
	}
}

// seen reports whether name was already recorded in the current
// (innermost) frame, via linear scan — object member counts are small
// enough that hashing would be overkill.
func (s *memberStack) seen(name []byte) bool {
	if s.top == nil {
		return false
	}
	for m := s.top.head; m != nil; m = m.next {
		if byteSliceEqual(m.bytes, name) {
			return true
		}
	}
	return false
}

// record appends name to the current frame's list. The caller must
// have already checked seen(name).
func (s *memberStack) record(name []byte) {
	if s.top == nil {
		return
	}
	cp := make([]byte, len(name))
	copy(cp, name)
	s.top.head = &memberName{bytes: cp, next: s.top.head}
}

// reset drops every frame, fully freeing the member-name stack.
func (s *memberStack) reset() {
	s.top = nil
}

func byteSliceEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
