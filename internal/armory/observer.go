package armory

// PreMarkEvent is raised before a mark is applied. Observers may refuse it.
type PreMarkEvent struct {
	Holder Holder
	Item   Item
	Title  string

	denied bool
	reason DenyReason
}

// Deny refuses the mark. DenyNone is reported as DenyUnknownError.
func (e *PreMarkEvent) Deny(r DenyReason) {
	if r == DenyNone {
		r = DenyUnknownError
	}
	e.denied = true
	e.reason = r
}

// Denied reports whether an observer refused the mark.
func (e *PreMarkEvent) Denied() bool {
	return e.denied
}

// MarkEvent is raised after an item became marked.
type MarkEvent struct {
	Holder Holder
	Item   Item
	Title  string
}

// UnmarkEvent is raised after an item lost its mark. Actor is nil when the
// unmark has no attributable holder, and Title is empty when the item no
// longer resolves.
type UnmarkEvent struct {
	Actor Holder
	Item  Item
	Title string
	Cause UnmarkCause
}

type PreMarkObserver interface {
	BeforeMark(*PreMarkEvent)
}

type MarkObserver interface {
	Marked(MarkEvent)
}

type UnmarkObserver interface {
	Unmarked(UnmarkEvent)
}

// PreMarkFunc adapts a function to PreMarkObserver.
type PreMarkFunc func(*PreMarkEvent)

func (f PreMarkFunc) BeforeMark(e *PreMarkEvent) { f(e) }

// MarkFunc adapts a function to MarkObserver.
type MarkFunc func(MarkEvent)

func (f MarkFunc) Marked(e MarkEvent) { f(e) }

// UnmarkFunc adapts a function to UnmarkObserver.
type UnmarkFunc func(UnmarkEvent)

func (f UnmarkFunc) Unmarked(e UnmarkEvent) { f(e) }

// ObserverID identifies a registration so it can be removed later.
type ObserverID int

type registration struct {
	id  ObserverID
	obs any
}

// AddObserver registers o for every observer interface it implements.
func (e *Engine) AddObserver(o any) ObserverID {
	e.nextObserver++
	e.observers = append(e.observers, registration{id: e.nextObserver, obs: o})
	return e.nextObserver
}

// RemoveObserver drops a registration. Unknown ids are ignored.
func (e *Engine) RemoveObserver(id ObserverID) {
	for i, r := range e.observers {
		if r.id == id {
			e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
			return
		}
	}
}

// firePreMark stops at the first observer that denies.
func (e *Engine) firePreMark(ev *PreMarkEvent) bool {
	for _, r := range e.observers {
		o, ok := r.obs.(PreMarkObserver)
		if !ok {
			continue
		}
		o.BeforeMark(ev)
		if ev.denied {
			return true
		}
	}
	return false
}

func (e *Engine) fireMarked(ev MarkEvent) {
	for _, r := range e.observers {
		if o, ok := r.obs.(MarkObserver); ok {
			o.Marked(ev)
		}
	}
}

func (e *Engine) fireUnmarked(ev UnmarkEvent) {
	for _, r := range e.observers {
		if o, ok := r.obs.(UnmarkObserver); ok {
			o.Unmarked(ev)
		}
	}
}
