package game

// UnknownStack marks a slot whose stack size the adapter cannot read.
const UnknownStack = -1

type Slot struct {
	Rect     Rect
	Occupied bool
	Stack    int
}

// Bench exposes the reforging bench regions by role. Implementations resolve them from the
// host UI; a missing region is reported with ok=false, errors are reserved for faults.
type Bench interface {
	Visible() bool
	Slots() ([]Slot, error)
	ActionControl() (r Rect, ok bool, err error)
	ResultSlot() (r Rect, ok bool, err error)
}
