package servo

import (
	"fmt"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Rig is a set of named servos sharing one controller.
type Rig struct {
	ctrl   Controller
	opts   []Option
	addMu  sync.Mutex
	byName *xsync.MapOf[string, *Servo]
	byChan *xsync.MapOf[uint8, string]
}

// NewRig returns an empty rig on ctrl. opts are applied to every servo added.
func NewRig(ctrl Controller, opts ...Option) *Rig {
	return &Rig{
		ctrl:   ctrl,
		opts:   opts,
		byName: xsync.NewMapOf[string, *Servo](),
		byChan: xsync.NewMapOf[uint8, string](),
	}
}

// Add creates a servo and registers it under name. Names and channels must be
// unique within the rig.
func (r *Rig) Add(name string, channel uint8, neutral, delta uint16) (*Servo, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	r.addMu.Lock()
	defer r.addMu.Unlock()

	if _, ok := r.byName.Load(name); ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if other, ok := r.byChan.Load(channel); ok {
		return nil, fmt.Errorf("%w: channel %d is used by %q", ErrDuplicateChannel, channel, other)
	}

	s, err := New(r.ctrl, channel, neutral, delta, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("servo: add %q: %w", name, err)
	}
	r.byName.Store(name, s)
	r.byChan.Store(channel, name)

	return s, nil
}

// Get returns the servo registered under name.
func (r *Rig) Get(name string) (*Servo, bool) {
	return r.byName.Load(name)
}

// Names returns the registered names in lexical order.
func (r *Rig) Names() []string {
	names := make([]string, 0, r.byName.Size())
	r.byName.Range(func(name string, _ *Servo) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)

	return names
}

// Len returns the number of servos in the rig.
func (r *Rig) Len() int {
	return r.byName.Size()
}
