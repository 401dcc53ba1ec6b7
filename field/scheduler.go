package field

import "time"

type viewport struct {
	width  float64
	height float64
}

// Scheduler decides when the animator needs to run. It is armed by input
// and disarms itself once the pointer is inactive and every cell has come
// to rest, or at once when the grid has no cells. A Scheduler is not safe for concurrent use; renderers drive it
// from a single goroutine.
type Scheduler struct {
	animator *Animator
	tracker  *Tracker

	armed    bool
	pending  *viewport
	resizeAt time.Time
	size     viewport
	frames   uint64
}

// NewScheduler wraps an animator and pointer tracker.
func NewScheduler(animator *Animator, tracker *Tracker) *Scheduler {
	s := new(Scheduler)
	s.animator = animator
	s.tracker = tracker
	return s
}

// Animator returns the scheduled animator.
func (s *Scheduler) Animator() *Animator {
	return s.animator
}

// Pointer applies a pointer event and reports whether it was accepted. An
// accepted event arms the loop unless there are no cells to animate.
func (s *Scheduler) Pointer(ev PointerEvent) bool {
	if !s.tracker.Apply(ev) {
		return false
	}
	if !s.empty() {
		s.arm()
	}
	return true
}

// Point returns the current interaction point.
func (s *Scheduler) Point() Pointer {
	return s.tracker.Point()
}

// Resize records a viewport change. The grid is rebuilt on the first tick
// at least ResizeDebounce after the most recent resize.
func (s *Scheduler) Resize(width, height float64, at time.Time) {
	s.pending = &viewport{width: width, height: height}
	s.resizeAt = at.Add(s.animator.Params().ResizeDebounce)
	s.arm()
}

// ResizeNow rebuilds the grid immediately, e.g. for the initial layout.
func (s *Scheduler) ResizeNow(width, height float64) {
	s.pending = nil
	s.size = viewport{width: width, height: height}
	s.animator.Rebuild(width, height)
	s.arm()
}

// Size returns the viewport the current grid was built for.
func (s *Scheduler) Size() (width, height float64) {
	return s.size.width, s.size.height
}

// SetParams swaps animator parameters and arms the loop so cells ease to
// the new targets.
func (s *Scheduler) SetParams(p Params) error {
	if err := s.animator.SetParams(p); err != nil {
		return err
	}
	s.arm()
	return nil
}

// Armed reports whether the next Tick will do any work.
func (s *Scheduler) Armed() bool {
	return s.armed
}

// Frames counts the ticks that did work.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// Cells returns the animator's cells.
func (s *Scheduler) Cells() []Cell {
	return s.animator.Cells()
}

// Tick runs one frame if armed and reports whether it did. After the frame
// it disarms if nothing is left to animate.
func (s *Scheduler) Tick(now time.Time) bool {
	if !s.armed {
		return false
	}

	if s.pending != nil && !now.Before(s.resizeAt) {
		s.size = *s.pending
		s.pending = nil
		s.animator.Rebuild(s.size.width, s.size.height)
	}

	s.animator.Build(s.tracker.Point(), now)
	s.frames++

	if s.empty() {
		s.armed = false
	} else if !s.tracker.Point().Active && s.pending == nil && s.animator.Settled() {
		s.animator.Settle()
		s.armed = false
	}
	return true
}

// empty reports whether the grid has no cells and no resize is pending.
func (s *Scheduler) empty() bool {
	return s.pending == nil && len(s.animator.Cells()) == 0
}

func (s *Scheduler) arm() {
	if !s.armed {
		s.animator.ResetClock()
	}
	s.armed = true
}
