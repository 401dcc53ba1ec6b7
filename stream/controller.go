package stream

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matt-g-everett/linefield/field"
)

// PublishFunc delivers a frame to a rendering client.
type PublishFunc func(*Frame) error

// Controller owns the scheduler and runs the frame loop. Input from other
// goroutines is queued and applied on the loop goroutine.
type Controller struct {
	scheduler *field.Scheduler
	interval  time.Duration
	logger    *log.Logger

	inputs chan Input
	params chan field.Params

	mu     sync.RWMutex
	latest *Frame
	seq    uint32
}

// NewController creates a Controller ticking at interval while animating.
func NewController(scheduler *field.Scheduler, interval time.Duration, logger *log.Logger) *Controller {
	c := new(Controller)
	c.scheduler = scheduler
	c.interval = interval
	c.logger = logger
	c.inputs = make(chan Input, 256)
	c.params = make(chan field.Params, 1)
	c.latest = NewFrame(0, scheduler.Cells())
	return c
}

// Submit queues an input for the loop. It blocks if the queue is full.
func (c *Controller) Submit(in Input) {
	c.inputs <- in
}

// SetParams queues new animator parameters, replacing any still pending.
func (c *Controller) SetParams(p field.Params) {
	for {
		select {
		case c.params <- p:
			return
		default:
			select {
			case <-c.params:
			default:
			}
		}
	}
}

// Latest returns the most recently published frame.
func (c *Controller) Latest() *Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// Run drives the scheduler until ctx is cancelled. The ticker only runs
// while the scheduler is armed.
func (c *Controller) Run(ctx context.Context, publish PublishFunc) error {
	var ticker *time.Ticker
	var tick <-chan time.Time

	rearm := func() {
		if c.scheduler.Armed() && ticker == nil {
			ticker = time.NewTicker(c.interval)
			tick = ticker.C
			c.logger.Debug("animation armed")
		}
	}
	suspend := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
			c.logger.Debug("animation idle", "frames", c.scheduler.Frames())
		}
	}
	defer suspend()

	rearm()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case in := <-c.inputs:
			c.apply(in)
			rearm()

		case p := <-c.params:
			if err := c.scheduler.SetParams(p); err != nil {
				c.logger.Warn("rejected parameters", "err", err)
				continue
			}
			c.logger.Info("parameters updated", "radius", p.Radius, "effects", p.Effects)
			rearm()

		case now := <-tick:
			if c.scheduler.Tick(now) {
				c.publish(publish)
			}
			if !c.scheduler.Armed() {
				suspend()
			}
		}
	}
}

func (c *Controller) apply(in Input) {
	switch {
	case in.Pointer != nil:
		c.scheduler.Pointer(*in.Pointer)
	case in.Resize != nil:
		c.logger.Debug("viewport resized", "width", in.Resize.Width, "height", in.Resize.Height)
		c.scheduler.Resize(in.Resize.Width, in.Resize.Height, time.Now())
	}
}

func (c *Controller) publish(publish PublishFunc) {
	c.seq++
	f := NewFrame(c.seq, c.scheduler.Cells())

	c.mu.Lock()
	c.latest = f
	c.mu.Unlock()

	if publish == nil {
		return
	}
	if err := publish(f); err != nil {
		c.logger.Warn("publish frame", "seq", f.Seq, "err", err)
	}
}
