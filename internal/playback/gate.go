package playback

// Scheduler runs fn before the next paint and returns a cancel func.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// MetricsSource reads the element's current geometry.
type MetricsSource interface {
	Metrics() Metrics
}

// ScrollSource delivers scroll notifications until unsubscribed.
type ScrollSource interface {
	Subscribe(fn func()) (unsubscribe func())
}

// Gate arms an Engine while its element is visible. Scroll events only
// request a tick, and at most one tick is pending at a time.
//
// A Gate is driven from a single event loop and is not safe for concurrent
// use.
type Gate struct {
	engine    *Engine
	scheduler Scheduler
	metrics   MetricsSource
	scroll    ScrollSource

	visible     bool
	pending     bool
	cancel      func()
	unsubscribe func()
}

// NewGate wires an engine to its browser collaborators. The gate starts
// hidden.
func NewGate(engine *Engine, scheduler Scheduler, metrics MetricsSource, scroll ScrollSource) *Gate {
	return &Gate{engine: engine, scheduler: scheduler, metrics: metrics, scroll: scroll}
}

// Visible reports whether the gate is armed.
func (g *Gate) Visible() bool {
	return g.visible
}

// Pending reports whether a tick is scheduled.
func (g *Gate) Pending() bool {
	return g.pending
}

// SetVisible arms or disarms the gate. Becoming visible subscribes to scroll
// events and evaluates once immediately.
func (g *Gate) SetVisible(visible bool) {
	if visible == g.visible {
		return
	}
	if !visible {
		g.disarm()
		return
	}
	if !g.engine.Active() {
		return
	}
	g.visible = true
	g.unsubscribe = g.scroll.Subscribe(g.onScroll)
	g.engine.Update(g.metrics.Metrics())
}

// Close detaches all listeners and cancels any pending tick.
func (g *Gate) Close() {
	g.disarm()
}

func (g *Gate) disarm() {
	g.visible = false
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.pending = false
}

func (g *Gate) onScroll() {
	if !g.visible || g.pending {
		return
	}
	g.pending = true
	g.cancel = g.scheduler.RequestFrame(g.tick)
}

func (g *Gate) tick() {
	g.pending = false
	g.cancel = nil
	if !g.visible {
		return
	}
	g.engine.Update(g.metrics.Metrics())
}
