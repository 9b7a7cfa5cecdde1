package services

import (
	"log/slog"
	"time"

	"go.uber.org/atomic"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// DefaultCooldown is the input suppression window after each transition
const DefaultCooldown = 500 * time.Millisecond

// ControllerOptions holds the optional collaborators and tuning of a NavigationController
type ControllerOptions struct {
	Cooldown   time.Duration
	Thresholds entities.Thresholds
	Layout     entities.Layout
	Clock      ports.Clock
	Observer   ports.NavigationObserver
	Logger     *slog.Logger
}

// OptionsFromConfig builds controller options from the navigation config section
func OptionsFromConfig(cfg entities.NavigationConfig) ControllerOptions {
	return ControllerOptions{
		Cooldown:   cfg.GetCooldown(),
		Thresholds: cfg.GetThresholds(),
		Layout:     cfg.Layout.OrDefault(),
	}
}

// NavigationController turns wheel, key and touch input into one-slide transitions.
//
// All methods except CurrentIndex and IsTransitioning must be called from a single
// goroutine, and the scheduler must deliver cooldown callbacks on that same goroutine.
// EventLoop provides both.
type NavigationController struct {
	discovery  ports.Discovery
	scheduler  ports.Scheduler
	clock      ports.Clock
	observer   ports.NavigationObserver
	logger     *slog.Logger
	cooldown   time.Duration
	thresholds entities.Thresholds
	layout     entities.Layout

	region        ports.Region
	slides        []ports.Slide
	reconciler    Reconciler
	current       int
	commanded     int
	transitioning bool
	deadline      time.Time
	cooldownTimer ports.Timer
	touchStart    *entities.TouchStart
	attached      bool
	closed        bool

	publishedIndex *atomic.Int64
	publishedBusy  *atomic.Bool
}

// NewNavigationController creates a controller. It does nothing until Attach succeeds.
func NewNavigationController(discovery ports.Discovery, scheduler ports.Scheduler, opts ControllerOptions) *NavigationController {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = ports.NewRealClock()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Thresholds == (entities.Thresholds{}) {
		opts.Thresholds = entities.DefaultThresholds()
	}

	return &NavigationController{
		discovery:      discovery,
		scheduler:      scheduler,
		clock:          opts.Clock,
		observer:       opts.Observer,
		logger:         opts.Logger.With("service", "navigation"),
		cooldown:       opts.Cooldown,
		thresholds:     opts.Thresholds,
		layout:         opts.Layout.OrDefault(),
		publishedIndex: atomic.NewInt64(0),
		publishedBusy:  atomic.NewBool(false),
	}
}

// Attach locates the region and its slides and derives the starting index from
// the region's scroll offset. It returns ErrRegionUnavailable or ErrNoSlides while
// the host is still rendering.
func (c *NavigationController) Attach() error {
	if c.closed {
		return entities.ErrClosed
	}
	if c.attached {
		return nil
	}

	region, ok := c.discovery.LocateRegion()
	if !ok || region == nil {
		return entities.ErrRegionUnavailable
	}

	slides := c.discovery.LocateSlides(region)
	if len(slides) == 0 {
		return entities.ErrNoSlides
	}

	c.region = region
	c.slides = slides
	c.reconciler = SelectReconciler(c.layout, region, slides)
	index, _ := c.visibleIndex()
	c.setCurrent(index)
	c.attached = true

	c.logger.Info("Attached to slide region",
		slog.Int("slides", len(slides)),
		slog.Int("current", c.current),
		slog.String("layout", string(c.reconciler.Layout())),
	)
	c.observer.Attached(len(slides))

	return nil
}

// IsAttached returns true once Attach has succeeded
func (c *NavigationController) IsAttached() bool {
	return c.attached
}

// HandleInput dispatches any supported input event
func (c *NavigationController) HandleInput(event entities.InputEvent) entities.Disposition {
	switch e := event.(type) {
	case entities.WheelEvent:
		return c.HandleWheel(e)
	case entities.KeyEvent:
		return c.HandleKey(e)
	case entities.TouchStart:
		return c.HandleTouchStart(e)
	case entities.TouchEnd:
		return c.HandleTouchEnd(e)
	default:
		return c.passThrough()
	}
}

// HandleWheel handles one wheel notification
func (c *NavigationController) HandleWheel(e entities.WheelEvent) entities.Disposition {
	if e.Target != entities.TargetContent || !c.ready() {
		return c.passThrough()
	}

	if c.transitioning {
		return c.suppress(entities.SourceWheel, true)
	}

	cmd := e.Resolve(c.thresholds)
	if cmd.IsNone() {
		c.observer.InputDiscarded(entities.SourceWheel)
		return c.passThrough()
	}

	advanced := c.execute(cmd)
	return entities.Disposition{Handled: true, PreventDefault: true, Advanced: advanced, Target: c.current}
}

// HandleKey handles one key press
func (c *NavigationController) HandleKey(e entities.KeyEvent) entities.Disposition {
	if e.Target == entities.TargetFormField || !c.ready() {
		return c.passThrough()
	}

	cmd := e.Resolve(c.thresholds)
	if cmd.IsNone() {
		return c.passThrough()
	}

	// keys are ignored during a transition, the default action is left alone
	if c.transitioning {
		return c.suppress(entities.SourceKey, false)
	}

	advanced := c.execute(cmd)
	return entities.Disposition{Handled: true, PreventDefault: true, Advanced: advanced, Target: c.current}
}

// HandleTouchStart records the start of a gesture. The start is always passed
// through, even during a transition; a gesture is judged and suppressed as a
// whole when it ends, so it is counted once.
func (c *NavigationController) HandleTouchStart(e entities.TouchStart) entities.Disposition {
	start := e
	c.touchStart = &start
	return c.passThrough()
}

// HandleTouchEnd resolves the gesture started by the last HandleTouchStart
func (c *NavigationController) HandleTouchEnd(e entities.TouchEnd) entities.Disposition {
	start := c.touchStart
	c.touchStart = nil

	if start == nil || !c.ready() {
		return c.passThrough()
	}

	if c.transitioning {
		return c.suppress(entities.SourceTouch, true)
	}

	cmd := entities.ResolveSwipe(*start, e, c.thresholds)
	if cmd.IsNone() {
		c.observer.InputDiscarded(entities.SourceTouch)
		return c.passThrough()
	}

	// touch listeners are passive, the host keeps its native handling
	advanced := c.execute(cmd)
	return entities.Disposition{Handled: true, Advanced: advanced, Target: c.current}
}

// HandleScroll reconciles the index after a passive scroll notification.
// Notifications that arrive during a transition are ignored.
func (c *NavigationController) HandleScroll() {
	if c.closed || !c.attached || c.transitioning {
		return
	}
	c.reconcile()
}

// Recheck re-derives the slide snapshot after a structural change of the host.
// The snapshot is replaced only when the slide count differs, and the index is
// kept as a position clamped into the new range.
func (c *NavigationController) Recheck() {
	if c.closed {
		return
	}

	if !c.attached {
		if err := c.Attach(); err != nil {
			c.logger.Debug("Recheck before attach", slog.String("reason", err.Error()))
		}
		return
	}

	if region, ok := c.discovery.LocateRegion(); ok && region != nil {
		c.region = region
	}

	slides := c.discovery.LocateSlides(c.region)
	if len(slides) != len(c.slides) {
		oldCount := len(c.slides)
		c.slides = slides
		c.setCurrent(entities.ClampIndex(c.current, len(slides)))

		c.logger.Info("Slide snapshot replaced",
			slog.Int("old_count", oldCount),
			slog.Int("new_count", len(slides)),
			slog.Int("current", c.current),
		)
		c.observer.SnapshotReplaced(oldCount, len(slides))
	}

	c.reconciler = SelectReconciler(c.layout, c.region, c.slides)
}

// AdvanceTo starts a transition to target. It returns false when the request is a
// no-op: target out of range or equal to the current index, a transition already
// in flight, or a region that is not laid out.
func (c *NavigationController) AdvanceTo(target int) bool {
	if c.closed || !c.attached || c.transitioning {
		return false
	}
	if target < 0 || target >= len(c.slides) || target == c.current {
		return false
	}
	if c.region.ViewportExtent() <= 0 {
		return false
	}

	from := c.current
	offset := c.reconciler.TargetOffset(c.region, c.slides, target)

	c.transitioning = true
	c.publishedBusy.Store(true)
	c.commanded = target
	c.setCurrent(target)
	c.deadline = c.clock.Now().Add(c.cooldown)

	c.region.ScrollTo(offset, true)
	c.cooldownTimer = c.scheduler.AfterFunc(c.cooldown, c.endCooldown)

	c.logger.Debug("Transition started",
		slog.Int("from", from),
		slog.Int("to", target),
		slog.Float64("target_offset", offset),
	)
	c.observer.TransitionStarted(from, target)

	return true
}

// Reconcile recomputes the current index from the scroll position and returns it.
// It is a no-op during a transition.
func (c *NavigationController) Reconcile() int {
	if !c.closed && c.attached && !c.transitioning {
		c.reconcile()
	}
	return c.current
}

// CurrentIndex returns the published current index. Safe from any goroutine.
func (c *NavigationController) CurrentIndex() int {
	return int(c.publishedIndex.Load())
}

// IsTransitioning reports whether a cooldown is running. Safe from any goroutine.
func (c *NavigationController) IsTransitioning() bool {
	return c.publishedBusy.Load()
}

// State returns a copy of the navigation state
func (c *NavigationController) State() entities.NavigationState {
	layout := c.layout
	if c.reconciler != nil {
		layout = c.reconciler.Layout()
	}

	return entities.NavigationState{
		CurrentIndex:     c.current,
		Transitioning:    c.transitioning,
		CooldownDeadline: c.deadline,
		SlideCount:       len(c.slides),
		Attached:         c.attached,
		Layout:           layout,
	}
}

// Close stops the pending cooldown and detaches from the region
func (c *NavigationController) Close() {
	if c.closed {
		return
	}
	c.closed = true

	if c.cooldownTimer != nil {
		c.cooldownTimer.Stop()
		c.cooldownTimer = nil
	}

	c.transitioning = false
	c.publishedBusy.Store(false)
	c.deadline = time.Time{}
	c.touchStart = nil
	c.region = nil
	c.slides = nil
	c.attached = false
}

func (c *NavigationController) endCooldown() {
	if c.closed {
		return
	}

	c.transitioning = false
	c.publishedBusy.Store(false)
	c.deadline = time.Time{}
	c.cooldownTimer = nil

	actual := c.reconcile()

	c.logger.Debug("Transition settled",
		slog.Int("commanded", c.commanded),
		slog.Int("actual", actual),
	)
	c.observer.TransitionSettled(c.commanded, actual)
}

// execute runs a resolved command after correcting any drift
func (c *NavigationController) execute(cmd entities.Command) bool {
	c.reconcile()

	var target int
	switch cmd.Kind {
	case entities.CommandStep:
		target = entities.ClampIndex(c.current+int(cmd.Direction), len(c.slides))
	case entities.CommandFirst:
		target = 0
	case entities.CommandLast:
		target = len(c.slides) - 1
	default:
		return false
	}

	if target == c.current {
		return false
	}
	return c.AdvanceTo(target)
}

// reconcile adopts the visible index when it differs from the current one
func (c *NavigationController) reconcile() int {
	if c.region == nil || len(c.slides) == 0 || c.region.ViewportExtent() <= 0 {
		return c.current
	}

	actual, ok := c.visibleIndex()
	if !ok {
		// handles that cannot be measured leave the index alone
		return c.current
	}
	if actual != c.current {
		c.logger.Debug("Index drift corrected",
			slog.Int("from", c.current),
			slog.Int("to", actual),
		)
		c.setCurrent(actual)
	}
	return actual
}

func (c *NavigationController) visibleIndex() (int, bool) {
	return c.reconciler.VisibleIndex(c.region, c.slides)
}

func (c *NavigationController) ready() bool {
	return !c.closed && c.attached && len(c.slides) > 0 && c.region.ViewportExtent() > 0
}

func (c *NavigationController) setCurrent(index int) {
	c.current = index
	c.publishedIndex.Store(int64(index))
}

func (c *NavigationController) passThrough() entities.Disposition {
	return entities.Disposition{Target: c.current}
}

func (c *NavigationController) suppress(source entities.InputSource, prevent bool) entities.Disposition {
	c.observer.InputSuppressed(source)
	return entities.Disposition{Handled: prevent, PreventDefault: prevent, Suppressed: true, Target: c.current}
}

type nopObserver struct{}

func (nopObserver) TransitionStarted(int, int) {}
func (nopObserver) TransitionSettled(int, int) {}
func (nopObserver) InputSuppressed(entities.InputSource) {}
func (nopObserver) InputDiscarded(entities.InputSource) {}
func (nopObserver) SnapshotReplaced(int, int) {}
func (nopObserver) Attached(int) {}
