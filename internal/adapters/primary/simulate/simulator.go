package simulate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
	"github.com/fredcamaral/slidestep/internal/domain/services"
)

const (
	// DefaultFrameInterval is how often the region animation advances
	DefaultFrameInterval = 16 * time.Millisecond

	swipeStartY = 400.0
)

// Options configures a Simulator
type Options struct {
	Feed       *memory.Feed
	Controller services.ControllerOptions
	Retry      services.RetryPolicy
	Out        io.Writer
	Logger     *slog.Logger

	// FrameInterval defaults to DefaultFrameInterval
	FrameInterval time.Duration
}

// Report summarises a replay
type Report struct {
	Steps       int                      `json:"steps"`
	Transitions int                      `json:"transitions"`
	Suppressed  int                      `json:"suppressed"`
	Drifts      int                      `json:"drifts"`
	Final       entities.NavigationState `json:"final"`
}

// Simulator replays scripted input against an in-memory feed, printing what the
// controller does with each step
type Simulator struct {
	feed    *memory.Feed
	options services.ControllerOptions
	retry   services.RetryPolicy
	logger  *slog.Logger
	frame   time.Duration
	printer *printer
}

// New creates a simulator
func New(opts Options) *Simulator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}

	p := &printer{out: opts.Out, next: opts.Controller.Observer}
	controller := opts.Controller
	controller.Observer = p

	return &Simulator{
		feed:    opts.Feed,
		options: controller,
		retry:   opts.Retry,
		logger:  opts.Logger.With("service", "simulate"),
		frame:   opts.FrameInterval,
		printer: p,
	}
}

// Run attaches a fresh session to the feed and replays steps in order
func (s *Simulator) Run(ctx context.Context, steps []Step) (Report, error) {
	session := services.NewSession(s.feed, services.SessionOptions{
		Controller: s.options,
		Retry:      s.retry,
		Notifier:   s.feed,
		Logger:     s.logger,
	})
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return Report{}, fmt.Errorf("starting session: %w", err)
	}
	if err := session.Attach(ctx); err != nil {
		return Report{}, err
	}

	region := s.feed.Region()
	unsubscribe := region.OnScroll(session.NotifyScroll)
	defer unsubscribe()

	animCtx, stopAnimation := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.animate(animCtx, region)
	}()
	defer func() {
		stopAnimation()
		wg.Wait()
	}()

	report := Report{}
	for _, step := range steps {
		if err := s.execute(ctx, session, step); err != nil {
			return report, fmt.Errorf("step %s: %w", step, err)
		}
		report.Steps++
	}

	state, err := session.Snapshot(ctx)
	if err != nil {
		return report, err
	}

	s.printer.printf("final: slide %d/%d (%s)", state.CurrentIndex+1, state.SlideCount, layoutLabel(state.Layout))

	report.Transitions, report.Suppressed, report.Drifts = s.printer.counts()
	report.Final = state
	return report, nil
}

func (s *Simulator) execute(ctx context.Context, session *services.Session, step Step) error {
	switch step.Action {
	case ActionWheel:
		return s.dispatch(ctx, session, step, entities.WheelEvent{DeltaY: step.Value})

	case ActionKey:
		return s.dispatch(ctx, session, step, entities.KeyEvent{Key: step.Key})

	case ActionSwipe:
		now := time.Now()
		if _, err := session.Dispatch(ctx, entities.TouchStart{Y: swipeStartY, At: now}); err != nil {
			return err
		}
		return s.dispatch(ctx, session, step, entities.TouchEnd{
			Y:  swipeStartY - step.Value,
			At: now.Add(step.Duration),
		})

	case ActionWait:
		timer := time.NewTimer(step.Duration)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}

	case ActionResize:
		s.feed.SetCount(int(step.Value))
		s.printer.printf("%-14s slides=%d", step, int(step.Value))
		return nil

	case ActionScroll:
		s.feed.Region().SetScrollOffset(step.Value)
		s.printer.printf("%-14s offset=%.0f", step, s.feed.Region().ScrollOffset())
		return nil
	}

	return fmt.Errorf("%w: unknown action %s", ErrInvalidStep, step.Action)
}

func (s *Simulator) dispatch(ctx context.Context, session *services.Session, step Step, event entities.InputEvent) error {
	disposition, err := session.Dispatch(ctx, event)
	if err != nil {
		return err
	}

	s.printer.printf("%-14s %s", step, describe(disposition))
	return nil
}

// animate steps the region until ctx ends. Offset changes reach the session
// through the region's scroll listeners.
func (s *Simulator) animate(ctx context.Context, region *memory.Region) {
	ticker := time.NewTicker(s.frame)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			region.Step(s.frame)
		}
	}
}

func describe(d entities.Disposition) string {
	switch {
	case d.Suppressed:
		return fmt.Sprintf("suppressed, at %d", d.Target+1)
	case d.Advanced:
		return fmt.Sprintf("advanced to %d", d.Target+1)
	case d.Handled:
		return fmt.Sprintf("handled, stays at %d", d.Target+1)
	default:
		return fmt.Sprintf("ignored, at %d", d.Target+1)
	}
}

var titleCaser = cases.Title(language.English)

func layoutLabel(layout entities.Layout) string {
	return titleCaser.String(strings.ReplaceAll(string(layout), "_", " "))
}

// printer writes controller notifications as they happen. Observer calls arrive on
// the session loop while step lines come from Run, so writes are serialised.
type printer struct {
	mu          sync.Mutex
	out         io.Writer
	next        ports.NavigationObserver
	transitions int
	suppressed  int
	drifts      int
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) counts() (transitions, suppressed, drifts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transitions, p.suppressed, p.drifts
}

func (p *printer) Attached(slideCount int) {
	p.printf("attached: %d slides", slideCount)
	if p.next != nil {
		p.next.Attached(slideCount)
	}
}

func (p *printer) TransitionStarted(from, to int) {
	p.mu.Lock()
	p.transitions++
	p.mu.Unlock()

	p.printf("  transition %d -> %d", from+1, to+1)
	if p.next != nil {
		p.next.TransitionStarted(from, to)
	}
}

func (p *printer) TransitionSettled(commanded, actual int) {
	if commanded != actual {
		p.mu.Lock()
		p.drifts++
		p.mu.Unlock()
		p.printf("  settled on %d, commanded %d", actual+1, commanded+1)
	} else {
		p.printf("  settled on %d", actual+1)
	}
	if p.next != nil {
		p.next.TransitionSettled(commanded, actual)
	}
}

func (p *printer) InputSuppressed(source entities.InputSource) {
	p.mu.Lock()
	p.suppressed++
	p.mu.Unlock()

	if p.next != nil {
		p.next.InputSuppressed(source)
	}
}

func (p *printer) InputDiscarded(source entities.InputSource) {
	if p.next != nil {
		p.next.InputDiscarded(source)
	}
}

func (p *printer) SnapshotReplaced(oldCount, newCount int) {
	p.printf("  slides %d -> %d", oldCount, newCount)
	if p.next != nil {
		p.next.SnapshotReplaced(oldCount, newCount)
	}
}

var _ ports.NavigationObserver = (*printer)(nil)
