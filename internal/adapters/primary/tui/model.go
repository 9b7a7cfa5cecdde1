package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/services"
)

const (
	// DefaultFrameInterval is how often the scroll animation is stepped
	DefaultFrameInterval = 16 * time.Millisecond

	// wheelDelta is the pixel delta reported for one wheel notch
	wheelDelta = 100

	// swipe gestures synthesised by s and S
	swipeDistance = 120
	swipeDuration = 100 * time.Millisecond
)

// domKeys maps terminal key names to the DOM names the controller resolves
var domKeys = map[string]string{
	"down":   "ArrowDown",
	"up":     "ArrowUp",
	"j":      "j",
	"k":      "k",
	"home":   "Home",
	"end":    "End",
	"pgdown": "PageDown",
	"pgup":   "PageUp",
	" ":      " ",
	"space":  " ",
}

var titleCaser = cases.Title(language.English)

// Options configures the preview model
type Options struct {
	Feed       *memory.Feed
	Controller services.ControllerOptions
	Retry      services.RetryPolicy
	Title      string
	Logger     *slog.Logger

	// FrameInterval defaults to DefaultFrameInterval
	FrameInterval time.Duration
}

// Model is the bubbletea model of the terminal preview. The controller is owned
// by the Update goroutine; cooldown timers come back as messages.
type Model struct {
	feed       *memory.Feed
	controller *services.NavigationController
	scheduler  *Scheduler
	history    *history
	styles     *Styles
	logger     *slog.Logger
	retry      services.RetryPolicy
	title      string
	frame      time.Duration

	width    int
	height   int
	attempts int
	last     entities.Disposition
	err      error
	quitting bool

	unsubscribe func()
}

// New creates the preview model for a feed
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Title == "" {
		opts.Title = "slidestep"
	}

	scheduler := NewScheduler()
	hist := &history{next: opts.Controller.Observer}

	ctrlOpts := opts.Controller
	ctrlOpts.Observer = hist
	if ctrlOpts.Logger == nil {
		ctrlOpts.Logger = opts.Logger
	}

	m := &Model{
		feed:       opts.Feed,
		controller: services.NewNavigationController(opts.Feed, scheduler, ctrlOpts),
		scheduler:  scheduler,
		history:    hist,
		styles:     NewStyles(),
		logger:     opts.Logger.With("component", "tui"),
		retry:      opts.Retry,
		title:      opts.Title,
		frame:      opts.FrameInterval,
	}

	// listeners may run inside Update, so the message is sent from a new goroutine
	m.unsubscribe = opts.Feed.OnStructuralChange(func() {
		go scheduler.deliver(recheckMsg{})
	})

	return m
}

// Scheduler returns the scheduler that must be bound to the running program
func (m *Model) Scheduler() *Scheduler {
	return m.scheduler
}

// State returns the controller state. Only valid from Update or after the program ended.
func (m *Model) State() entities.NavigationState {
	return m.controller.State()
}

// Err returns the error that stopped attaching, if any
func (m *Model) Err() error {
	return m.err
}

// Close releases the controller and the feed subscription
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.controller.Close()
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.scheduleAttach(1, m.retry.InitialDelay), m.tick())
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tickMsg:
		if m.feed.Region().Step(m.frame) {
			m.controller.HandleScroll()
		}
		return m, m.tick()

	case runMsg:
		msg.timer.run()
		return m, nil

	case attachMsg:
		return m, m.handleAttach(msg.attempt)

	case recheckMsg:
		m.controller.Recheck()
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return tea.Quit
	case "a":
		m.feed.Append(memory.Item{Title: fmt.Sprintf("Slide %d", m.feed.Len()+1)})
		m.controller.Recheck()
		return nil
	case "x":
		if n := m.feed.Len(); n > 1 {
			m.feed.SetCount(n - 1)
			m.controller.Recheck()
		}
		return nil
	case "s":
		m.swipe(entities.DirectionForward)
		return nil
	case "S":
		m.swipe(entities.DirectionBackward)
		return nil
	}

	if key, ok := domKeys[msg.String()]; ok {
		m.last = m.controller.HandleKey(entities.KeyEvent{Key: key})
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}

	var delta float64
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		delta = wheelDelta
	case tea.MouseButtonWheelUp:
		delta = -wheelDelta
	default:
		return
	}

	m.last = m.controller.HandleWheel(entities.WheelEvent{DeltaY: delta})
}

// swipe synthesises a quick vertical gesture; a forward swipe moves the finger up
func (m *Model) swipe(direction entities.Direction) {
	now := time.Now()
	start := entities.TouchStart{Y: 400, At: now}
	end := entities.TouchEnd{
		Y:  400 - float64(direction)*swipeDistance,
		At: now.Add(swipeDuration),
	}

	m.controller.HandleTouchStart(start)
	m.last = m.controller.HandleTouchEnd(end)
}

func (m *Model) handleAttach(attempt int) tea.Cmd {
	m.attempts = attempt

	err := m.controller.Attach()
	if err == nil {
		m.err = nil
		return nil
	}

	if !entities.IsNotReady(err) {
		m.err = err
		m.logger.Warn("Attach failed", slog.String("error", err.Error()))
		return nil
	}

	if m.retry.MaxAttempts > 0 && attempt >= m.retry.MaxAttempts {
		m.err = fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		m.logger.Warn("Attach abandoned", slog.Int("attempts", attempt))
		return nil
	}

	interval := m.retry.Interval
	if interval <= 0 {
		interval = time.Second
	}
	return m.scheduleAttach(attempt+1, interval)
}

func (m *Model) scheduleAttach(attempt int, delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return attachMsg{attempt: attempt} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return attachMsg{attempt: attempt}
	})
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n")

	state := m.controller.State()
	if !state.Attached {
		b.WriteString(m.styles.Dim.Render(fmt.Sprintf("Waiting for slides (attempt %d)", m.attempts)))
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(m.styles.Suppressed.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(m.styles.Help.Render("q quit"))
		return b.String()
	}

	b.WriteString(m.renderSlides(state))
	b.WriteString(m.styles.Status.Render(m.renderStatus(state)))

	if len(m.history.entries) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Log.Render(strings.Join(m.history.entries, "\n")))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("↑/↓ j/k step • home/end jump • wheel scroll • s/S swipe • a/x add/drop • q quit"))
	return b.String()
}

func (m *Model) renderSlides(state entities.NavigationState) string {
	items := m.feed.Items()

	start, end := 0, len(items)
	if rows := m.height - 12; rows > 0 && len(items) > rows {
		start = state.CurrentIndex - rows/2
		if start < 0 {
			start = 0
		}
		end = start + rows
		if end > len(items) {
			end = len(items)
			start = end - rows
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%3d  %s", i+1, items[i].Title)
		if items[i].Height > 0 {
			line += m.styles.Dim.Render(fmt.Sprintf("  (%gpx)", items[i].Height))
		}

		if i == state.CurrentIndex {
			b.WriteString(m.styles.Current.Render("▶ " + line))
		} else {
			b.WriteString(m.styles.Slide.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderStatus(state entities.NavigationState) string {
	region := m.feed.Region()
	parts := []string{
		fmt.Sprintf("Slide %d/%d", state.CurrentIndex+1, state.SlideCount),
		layoutLabel(state.Layout),
		fmt.Sprintf("offset %.0f", region.ScrollOffset()),
	}

	if state.Transitioning {
		remaining := time.Until(state.CooldownDeadline).Round(10 * time.Millisecond)
		if remaining < 0 {
			remaining = 0
		}
		parts = append(parts, m.styles.Cooldown.Render(fmt.Sprintf("cooldown %s", remaining)))
	}
	if m.last.Suppressed {
		parts = append(parts, m.styles.Suppressed.Render("suppressed"))
	}

	return strings.Join(parts, " • ")
}

// layoutLabel renders nearest_center as "Nearest Center"
func layoutLabel(layout entities.Layout) string {
	return titleCaser.String(strings.ReplaceAll(string(layout), "_", " "))
}

var _ tea.Model = (*Model)(nil)
