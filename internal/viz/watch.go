package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/phnet/internal/integrators"
)

const (
	historyCapacity = 600
	maxStepsPerTick = 64
	frameInterval   = time.Second / 30
)

type TickMsg time.Time

type watchKeys struct {
	Pause  key.Binding
	Rewind key.Binding
	Faster key.Binding
	Slower key.Binding
	Theme  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var defaultWatchKeys = watchKeys{
	Pause:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pause")),
	Rewind: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rewind")),
	Faster: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	Slower: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
	Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k watchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Rewind, k.Faster, k.Slower, k.Help, k.Quit}
}

func (k watchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Rewind},
		{k.Faster, k.Slower},
		{k.Theme, k.Help, k.Quit},
	}
}

// Watch steps a trajectory on every frame and shows the state as signed
// bars next to the energy history. Stepping stops at the first error.
type Watch struct {
	traj          *integrators.Trajectory
	vertices      []string
	title         string
	current       integrators.Sample
	energyHistory []float64
	driftHistory  []float64
	scale         float64
	stepsPerTick  int
	running       bool
	err           error
	width, height int
	canvas        *Canvas
	keys          watchKeys
	help          help.Model
}

// NewWatch builds the view. vertices labels the state components.
func NewWatch(traj *integrators.Trajectory, vertices []string, title string) *Watch {
	w := &Watch{
		traj:         traj,
		vertices:     vertices,
		title:        title,
		stepsPerTick: 1,
		running:      true,
		width:        80,
		height:       24,
		canvas:       NewCanvas(40, 8),
		keys:         defaultWatchKeys,
		help:         help.New(),
	}
	w.rewind()
	return w
}

func (w *Watch) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, w.keys.Quit):
			return w, tea.Quit
		case key.Matches(msg, w.keys.Pause):
			w.running = !w.running
		case key.Matches(msg, w.keys.Rewind):
			w.rewind()
		case key.Matches(msg, w.keys.Faster):
			w.stepsPerTick = min(w.stepsPerTick*2, maxStepsPerTick)
		case key.Matches(msg, w.keys.Slower):
			w.stepsPerTick = max(w.stepsPerTick/2, 1)
		case key.Matches(msg, w.keys.Theme):
			NextTheme()
		case key.Matches(msg, w.keys.Help):
			w.help.ShowAll = !w.help.ShowAll
		}
	case tea.WindowSizeMsg:
		w.width, w.height = msg.Width, msg.Height
		w.help.Width = msg.Width
	case TickMsg:
		if w.running && w.err == nil {
			w.advance(w.stepsPerTick)
		}
		return w, tick()
	}
	return w, nil
}

func (w *Watch) rewind() {
	w.traj.Reset()
	w.err = nil
	w.current = w.traj.Current()
	w.energyHistory = append(w.energyHistory[:0], w.current.Energy)
	w.driftHistory = append(w.driftHistory[:0], 0)
	w.scale = math.Max(w.current.X.Norm(), 1e-12)
}

func (w *Watch) advance(n int) {
	for range n {
		s, err := w.traj.Next()
		if err != nil {
			w.err = err
			w.running = false
			return
		}
		w.current = s
		w.energyHistory = appendBounded(w.energyHistory, s.Energy)
		w.driftHistory = appendBounded(w.driftHistory, s.Drift)
	}
}

func appendBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// Current is the latest sample shown.
func (w *Watch) Current() integrators.Sample { return w.current }

func (w *Watch) View() string {
	var s strings.Builder
	status := "RUNNING"
	switch {
	case w.err != nil:
		status = "FAILED"
	case !w.running:
		status = "PAUSED"
	}
	s.WriteString(titleStyle().Render(strings.ToUpper(w.title)) + "  " + labelStyle().Render(status) + "\n")
	s.WriteString(strings.Join([]string{
		field("method", string(w.traj.Method())),
		field("step", fmt.Sprintf("%d", w.current.Step)),
		field("t", fmt.Sprintf("%.3f", w.current.T)),
		field("×", fmt.Sprintf("%d", w.stepsPerTick)),
	}, "  ") + "\n")
	s.WriteString(field("H", fmt.Sprintf("%.9f", w.current.Energy)) + "  " +
		labelStyle().Render("drift ") + DriftText(w.current.Drift) + "\n\n")

	w.canvas.Clear()
	w.canvas.Bars(w.current.X, w.scale)
	left := w.canvas.String() + labelStyle().Render(w.componentLegend())

	right := PlotSeries(w.energyHistory, "energy", 30, 6)
	if right == "" {
		right = labelStyle().Render("energy history pending")
	}
	right += "\n" + labelStyle().Render("drift ") + SparklineChart(w.driftHistory, 30)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right) + "\n")
	if w.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(w.err.Error()) + "\n")
	}
	w.help.Styles.ShortKey = keyStyle()
	w.help.Styles.ShortDesc = labelStyle()
	w.help.Styles.FullKey = keyStyle()
	w.help.Styles.FullDesc = labelStyle()
	s.WriteString("\n" + w.help.View(w.keys))
	return s.String()
}

func (w *Watch) componentLegend() string {
	if len(w.vertices) == 0 {
		return ""
	}
	const maxShown = 8
	shown := w.vertices
	more := ""
	if len(shown) > maxShown {
		shown, more = shown[:maxShown], " …"
	}
	return strings.Join(shown, " ") + more
}

// RunWatch runs the view full-screen until the user quits.
func RunWatch(w *Watch) error {
	_, err := tea.NewProgram(w, tea.WithAltScreen()).Run()
	return err
}
