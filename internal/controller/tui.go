package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// maxFeedLines bounds the activity feed kept in memory.
const maxFeedLines = 200

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// WatchTUI implements UI with a live Bubble Tea view for watch mode: a
// spinner while idle and a scrolling feed of generation activity.
type WatchTUI struct {
	output  io.Writer
	onQuit  func()
	program *tea.Program

	mu   sync.Mutex
	done chan struct{}
}

// NewWatchTUI creates a WatchTUI. onQuit is invoked when the user closes the
// view so the surrounding watch loop can shut down.
func NewWatchTUI(output io.Writer, onQuit func()) *WatchTUI {
	return &WatchTUI{output: output, onQuit: onQuit}
}

// Start launches the Bubble Tea program on its own goroutine.
func (t *WatchTUI) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newWatchModel(t.onQuit)

	if f, ok := t.output.(*os.File); ok {
		if width, height, err := term.GetSize(int(f.Fd())); err == nil {
			model.width = width
			model.height = height
		}
	}

	t.mu.Lock()
	t.program = tea.NewProgram(model, tea.WithOutput(t.output))
	t.done = make(chan struct{})
	t.mu.Unlock()

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			fmt.Fprintf(t.output, "tui error: %v\n", err)
		}
	}()

	return nil
}

// Close quits the program and waits for it to finish rendering.
func (t *WatchTUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// DisplayPass feeds one generation pass into the live view.
func (t *WatchTUI) DisplayPass(_ context.Context, report m.PassReport) {
	t.send(passMsg(report))
}

// DisplayEvent feeds a removal or move notification into the live view.
func (t *WatchTUI) DisplayEvent(_ context.Context, event m.Event) {
	t.send(eventMsg(event))
}

// DisplaySummary updates the tracked totals shown in the footer.
func (t *WatchTUI) DisplaySummary(_ context.Context, scripts, resources int) {
	t.send(summaryMsg{scripts: scripts, resources: resources})
}

// DisplayTracked is not rendered live; watch mode shows totals instead.
func (t *WatchTUI) DisplayTracked(_ context.Context, snapshot m.Snapshot) error {
	t.send(summaryMsg{scripts: len(snapshot.Scripts), resources: len(snapshot.Resources)})
	return nil
}

func (t *WatchTUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

type passMsg m.PassReport

type eventMsg m.Event

type summaryMsg struct {
	scripts   int
	resources int
}

// watchModel is the Bubble Tea model behind the watch view.
type watchModel struct {
	spinner   spinner.Model
	lines     []string
	scripts   int
	resources int
	width     int
	height    int
	quitting  bool
	onQuit    func()
}

func newWatchModel(onQuit func()) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return watchModel{spinner: s, onQuit: onQuit}
}

// Init starts the spinner ticking.
func (w watchModel) Init() tea.Cmd {
	return w.spinner.Tick
}

// Update handles key presses, window resizes and activity messages.
func (w watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			w.quitting = true

			if w.onQuit != nil {
				w.onQuit()
			}

			return w, tea.Quit
		}

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height

	case passMsg:
		w.lines = w.appendLine(formatPass(m.PassReport(msg)))

	case eventMsg:
		if line := formatEvent(m.Event(msg)); line != "" {
			w.lines = w.appendLine(line)
		}

	case summaryMsg:
		w.scripts = msg.scripts
		w.resources = msg.resources

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)

		return w, cmd
	}

	return w, nil
}

// View renders the title, the recent activity feed and a footer.
func (w watchModel) View() string {
	if w.quitting {
		return ""
	}

	var out string

	out += titleStyle.Render("gpgen watch") + "\n"
	out += w.spinner.View() + dimStyle.Render(" waiting for scene changes, press q to quit") + "\n\n"

	visible := w.lines

	if max := w.height - 6; max > 0 && len(visible) > max {
		visible = visible[len(visible)-max:]
	}

	for _, line := range visible {
		out += line + "\n"
	}

	if w.scripts > 0 || w.resources > 0 {
		out += "\n" + dimStyle.Render(fmt.Sprintf("tracked: %d scripts, %d resources", w.scripts, w.resources))
	}

	return out
}

func (w watchModel) appendLine(line string) []string {
	lines := append(w.lines, line)
	if len(lines) > maxFeedLines {
		lines = lines[len(lines)-maxFeedLines:]
	}

	return lines
}

func formatPass(report m.PassReport) string {
	if report.Err != nil {
		return errStyle.Render("✗ ") + fmt.Sprintf("%s: %v", report.Scene, report.Err)
	}

	line := okStyle.Render("✓ ") + fmt.Sprintf("%s → %sPath (%d constants)", report.Scene, report.ClassName, report.Constants)

	if len(report.Collisions) > 0 {
		line += warnStyle.Render(fmt.Sprintf(" (%d collisions)", len(report.Collisions)))
	}

	return line
}

func formatEvent(event m.Event) string {
	switch event.Kind {
	case m.FileRemoved:
		return warnStyle.Render("- ") + fmt.Sprintf("removed %s", event.Path)
	case m.FilesMoved:
		return warnStyle.Render("~ ") + fmt.Sprintf("moved %s → %s", event.OldPath, event.Path)
	case m.FolderRemoved:
		return warnStyle.Render("- ") + fmt.Sprintf("removed folder %s", event.Path)
	case m.FilesystemChanged:
	}

	return ""
}
