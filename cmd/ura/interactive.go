package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/hostfuncs"
	"github.com/nthnn/ura/log"
)

// outputLimit bounds the program output and logs kept for the output pane.
const outputLimit = 64 * 1024

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type programState int

const (
	stateIdle programState = iota
	stateLoading
	stateDone
	stateFailed
)

type programStatus struct {
	err    error
	result *entities.LoadResult
	stage  entities.Stage
	state  programState
}

// stageMsg carries a loader stage event into the model.
type stageMsg entities.StageEvent

type loadDoneMsg struct {
	err    error
	result *entities.LoadResult
	name   string
}

// loadFunc runs one load. It is the loader bound to a bridge.
type loadFunc func(ctx context.Context, name string) (*entities.LoadResult, error)

type pickModel struct {
	ctx      context.Context
	load     loadFunc
	output   *hostfuncs.BoundedBuffer
	status   map[string]*programStatus
	source   string
	names    []string
	spinner  spinner.Model
	selected int
	running  int
}

func newPickModel(ctx context.Context, source string, names []string, load loadFunc, output *hostfuncs.BoundedBuffer) *pickModel {
	status := make(map[string]*programStatus, len(names))
	for _, name := range names {
		status[name] = &programStatus{}
	}
	return &pickModel{
		ctx:     ctx,
		load:    load,
		output:  output,
		status:  status,
		source:  source,
		names:   names,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(stageStyle)),
	}
}

func (m *pickModel) Init() tea.Cmd {
	return nil
}

func (m *pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.names)-1 {
				m.selected++
			}

		case "enter":
			if len(m.names) == 0 {
				return m, nil
			}
			return m, m.start(m.names[m.selected])

		case "a":
			cmds := make([]tea.Cmd, 0, len(m.names))
			for _, name := range m.names {
				cmds = append(cmds, m.start(name))
			}
			return m, tea.Batch(cmds...)

		case "c":
			m.output.Reset()
		}

	case stageMsg:
		if st, ok := m.status[msg.Name]; ok && st.state == stateLoading {
			st.stage = msg.Stage
		}

	case loadDoneMsg:
		st, ok := m.status[msg.name]
		if !ok {
			return m, nil
		}
		m.running--
		st.result = msg.result
		st.err = msg.err
		if msg.err != nil {
			st.state = stateFailed
		} else {
			st.state = stateDone
		}

	case spinner.TickMsg:
		if m.running == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// start launches a load of name unless one is already running.
func (m *pickModel) start(name string) tea.Cmd {
	st := m.status[name]
	if st == nil || st.state == stateLoading {
		return nil
	}
	*st = programStatus{state: stateLoading}
	m.running++

	ctx, load := m.ctx, m.load
	run := func() tea.Msg {
		result, err := load(ctx, name)
		return loadDoneMsg{name: name, result: result, err: err}
	}
	if m.running == 1 {
		return tea.Batch(run, m.spinner.Tick)
	}
	return run
}

func (m *pickModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ura"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString("\n\n")

	if len(m.names) == 0 {
		b.WriteString(errorStyle.Render("No programs found under asm/."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	b.WriteString("Select a program to load:\n\n")
	for i, name := range m.names {
		line := name
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("  ")
		b.WriteString(m.statusView(m.status[name]))
		b.WriteString("\n")
	}

	if out := m.output.String(); out != "" {
		b.WriteString("\n")
		b.WriteString(lastLines(out, 12))
		if m.output.Truncated() {
			b.WriteString(helpStyle.Render("(output truncated)"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter load • a load all • c clear output • q quit"))
	return b.String()
}

func (m *pickModel) statusView(st *programStatus) string {
	switch st.state {
	case stateLoading:
		return m.spinner.View() + " " + stageStyle.Render(st.stage.String())
	case stateDone:
		return resultStyle.Render(fmt.Sprintf("ok (%s, %d bytes)", st.result.Duration.Round(time.Millisecond), st.result.Size))
	case stateFailed:
		return errorStyle.Render(st.err.Error())
	default:
		return ""
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n") + "\n"
}

// relay forwards loader events to a running tea.Program.
type relay struct {
	program atomic.Pointer[tea.Program]
}

func (r *relay) observe(ev entities.StageEvent) {
	if p := r.program.Load(); p != nil {
		p.Send(stageMsg(ev))
	}
}

func pickCommand(ctx context.Context, args []string, stderr io.Writer) error {
	var cf commonFlags
	fs := newFlagSet("pick", stderr, &cf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !log.IsTerminal(os.Stdout) {
		return fmt.Errorf("%w: pick needs a terminal, use run instead", errUsage)
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}

	// Programs and logs share the output pane so nothing draws over the UI.
	output := hostfuncs.NewBoundedBuffer(outputLimit)
	logger := log.New(cfg.Log.Level, log.FormatText, output)

	var r relay
	a, err := newApp(ctx, cfg, logger, appIO{stdout: output, stderr: output, observer: r.observe})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	names, err := a.programs(ctx, fs.Args())
	if err != nil {
		return err
	}

	load := func(ctx context.Context, name string) (*entities.LoadResult, error) {
		return a.loader.Load(ctx, a.bridge, name)
	}
	p := tea.NewProgram(newPickModel(ctx, cfg.Source, names, load, output), tea.WithContext(ctx))
	r.program.Store(p)

	_, err = p.Run()
	return err
}
