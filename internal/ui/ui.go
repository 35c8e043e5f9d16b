package ui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"droidlink/internal/bridge"
	"droidlink/internal/config"
	"droidlink/internal/logging"
	"droidlink/internal/logsink"
	"droidlink/internal/notify"
	"droidlink/internal/orchestrator"
	"droidlink/internal/paths"
	"droidlink/internal/system"
	"droidlink/internal/version"
)

const (
	fieldPath = iota
	fieldAddress
	fieldPort
	fieldPackage
	fieldCount
)

const focusDevices = -1

var fieldLabels = [fieldCount]string{"Bridge path", "Address", "Port", "Package"}

type completionMsg orchestrator.Completion

type autoRefreshMsg time.Time

type configReloadMsg struct {
	Config config.Config
	Err    error
}

type copiedMsg struct {
	Err error
}

type model struct {
	o          *orchestrator.Orchestrator
	cfg        config.Config
	configPath string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	logView viewport.Model
	inputs  []textinput.Model
	focused int
	styles  styles

	// inflight is the operation started from the keyboard, uuid.Nil when idle.
	inflight uuid.UUID

	width   int
	height  int
	logText string
	notice  string
}

func newModel(cfg config.Config, configPath string, runner orchestrator.Runner, logger *log.Logger) model {
	path := cfg.Bridge.Path
	if path == "" {
		if located, err := bridge.Locate(); err == nil {
			path = located
		}
	}
	o := orchestrator.New(orchestrator.Options{
		Runner:     runner,
		BridgePath: path,
		Interfaces: cfg.Bridge.Interfaces,
		Language:   cfg.UI.Language,
		LogLimit:   cfg.Log.Limit,
		Notifier:   notify.New(cfg.Notify.Desktop, "droidlink", int32(cfg.Notify.TimeoutMs)),
		Logger:     logger,
	})

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 512
		inputs[i] = ti
	}
	inputs[fieldPath].Placeholder = "/path/to/adb"
	inputs[fieldPath].SetValue(path)
	inputs[fieldAddress].Placeholder = "192.168.1.20"
	inputs[fieldAddress].SetValue(cfg.Device.LastAddress)
	inputs[fieldPort].CharLimit = 5
	inputs[fieldPort].SetValue(strconv.Itoa(cfg.Bridge.DefaultPort))
	inputs[fieldPackage].Placeholder = "/path/to/app.apk"
	inputs[fieldPackage].SetValue(cfg.Device.LastPackage)

	s := spinner.New()
	s.Spinner = spinner.Dot

	st := newStyles(cfg.UI.Theme)
	s.Style = st.accent

	return model{
		o:          o,
		cfg:        cfg,
		configPath: configPath,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    s,
		logView:    viewport.New(60, 10),
		inputs:     inputs,
		focused:    focusDevices,
		styles:     st,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitCompletion(m.o.Completions()),
		autoRefreshCmd(m.cfg.UI.RefreshInterval),
		m.spinner.Tick,
	}
	if bridge.Check(m.o.BridgePath()) == nil {
		_, _ = m.o.Refresh()
	}
	return tea.Batch(cmds...)
}

func waitCompletion(ch <-chan orchestrator.Completion) tea.Cmd {
	return func() tea.Msg {
		return completionMsg(<-ch)
	}
}

func autoRefreshCmd(interval time.Duration) tea.Cmd {
	if interval < time.Second {
		interval = 5 * time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return autoRefreshMsg(t)
	})
}

func copyLogCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{Err: system.WriteClipboard(text)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	case completionMsg:
		c := orchestrator.Completion(msg)
		prev := m.selectedID()
		m.o.Apply(c)
		if c.Op == orchestrator.OpRefresh && prev != "" {
			// keep the cursor on the same device across refreshes
			_ = m.o.Registry().SelectID(prev)
		}
		if c.ID == m.inflight {
			m.inflight = uuid.Nil
			if c.Op == orchestrator.OpResolveIP && c.Result.OK() {
				m.inputs[fieldAddress].SetValue(c.Address)
				m.persist()
			}
		}
		cmds = append(cmds, waitCompletion(m.o.Completions()))
	case autoRefreshMsg:
		if m.cfg.UI.AutoRefresh && !m.o.Busy() && bridge.Check(m.o.BridgePath()) == nil {
			if _, pending := m.o.PendingAck(); !pending {
				_, _ = m.o.AutoRefresh()
			}
		}
		cmds = append(cmds, autoRefreshCmd(m.cfg.UI.RefreshInterval))
	case configReloadMsg:
		m.reload(msg)
	case copiedMsg:
		if msg.Err != nil {
			m.notice = "copy failed: " + msg.Err.Error()
		} else {
			m.notice = "log copied to clipboard"
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}
	m.syncLog()
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if _, pending := m.o.PendingAck(); pending {
		if key.Matches(msg, m.keys.Ack) {
			m.o.Acknowledge()
		}
		return m, nil
	}

	if m.focused != focusDevices {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.persist()
			return m.focus(focusDevices)
		case key.Matches(msg, m.keys.Next):
			m.persist()
			return m.focus(m.focused + 1)
		case key.Matches(msg, m.keys.Prev):
			m.persist()
			return m.focus(m.focused - 1)
		case key.Matches(msg, m.keys.Submit):
			m.persist()
			m.submit()
			return m, nil
		}
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		if m.focused == fieldPath {
			m.o.SetBridgePath(strings.TrimSpace(m.inputs[fieldPath].Value()))
		}
		return m, cmd
	}

	m.notice = ""
	reg := m.o.Registry()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.Up):
		if i := reg.SelectedIndex(); i > 0 {
			_ = reg.Select(i - 1)
		}
	case key.Matches(msg, m.keys.Down):
		if i := reg.SelectedIndex(); i+1 < reg.Len() {
			_ = reg.Select(i + 1)
		}
	case key.Matches(msg, m.keys.Next):
		return m.focus(fieldPath)
	case key.Matches(msg, m.keys.Prev):
		return m.focus(fieldCount - 1)
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.ClearLog):
		m.o.ClearLog()
	case key.Matches(msg, m.keys.CopyLog):
		return m, copyLogCmd(m.o.Log().Text())
	default:
		m.action(msg)
	}
	return m, nil
}

// action starts an orchestrator operation. Nothing is issued while another
// operation is in flight.
func (m *model) action(msg tea.KeyMsg) {
	if !isAction(m.keys, msg) {
		return
	}
	if m.o.Busy() {
		m.notice = "busy, wait for the current operation"
		return
	}
	m.persist()
	selected := m.selectedID()
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.track(m.o.Refresh())
	case key.Matches(msg, m.keys.Connect):
		m.track(m.o.Connect(m.inputs[fieldAddress].Value(), m.port()))
	case key.Matches(msg, m.keys.Disconnect):
		m.track(m.o.DisconnectOne(selected))
	case key.Matches(msg, m.keys.DisconnectAll):
		m.track(m.o.DisconnectAll())
	case key.Matches(msg, m.keys.Install):
		m.track(m.o.Install(m.inputs[fieldPackage].Value()))
	case key.Matches(msg, m.keys.State):
		m.track(m.o.QueryState(selected))
	case key.Matches(msg, m.keys.ResolveIP):
		m.track(m.o.ResolveIP(selected))
	case key.Matches(msg, m.keys.Check):
		m.track(m.o.ValidateTool())
	case key.Matches(msg, m.keys.Restart):
		m.track(m.o.RestartService())
	}
}

// submit runs the operation that belongs to the focused field.
func (m *model) submit() {
	if m.o.Busy() {
		m.notice = "busy, wait for the current operation"
		return
	}
	switch m.focused {
	case fieldPath:
		m.track(m.o.ValidateTool())
	case fieldAddress, fieldPort:
		m.track(m.o.Connect(m.inputs[fieldAddress].Value(), m.port()))
	case fieldPackage:
		m.track(m.o.Install(m.inputs[fieldPackage].Value()))
	}
}

// track remembers the operation just started; a rejected start leaves the
// previous value.
func (m *model) track(id uuid.UUID, err error) {
	if err == nil {
		m.inflight = id
	}
}

func (m model) focus(i int) (model, tea.Cmd) {
	if m.focused != focusDevices {
		m.inputs[m.focused].Blur()
	}
	if i < 0 || i >= fieldCount {
		m.focused = focusDevices
		return m, nil
	}
	m.focused = i
	return m, m.inputs[i].Focus()
}

func (m model) selectedID() string {
	d, ok := m.o.Registry().Selected()
	if !ok {
		return ""
	}
	return d.ID
}

// port returns 0 for unparsable input so admission reports it.
func (m model) port() int {
	n, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldPort].Value()))
	if err != nil {
		return 0
	}
	return n
}

// persist writes the edited fields to the config file when they changed.
func (m *model) persist() {
	next := m.cfg
	next.Bridge.Path = strings.TrimSpace(m.inputs[fieldPath].Value())
	next.Device.LastAddress = strings.TrimSpace(m.inputs[fieldAddress].Value())
	next.Device.LastPackage = strings.TrimSpace(m.inputs[fieldPackage].Value())
	if p := m.port(); p >= 1 && p <= 65535 {
		next.Bridge.DefaultPort = p
	}
	if next.Bridge.Path == m.cfg.Bridge.Path &&
		next.Device.LastAddress == m.cfg.Device.LastAddress &&
		next.Device.LastPackage == m.cfg.Device.LastPackage &&
		next.Bridge.DefaultPort == m.cfg.Bridge.DefaultPort {
		return
	}
	m.cfg = next
	if m.configPath == "" {
		return
	}
	if err := config.Save(m.configPath, next); err != nil {
		m.notice = "config: " + err.Error()
	}
}

// reload takes settings edited outside the TUI. Fields being edited keep
// their text.
func (m *model) reload(msg configReloadMsg) {
	if msg.Err != nil {
		m.notice = "config: " + msg.Err.Error()
		return
	}
	cfg := msg.Config
	if cfg.Bridge.GlobalArgs != m.cfg.Bridge.GlobalArgs {
		if r, err := bridge.NewRunner(cfg.Bridge.GlobalArgs); err != nil {
			m.notice = "config: " + err.Error()
		} else {
			m.o.SetRunner(r)
		}
	}
	m.o.SetInterfaces(cfg.Bridge.Interfaces)
	values := [fieldCount]string{cfg.Bridge.Path, cfg.Device.LastAddress, strconv.Itoa(cfg.Bridge.DefaultPort), cfg.Device.LastPackage}
	for i, v := range values {
		if i == m.focused || (i == fieldPath && v == "") {
			continue
		}
		m.inputs[i].SetValue(v)
	}
	if m.focused != fieldPath && cfg.Bridge.Path != "" {
		m.o.SetBridgePath(cfg.Bridge.Path)
	}
	if cfg.UI.Theme != m.cfg.UI.Theme {
		m.styles = newStyles(cfg.UI.Theme)
		m.spinner.Style = m.styles.accent
		m.logText = ""
	}
	m.cfg = cfg
}

func (m *model) resize() {
	_, right := columns(m.width)
	m.logView.Width = max(20, right-4)
	m.help.Width = m.width
	reserved := 18
	if m.help.ShowAll {
		reserved += 6
	}
	m.logView.Height = max(5, m.height-reserved)
}

func (m *model) syncLog() {
	text := renderLog(m.o.Log().Entries(), m.styles)
	if text == m.logText {
		return
	}
	m.logText = text
	m.logView.SetContent(text)
	m.logView.GotoBottom()
}

func (m model) View() string {
	if text, pending := m.o.PendingAck(); pending {
		return ackView(m, text)
	}
	appStyle := lipgloss.NewStyle().Padding(1, 2)
	left, right := columns(m.width)

	layout := lipgloss.JoinVertical(lipgloss.Left,
		headerView(m),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.box.Width(left).Render(devicesView(m)),
			m.styles.box.Width(right).Render(fieldsView(m)+"\n\n"+m.logView.View()),
		),
		statusView(m),
		m.help.View(m.keys),
	)
	return appStyle.Render(layout)
}

func headerView(m model) string {
	title := m.styles.title.Render("DROIDLINK")
	subtitle := m.styles.muted.Render("v" + version.Version)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", subtitle)
}

func devicesView(m model) string {
	var b strings.Builder
	label := "Devices"
	if m.focused == focusDevices {
		label = "Devices (focus)"
	}
	b.WriteString(m.styles.label.Render(label) + "\n\n")
	reg := m.o.Registry()
	devs := reg.Devices()
	if len(devs) == 0 {
		b.WriteString(m.styles.muted.Render("no devices") + "\n")
	}
	sel := reg.SelectedIndex()
	for i, d := range devs {
		cursor := " "
		style := lipgloss.NewStyle()
		if i == sel {
			cursor = ">"
			style = m.styles.selected
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, style.Render(d.String())))
	}
	if addr := m.o.Address(); addr != "" {
		b.WriteString("\nLast IP: " + addr + "\n")
	}
	if out := strings.TrimSpace(m.o.Output()); out != "" {
		b.WriteString("\n" + m.styles.muted.Render(out))
	}
	return b.String()
}

func fieldsView(m model) string {
	var b strings.Builder
	for i, ti := range m.inputs {
		label := fmt.Sprintf("%-12s", fieldLabels[i])
		if i == m.focused {
			label = m.styles.selected.Render(label)
		} else {
			label = m.styles.label.Render(label)
		}
		b.WriteString(label + " " + ti.View())
		if i < len(m.inputs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func statusView(m model) string {
	status, isErr := m.o.Status()
	style := m.styles.ok
	if isErr {
		style = m.styles.err
	}
	line := style.Render(emptyIf(status))
	if m.o.Busy() {
		line = m.spinner.View() + " " + line
	}
	if m.notice != "" {
		line += "  " + m.styles.muted.Render(m.notice)
	}
	return line
}

func ackView(m model, text string) string {
	w := max(40, min(80, m.width-10))
	box := m.styles.modal.Width(w).Render(
		m.styles.err.Render("Operation failed") + "\n\n" + text + "\n\n" +
			m.styles.muted.Render("enter/esc: dismiss"),
	)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func renderLog(entries []logsink.Entry, st styles) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := e.String()
		if e.IsError {
			line = st.err.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func columns(width int) (left, right int) {
	if width <= 0 {
		width = 100
	}
	left = max(30, width/3)
	right = max(40, width-left-8)
	return left, right
}

func emptyIf(s string) string {
	if s == "" {
		return "ready"
	}
	return s
}

func isAction(k keyMap, msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Refresh, k.Connect, k.Disconnect, k.DisconnectAll,
		k.Install, k.State, k.ResolveIP, k.Check, k.Restart)
}

func Run(cfg config.Config, configPath string) error {
	runner, err := bridge.NewRunner(cfg.Bridge.GlobalArgs)
	if err != nil {
		return err
	}
	var logger *log.Logger
	if home, err := paths.HomeDir(); err == nil && cfg.Log.File != "" {
		if l, closer, err := logging.NewFile(paths.ResolveInHome(home, cfg.Log.File)); err == nil {
			defer closer.Close()
			logger = l
		}
	}
	p := tea.NewProgram(newModel(cfg, configPath, runner, logger), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if configPath != "" {
		stop, err := config.Watch(ctx, configPath, func(c config.Config, err error) {
			p.Send(configReloadMsg{Config: c, Err: err})
		})
		if err == nil {
			defer stop()
		}
	}

	_, err = p.Run()
	return err
}
