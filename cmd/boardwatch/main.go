// boardwatch — терминальный монитор доски заказов: счётчики, состояние
// оповещений и звонок терминала на каждое событие alert. Для стоек без
// браузера (или для дебага SSE-потока).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rknpizza/counterboard/internal/notifier"
)

const refreshEvery = 5 * time.Second

// ------- сообщения -------

type sseMsg sseEvent

type sseClosedMsg struct{ err error }

type countsMsg struct {
	active    int
	completed int
}

type countsErrMsg struct{ err error }

type refreshTickMsg time.Time

type muteErrMsg struct{ err error }

// ------- клавиши -------

type keyMap struct {
	Mute    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Mute:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute/unmute")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ------- модель -------

type model struct {
	client *boardClient
	events chan sseEvent

	ctx    context.Context
	cancel context.CancelFunc

	spin      spinner.Model
	connected bool
	lastErr   error

	active    int
	completed int
	state     notifier.State
}

func newModel(client *boardClient) model {
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		client: client,
		events: make(chan sseEvent, 16),
		ctx:    ctx,
		cancel: cancel,
		spin:   sp,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.openStream(),
		m.waitEvent(),
		m.fetchCounts(),
		m.scheduleRefresh(),
	)
}

// openStream — держит SSE-поток в фоне; завершение потока приходит сообщением.
func (m model) openStream() tea.Cmd {
	return func() tea.Msg {
		return sseClosedMsg{err: m.client.StreamEvents(m.ctx, m.events)}
	}
}

// waitEvent — одно событие из канала; команда перевыпускается после каждого.
func (m model) waitEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return sseMsg(ev)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m model) fetchCounts() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
		defer cancel()
		active, completed, err := m.client.OrderCounts(ctx)
		if err != nil {
			return countsErrMsg{err: err}
		}
		return countsMsg{active: active, completed: completed}
	}
}

func (m model) scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return refreshTickMsg(t) })
}

func (m model) toggleMute() tea.Cmd {
	muted := !m.state.Muted
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
		defer cancel()
		if err := m.client.SetMuted(ctx, muted); err != nil {
			return muteErrMsg{err: err}
		}
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, keys.Mute):
			return m, m.toggleMute()
		case key.Matches(msg, keys.Refresh):
			return m, m.fetchCounts()
		}

	case sseMsg:
		m.connected = true
		m.lastErr = nil
		switch msg.Name {
		case "alert":
			// звонок терминала — весь смысл монитора
			fmt.Print("\a")
		case "new-order":
			return m, tea.Batch(m.waitEvent(), m.fetchCounts())
		case "state":
			var st notifier.State
			if err := json.Unmarshal([]byte(msg.Data), &st); err == nil {
				m.state = st
			}
		}
		return m, m.waitEvent()

	case sseClosedMsg:
		m.connected = false
		m.lastErr = msg.err
		return m, nil

	case countsMsg:
		m.active = msg.active
		m.completed = msg.completed
		return m, nil

	case countsErrMsg:
		m.lastErr = msg.err
		return m, nil

	case muteErrMsg:
		m.lastErr = msg.err
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.fetchCounts(), m.scheduleRefresh())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	lines := []string{titleStyle.Render("counterboard")}

	if !m.connected {
		status := m.spin.View() + " connecting..."
		if m.lastErr != nil {
			status = alertStyle.Render("✖ stream down: " + m.lastErr.Error())
		}
		lines = append(lines, status)
	} else {
		lines = append(lines, successStyle.Render("● live"))
	}

	lines = append(lines,
		fmt.Sprintf("active: %s   completed: %s",
			pendingStyle.Render(fmt.Sprintf("%d", m.active)),
			successStyle.Render(fmt.Sprintf("%d", m.completed))),
	)

	switch {
	case m.state.Muted:
		lines = append(lines, mutedStyle.Render("🔕 muted"))
	case m.state.LoopActive:
		lines = append(lines, alertStyle.Render(fmt.Sprintf("🔔 alert in %ds", m.state.CountdownSeconds)))
	default:
		lines = append(lines, mutedStyle.Render("🔔 idle"))
	}
	if m.state.PlaybackBlocked {
		lines = append(lines, alertStyle.Render("playback blocked: no listeners"))
	}

	lines = append(lines, helpStyle.Render("m mute · r refresh · q quit"))

	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return panelStyle.Render(out) + "\n"
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "board server base URL")
	user := flag.String("user", "counter", "board username")
	pass := flag.String("pass", "", "board password")
	flag.Parse()

	client := newBoardClient(*addr)

	loginCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Login(loginCtx, *user, *pass); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	m := newModel(client)
	defer m.cancel()

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "boardwatch: %v\n", err)
		os.Exit(1)
	}
}
