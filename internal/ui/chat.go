package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/klmtseng/BEAM-P2P/internal/beam"
)

type noticeMsg struct{ notice beam.Notice }

// ChatModel is the Bubble Tea model for a beam chat session.
type ChatModel struct {
	session *beam.Session
	refs    chan<- string

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	width     int
	height    int
	ready     bool
	showRooms bool

	statusMsg string
	errMsg    string
	degraded  bool
	started   time.Time
}

// NewChatModel builds the chat UI around a live session. Join references
// entered by the user are pushed onto refs for the session's reference
// watcher to resolve.
func NewChatModel(session *beam.Session, refs chan<- string) ChatModel {
	input := textinput.New()
	input.Placeholder = "Type a message, /send <file>, or /quit"
	input.CharLimit = 0
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = SpinnerStyle

	return ChatModel{
		session: session,
		refs:    refs,
		input:   input,
		spin:    spin,
		started: time.Now(),
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		textinput.Blink,
		waitForNotice(m.session.Notices()),
	)
}

func waitForNotice(ch <-chan beam.Notice) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg{notice: n}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 7
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = vpHeight
		}
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.cycleRoom()
		case tea.KeyCtrlL:
			m.showRooms = !m.showRooms
			m.refresh()
		case tea.KeyCtrlD:
			m.removeActiveRoom()
		case tea.KeyEnter:
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}
		}

	case noticeMsg:
		m.applyNotice(msg.notice)
		cmds = append(cmds, waitForNotice(m.session.Notices()))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) applyNotice(n beam.Notice) {
	switch n := n.(type) {
	case beam.NoticeReady:
		m.degraded = false
		m.statusMsg = fmt.Sprintf("online as %s", n.Identity)
	case beam.NoticeDegraded:
		m.degraded = true
	case beam.NoticeRoomOpened:
		m.errMsg = ""
		m.statusMsg = fmt.Sprintf("beam open: %s", n.Key.String())
	case beam.NoticeConnectFailed:
		m.errMsg = fmt.Sprintf("%s: %v", n.Remote, n.Err)
	case beam.NoticeRoomsChanged:
	}
	m.refresh()
}

// submit handles one line of input.
func (m *ChatModel) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return nil
	}

	switch {
	case line == "/quit":
		return tea.Quit

	case strings.HasPrefix(line, "/send "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/send "))
		att, err := EncodeAttachment(path)
		if err != nil {
			m.errMsg = err.Error()
			return nil
		}
		if err := m.session.Send(att.Content, att.Type, att.FileName, att.FileSize); err != nil {
			m.errMsg = err.Error()
		}

	case strings.HasPrefix(line, "/connect "):
		target := strings.TrimSpace(strings.TrimPrefix(line, "/connect "))
		if _, ok := beam.ParseJoinRef(target); ok {
			// Full join references go through the reference watcher.
			select {
			case m.refs <- target:
			default:
			}
		} else {
			m.session.Connect(target, beam.ModeDirect)
		}
		m.statusMsg = fmt.Sprintf("connecting to %s...", target)

	default:
		if err := m.session.SendText(line); err != nil {
			m.errMsg = err.Error()
		}
	}

	m.refresh()
	return nil
}

func (m *ChatModel) cycleRoom() {
	rooms := m.session.Rooms()
	if len(rooms) < 2 {
		return
	}
	active, ok := m.session.ActiveRoom()
	if !ok {
		m.session.SetActiveRoom(rooms[0].Key)
		m.refresh()
		return
	}
	for i, room := range rooms {
		if room.Key == active.Key {
			m.session.SetActiveRoom(rooms[(i+1)%len(rooms)].Key)
			break
		}
	}
	m.refresh()
}

func (m *ChatModel) removeActiveRoom() {
	active, ok := m.session.ActiveRoom()
	if !ok {
		return
	}
	if err := m.session.RemoveRoom(active.Key); err != nil {
		m.errMsg = err.Error()
	}
	m.refresh()
}

func (m *ChatModel) refresh() {
	if !m.ready {
		return
	}
	if m.showRooms {
		m.viewport.SetContent(NewRoomTable(m.session.Rooms()).View())
		m.viewport.GotoTop()
		return
	}
	room, ok := m.session.ActiveRoom()
	if !ok {
		m.viewport.SetContent(MutedStyle.Render("No active room. Waiting for a beam..."))
		return
	}
	m.viewport.SetContent(m.renderMessages(room))
	m.viewport.GotoBottom()
}

func (m *ChatModel) renderMessages(room beam.Room) string {
	if len(room.Messages) == 0 {
		return MutedStyle.Render("No messages yet.")
	}

	self := m.session.Identity()
	var b strings.Builder
	for _, msg := range room.Messages {
		ts := time.UnixMilli(msg.Timestamp).Format("15:04")

		if msg.Type == beam.MessageSystem {
			b.WriteString(SystemMessageStyle.Render(fmt.Sprintf("-- %s --", msg.Content)))
			b.WriteString("\n")
			continue
		}

		nameStyle := PeerMessageStyle
		name := msg.SenderName
		if msg.SenderID == self {
			nameStyle = SelfMessageStyle
			name = "Me"
		}

		body := msg.Content
		switch msg.Type {
		case beam.MessageImage:
			body = fmt.Sprintf("%s %s (%s)", IconImage, msg.FileName, msg.FileSize)
		case beam.MessageFile:
			body = fmt.Sprintf("%s %s (%s)", IconFile, msg.FileName, msg.FileSize)
		}

		b.WriteString(fmt.Sprintf("%s %s %s\n",
			MutedStyle.Render(ts), nameStyle.Render(name+":"), body))
	}
	return b.String()
}

func (m ChatModel) View() string {
	if !m.ready {
		return fmt.Sprintf("\n %s initializing...", m.spin.View())
	}

	header := m.headerView()
	footer := m.footerView()

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		m.input.View(),
		footer,
	)
}

func (m ChatModel) headerView() string {
	room, ok := m.session.ActiveRoom()
	if !ok {
		return TitleStyle.Render(fmt.Sprintf("%s Beam Hub", IconBeam))
	}

	badge := ModeBadgeDirect.Render("DIRECT")
	if room.Mode == beam.ModeGroup {
		badge = ModeBadgeGroup.Render("GROUP")
	}

	title := TitleStyle.Render(TruncateString(room.Name, 32))
	peers := MutedStyle.Render(fmt.Sprintf("%s %d", IconPeer, len(room.Participants)))

	parts := []string{title, badge, peers}
	if m.degraded {
		parts = append(parts, WarningStyle.Render(IconWarning+" signal server offline"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(parts, " "))
}

func (m ChatModel) footerView() string {
	if m.errMsg != "" {
		return ErrorStyle.Render(IconError + " " + m.errMsg)
	}
	help := "enter send • /send <file> • ctrl+r next room • ctrl+l room list • ctrl+d remove room • esc quit"
	if m.statusMsg != "" {
		return MutedStyle.Render(m.statusMsg + "  •  " + help)
	}
	return MutedStyle.Render(help)
}

// RunChat runs the chat UI until the user quits, then prints the session
// summary.
func RunChat(session *beam.Session) error {
	refs := make(chan string, 4)
	beam.WatchJoinRefs(session, refs)
	defer close(refs)

	model := NewChatModel(session, refs)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	if err != nil {
		return err
	}

	sent, received := 0, 0
	rooms := session.Rooms()
	self := session.Identity()
	for _, room := range rooms {
		for _, msg := range room.Messages {
			if msg.Type == beam.MessageSystem {
				continue
			}
			if msg.SenderID == self {
				sent++
			} else {
				received++
			}
		}
	}

	fmt.Println()
	RenderSessionSummary(SessionSummary{
		Identity: self,
		Rooms:    len(rooms),
		Sent:     sent,
		Received: received,
		Duration: time.Since(model.started),
	})
	return nil
}
