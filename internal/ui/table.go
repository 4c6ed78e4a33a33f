package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/klmtseng/BEAM-P2P/internal/beam"
)

// RoomTable renders the recent-sessions list using lipgloss/table
type RoomTable struct {
	rooms []beam.Room
}

// NewRoomTable creates a new room table. Rooms are expected most recently
// active first, as the store's snapshot returns them.
func NewRoomTable(rooms []beam.Room) *RoomTable {
	return &RoomTable{rooms: rooms}
}

// View renders the table as a string
func (t *RoomTable) View() string {
	if len(t.rooms) == 0 {
		return MutedStyle.Render("No active tunnels")
	}

	headers := []string{"", "Room", "Mode", "Peers", "Messages", "Last Activity"}

	var rows [][]string
	for _, room := range t.rooms {
		icon := IconTunnel
		if room.Mode == beam.ModeGroup {
			icon = IconGroup
		}
		rows = append(rows, []string{
			icon,
			TruncateString(room.Name, 24),
			string(room.Mode),
			fmt.Sprintf("%d", len(room.Participants)),
			fmt.Sprintf("%d", len(room.Messages)),
			room.LastActivity.Format(time.Kitchen),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	return tbl.Render()
}

// Render outputs the table directly to stdout
func (t *RoomTable) Render() {
	fmt.Println(t.View())
}

func RenderRoomTable(rooms []beam.Room) {
	fmt.Println(NewRoomTable(rooms).View())
}

// BeamInfo is the hosting banner: local identity plus the shareable link.
type BeamInfo struct {
	Identity string
	JoinLink string
	Mode     beam.Mode
}

func (b *BeamInfo) View() string {
	label := "Private Tunnel"
	if b.Mode == beam.ModeGroup {
		label = "Group Beam"
	}

	content := fmt.Sprintf("%s %s ready!\n\n%s Identity:   %s\n%s Join Link:  %s",
		IconBeam, label,
		IconCopy, BoldStyle.Foreground(Primary).Render(b.Identity),
		IconLink, MutedStyle.Render(b.JoinLink),
	)

	return SuccessBoxStyle.Render(content)
}

func RenderBeamInfo(identity, joinLink string, mode beam.Mode) {
	info := &BeamInfo{Identity: identity, JoinLink: joinLink, Mode: mode}
	fmt.Println(info.View())
}

// TruncateString shortens a string to max runes with an ellipsis.
func TruncateString(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
