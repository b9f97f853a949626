package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/term"

	"github.com/fakeyudi/kado/internal/config"
	"github.com/fakeyudi/kado/internal/hotspot"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	disabledStyle = cellStyle.Foreground(lipgloss.Color("8"))
)

// renderList writes the screen layout and the hotspot each position resolves
// to on each screen. Styling is only applied when stdout is a terminal.
func renderList(w io.Writer, cfg *config.Config, regions []hotspot.Region) error {
	styled := w == io.Writer(os.Stdout) && term.IsTerminal(os.Stdout.Fd())

	fmt.Fprintf(w, "Config: %s (refresh %d Hz)\n\n", cfg.Path, cfg.RefreshRate)

	screens := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SCREEN", "X", "Y", "WIDTH", "HEIGHT")
	for _, r := range regions {
		screens.Row(r.Name,
			strconv.Itoa(int(r.X)), strconv.Itoa(int(r.Y)),
			strconv.Itoa(int(r.Width)), strconv.Itoa(int(r.Height)))
	}

	hotspots := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SCREEN", "POSITION", "SIZE", "DELAY", "ENABLED", "ON ENTER", "ON LEAVE")
	var disabledRows []bool
	for _, r := range regions {
		for _, pos := range hotspot.Positions {
			spec, ok := cfg.Lookup(r.Name, pos)
			if !ok {
				continue
			}
			hotspots.Row(r.Name, pos.String(),
				strconv.FormatUint(uint64(spec.Size), 10),
				spec.Delay.String(),
				strconv.FormatBool(spec.Enabled),
				orDash(spec.OnEnter), orDash(spec.OnLeave))
			disabledRows = append(disabledRows, !spec.Enabled)
		}
	}

	if styled {
		screens.StyleFunc(plainStyle)
		hotspots.StyleFunc(func(row, col int) lipgloss.Style {
			if row >= 0 && row < len(disabledRows) && disabledRows[row] {
				return disabledStyle
			}
			return plainStyle(row, col)
		})
	} else {
		screens.Border(lipgloss.ASCIIBorder())
		hotspots.Border(lipgloss.ASCIIBorder())
	}

	fmt.Fprintln(w, screens.Render())
	if len(disabledRows) == 0 {
		fmt.Fprintln(w, "\nNo hotspots configured.")
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, hotspots.Render())
	return nil
}

func plainStyle(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return cellStyle
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
