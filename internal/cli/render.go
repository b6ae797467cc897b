package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

var (
	borderASCII = lipgloss.Border{
		Top:          "-",
		Bottom:       "-",
		Left:         "|",
		Right:        "|",
		TopLeft:      "+",
		TopRight:     "+",
		BottomLeft:   "+",
		BottomRight:  "+",
		MiddleLeft:   "+",
		MiddleRight:  "+",
		Middle:       "+",
		MiddleTop:    "+",
		MiddleBottom: "+",
	}

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	statusStyles = map[types.ProjectStatus]lipgloss.Style{
		types.StatusActive:    cellStyle.Foreground(lipgloss.Color("2")),
		types.StatusOnHold:    cellStyle.Foreground(lipgloss.Color("3")),
		types.StatusCompleted: cellStyle.Foreground(lipgloss.Color("244")),
	}
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(borderASCII).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderStats(stats *service.ProjectStats) string {
	return newTable("Status", "Projects").
		Row(string(types.StatusActive), strconv.Itoa(stats.Active)).
		Row(string(types.StatusOnHold), strconv.Itoa(stats.OnHold)).
		Row(string(types.StatusCompleted), strconv.Itoa(stats.Completed)).
		Row("total", strconv.Itoa(stats.Total)).
		Render()
}

func renderProjects(projects []*repository.Project) string {
	t := newTable("Name", "Client", "Status", "End date")
	statuses := make([]types.ProjectStatus, len(projects))
	for i, p := range projects {
		end := ""
		if p.EndDate != nil {
			end = p.EndDate.Format(service.DateLayout)
		}
		t.Row(p.Name, p.ClientName, string(p.Status), end)
		statuses[i] = p.Status
	}

	return t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == 2 && row >= 0 && row < len(statuses) {
			if s, ok := statusStyles[statuses[row]]; ok {
				return s
			}
		}
		return cellStyle
	}).Render()
}
