package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thenoetrevino/cadena/internal/cli/styles"
	"github.com/thenoetrevino/cadena/internal/converters"
	"github.com/thenoetrevino/cadena/internal/models"
)

// Board handles `cadena board`
func (c *CLI) Board(projectID int, asJSON bool) error {
	board, err := c.App.TaskService.BoardView(c.Context(), projectID)
	if err != nil {
		return err
	}

	if asJSON {
		out := make(map[string][]*converters.TaskRefView, len(board))
		for col, refs := range board {
			out[col] = converters.RefsToViews(refs)
		}
		return PrintJSON(out)
	}

	fmt.Println(RenderBoard(board))
	return nil
}

// RenderBoard renders the grouped columns side by side.
// Column order is alphabetical with uncategorized last, so output is
// stable across runs.
func RenderBoard(board models.Board) string {
	if len(board) == 0 {
		return styles.SubtitleStyle.Render("No tasks")
	}

	names := make([]string, 0, len(board))
	for name := range board {
		if name == models.UncategorizedBucket {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if _, ok := board[models.UncategorizedBucket]; ok {
		names = append(names, models.UncategorizedBucket)
	}

	columns := make([]string, 0, len(names))
	for _, name := range names {
		var sb strings.Builder
		sb.WriteString(styles.TitleStyle.Render(name))
		sb.WriteString("\n")
		for _, ref := range board[name] {
			sb.WriteString(fmt.Sprintf("#%d %s\n", ref.ID, ref.Title))
		}
		columns = append(columns, styles.ColumnStyle.Render(sb.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}
