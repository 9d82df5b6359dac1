package cli

import (
	"fmt"

	"github.com/thenoetrevino/cadena/internal/cli/styles"
	"github.com/thenoetrevino/cadena/internal/converters"
	"github.com/thenoetrevino/cadena/internal/models"
)

// History handles `cadena history`. Exactly one of taskID/projectID is
// set; the cobra layer enforces that.
func (c *CLI) History(taskID, projectID int, asJSON bool) error {
	var entries []*models.HistoryEntry
	var err error
	if taskID > 0 {
		entries, err = c.App.TaskService.ListHistoryForTask(c.Context(), taskID)
	} else {
		entries, err = c.App.TaskService.ListHistoryForProject(c.Context(), projectID)
	}
	if err != nil {
		return err
	}

	if asJSON {
		return PrintJSON(converters.HistoryToViews(entries))
	}

	if len(entries) == 0 {
		fmt.Println(styles.SubtitleStyle.Render("No history"))
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s %s task #%d by %s\n",
			styles.SubtitleStyle.Render(e.CreatedAt.Format("2006-01-02 15:04:05")),
			styles.LabelStyle.Render(string(e.Action)), e.TaskID, e.ActorID)
	}
	return nil
}
