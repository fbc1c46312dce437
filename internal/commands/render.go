package commands

import (
	"fmt"
	"io"

	"quadtask/internal/board"
	"quadtask/internal/config"
	"quadtask/internal/output"
	"quadtask/internal/service"
)

// boardDocument is the --format json|yaml shape of a rendered list.
type boardDocument struct {
	Filter string         `json:"filter" yaml:"filter"`
	Total  int            `json:"total" yaml:"total"`
	Done   int            `json:"done" yaml:"done"`
	Active int            `json:"active" yaml:"active"`
	Tasks  []service.Task `json:"tasks" yaml:"tasks"`
}

// listOptions are the flags shared by every command that prints the list.
type listOptions struct {
	filter string
	format string
}

// resolve parses the flags, falling back to the configured default filter.
func (o listOptions) resolve(cfg *config.Config) (board.Filter, output.Format, error) {
	raw := o.filter
	if raw == "" {
		raw = cfg.Filter()
	}
	filter, err := board.ParseFilter(raw)
	if err != nil {
		return "", "", err
	}
	format, err := output.ParseFormat(o.format)
	if err != nil {
		return "", "", err
	}
	return filter, format, nil
}

// openBoard creates a board wired to the CLI notifier, positioned at filter.
func openBoard(cfg *config.Config, svc service.Service, errOut io.Writer, filter board.Filter, assumeYes bool) *board.Board {
	b := board.New(svc, newNotifier(cfg, errOut, assumeYes), cfg.Log())
	b.State.Filter = filter
	return b
}

// printView writes the list in the chosen format.
func printView(out io.Writer, cfg *config.Config, view board.View, format output.Format) error {
	if format != output.Text {
		doc := boardDocument{
			Filter: string(view.Filter),
			Total:  view.Total,
			Done:   view.Done,
			Active: view.Active(),
			Tasks:  make([]service.Task, 0, len(view.Rows)),
		}
		for _, row := range view.Rows {
			doc.Tasks = append(doc.Tasks, row.Task)
		}
		return output.Encode(out, format, doc)
	}
	if cfg.Quiet {
		return nil
	}
	if len(view.Rows) == 0 {
		fmt.Fprintln(out, "no tasks found")
		output.FormatCounters(out, view)
		return nil
	}
	output.FormatBoard(out, view)
	return nil
}

// afterMutation prints the list when the board reloaded successfully and
// returns the exit code for err.
func afterMutation(out io.Writer, cfg *config.Config, b *board.Board, format output.Format, reloaded bool, err error) int {
	if reloaded && b.State.LastError == nil {
		if perr := printView(out, cfg, b.View, format); perr != nil && err == nil {
			err = perr
		}
	}
	return exitFor(err)
}
