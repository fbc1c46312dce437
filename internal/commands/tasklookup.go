package commands

import (
	"context"
	"fmt"

	"quadtask/internal/board"
	"quadtask/internal/service"
)

// findTask loads every task into b and returns the one with id.
// The API has no single-task read, so the full collection is fetched.
func findTask(ctx context.Context, b *board.Board, id service.TaskID) (service.Task, error) {
	if err := b.Load(ctx, board.All); err != nil {
		return service.Task{}, err
	}
	row, ok := b.View.Find(id)
	if !ok {
		return service.Task{}, fmt.Errorf("task not found: %s", id)
	}
	return row.Task, nil
}
