package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/datadesk/internal/presentation/graph"
)

// ListSessions prints the IDs of the stored sessions, sorted.
func ListSessions(ctx context.Context, app *App, w io.Writer) error {
	ids, err := app.Desk.Sessions().List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}

	sort.Strings(ids)
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectSession prints a session as indented JSON, or its menu history as
// a Mermaid diagram when asGraph is set.
func InspectSession(ctx context.Context, app *App, w io.Writer, userID string, asGraph bool) error {
	s, err := app.Desk.Sessions().Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("load session %q: %w", userID, err)
	}

	if asGraph {
		fmt.Fprint(w, graph.GenerateMermaid(s.Navigation))
		return nil
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes every listed session, reporting each one. It keeps
// going after a failure and returns all errors joined.
func RemoveSessions(ctx context.Context, app *App, w io.Writer, userIDs []string) error {
	var errs []error
	for _, id := range userIDs {
		if err := app.Desk.Sessions().Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
