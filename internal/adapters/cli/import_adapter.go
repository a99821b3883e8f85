package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/upshot/internal/ports/primary"
)

// ImportAdapter translates CLI operations to ImportService calls.
type ImportAdapter struct {
	service primary.ImportService
	out     io.Writer
}

// NewImportAdapter creates a new ImportAdapter with the given service.
func NewImportAdapter(service primary.ImportService, out io.Writer) *ImportAdapter {
	return &ImportAdapter{
		service: service,
		out:     out,
	}
}

// Import merges completion sources as one data set and reports unmatched names.
func (a *ImportAdapter) Import(ctx context.Context, name string, paths []string) error {
	result, err := a.service.ImportSources(ctx, primary.ImportRequest{Name: name, Paths: paths})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, ok("Imported data set %s (%s)", result.Name, result.DataSetID))
	fmt.Fprintf(a.out, "  Sources:  %d\n", result.Sources)
	fmt.Fprintf(a.out, "  Records:  %d (%d matched)\n", result.Records, result.Matched)
	fmt.Fprintf(a.out, "  Added:    %d\n", result.Added)
	fmt.Fprintf(a.out, "  Replaced: %d\n", result.Replaced)
	if result.Skipped > 0 {
		fmt.Fprintf(a.out, "  Skipped:  %d (no event name)\n", result.Skipped)
	}
	fmt.Fprintf(a.out, "  Updated:  %d upgraders\n", len(result.Updated))

	if len(result.Unmatched) > 0 {
		fmt.Fprintf(a.out, "\nUnmatched names (%d):\n", len(result.Unmatched))
		for _, u := range result.Unmatched {
			if u.Closest != "" {
				fmt.Fprintln(a.out, warn("%-24s %d records, closest %s (%.3f)", u.Name, u.Records, u.Closest, u.Score))
				continue
			}
			fmt.Fprintln(a.out, warn("%-24s %d records", u.Name, u.Records))
		}
	}
	return nil
}
