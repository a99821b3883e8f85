package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/models"
)

// addAsOfFlag registers --as-of on cmd.
func addAsOfFlag(cmd *cobra.Command) {
	cmd.Flags().String("as-of", "", "Evaluate as of this date (YYYY-MM-DD, default today)")
}

// asOf reads --as-of. An empty value yields the zero time, which services treat as today.
func asOf(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("as-of")
	t, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of: %w", err)
	}
	return t, nil
}
