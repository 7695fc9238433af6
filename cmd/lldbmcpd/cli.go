package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lldb-mcp/server/internal/config"
	"github.com/lldb-mcp/server/internal/history"
)

// printRecentSessions renders the most recently recorded sessions as a
// table.
func printRecentSessions(cmd *cobra.Command, hist *history.Store) error {
	records, err := hist.RecentSessions(cmd.Context(), 25)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		infoColor.Println("no recorded sessions")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Session ID", "Created", "Terminated"})
	for _, r := range records {
		terminated := "-"
		if !r.TerminatedAt.IsZero() {
			terminated = r.TerminatedAt.Format("2006-01-02 15:04:05")
		}
		table.Append([]string{r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), terminated})
	}
	table.Render()
	return nil
}

// printConfig renders cfg as pretty-printed JSON.
func printConfig(cmd *cobra.Command, cfg *config.Config) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// httpListenAndServe is a thin wrapper kept separate from runServe so the
// health endpoint's net/http dependency stays out of the transport package.
func httpListenAndServe(addr string, handler http.Handler) error {
	return http.ListenAndServe(addr, handler)
}
