package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/liujun01203/spdk/internal/config"
	"github.com/liujun01203/spdk/internal/nvmf/target"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect running nvmfd sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions currently live on a running nvmfd instance",
	Long: `Fetches the live session snapshot from a running nvmfd instance's debug
endpoint (GET /sessions on the configured metrics port) and prints it as
a table. Requires a running "nvmfd start" instance using the same
configuration.`,
	RunE: runSessionsList,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/sessions", cfg.Metrics.Port)
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("sessions list: failed to reach nvmfd at %s: %w", url, err)
	}
	defer resp.Body.Close()

	var sessions []target.SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return fmt.Errorf("sessions list: decode response: %w", err)
	}

	printSessions(sessions)
	return nil
}

func printSessions(sessions []target.SessionInfo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "TRACE ID\tSUBNQN\tENABLED\tCONNECTIONS")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\n", s.TraceID, s.Subnqn, s.Enabled, s.Connections)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "(no active sessions)")
	}
}
