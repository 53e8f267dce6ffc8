package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/oakd/internal/cliout"
	"github.com/marmos91/oakd/pkg/config"
	"github.com/marmos91/oakd/pkg/server"
)

var statusPort int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of a running oakd instance by calling its
/healthz and /readyz endpoints.

Examples:
  # Check status on the default port
  oakd status

  # Check status on a custom port
  oakd status --port 9090`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusPort, "port", 0, "oakd HTTP port (default: value from config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	port := statusPort
	if port == 0 {
		cfg, err := config.Load(GetConfigFile())
		if err == nil {
			port = cfg.HTTPListenPort
		}
	}
	if port == 0 {
		return fmt.Errorf("no port configured or discoverable; pass --port")
	}

	client := &http.Client{Timeout: 2 * time.Second}

	live, liveErr := fetchStatus(client, port, "/healthz")
	ready, readyErr := fetchStatus(client, port, "/readyz")

	rows := [][2]string{
		{"Liveness", statusOrError(live, liveErr)},
		{"Readiness", statusOrError(ready, readyErr)},
	}
	if readyErr == nil && ready.Data != nil {
		data, _ := json.Marshal(ready.Data)
		rows = append(rows, [2]string{"Readiness data", string(data)})
	}

	fmt.Println()
	fmt.Println("oakd Server Status")
	fmt.Println("===================")
	cliout.KeyValueTable(os.Stdout, rows)
	fmt.Println()

	return nil
}

func statusOrError(resp *server.Response, err error) string {
	if err != nil {
		return fmt.Sprintf("unreachable (%s)", err)
	}
	return resp.Status
}

func fetchStatus(client *http.Client, port int, path string) (*server.Response, error) {
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d%s", port, path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body server.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &body, nil
}
