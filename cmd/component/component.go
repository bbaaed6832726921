package component

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cicd-orchestrator/cmd/root"
	"cicd-orchestrator/internal/config"

	"github.com/spf13/cobra"
)

var componentCmd = &cobra.Command{
	Use:   "component",
	Short: "Manage registered components",
	Long:  `The 'component' command talks to the running orchestrator server to list, register and remove components`,
}

func init() {
	root.RootCmd.AddCommand(componentCmd)
}

// apiURL builds a daemon URL from the configured listen address.
func apiURL(path string) string {
	addr := config.Config.Server.Address
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return fmt.Sprintf("http://%s/cicd/api/v1%s", addr, path)
}

// callAPI performs one request against the daemon and decodes the JSON answer
// into out when out is non-nil. Non-2xx answers surface the server's message.
func callAPI(method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequest(method, apiURL(path), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to orchestrator server failed: %v (is the server running?)", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		return fmt.Errorf("server answered %d: %s", resp.StatusCode, string(raw))
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
