package commands

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morganstate-cs/morganai/pkg/cli"
)

// apiClient talks to a running morganai server using the credentials
// stored in the active context.
type apiClient struct {
	base  string
	token string
	http  *http.Client
}

func newAPIClient() (*apiClient, *cli.Context, error) {
	cctx, err := currentContext()
	if err != nil {
		return nil, nil, err
	}
	if cctx.ServerURL == "" {
		return nil, nil, fmt.Errorf("context %q has no server URL; run 'morganai config set %s --server ...'", cctx.Name, cctx.Name)
	}
	return &apiClient{
		base:  strings.TrimRight(cctx.ServerURL, "/"),
		token: cctx.GetExtra("access_token"),
		http:  http.DefaultClient,
	}, cctx, nil
}

func (c *apiClient) do(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("%s (%d)", apiErr.Detail, resp.StatusCode)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the configured server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, cctx, err := newAPIClient()
		if err != nil {
			return err
		}
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		register, _ := cmd.Flags().GetBool("register")
		if username == "" {
			return fmt.Errorf("--username is required")
		}
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimSpace(line)
		}

		creds := map[string]string{"username": username, "password": password}
		if register {
			if err := client.do("POST", "/api/auth/register", creds, nil); err != nil {
				return err
			}
			cli.PrintSuccess("registered %q", username)
		}

		var pair struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		}
		if err := client.do("POST", "/api/auth/login", creds, &pair); err != nil {
			return err
		}
		cctx.SetExtra("access_token", pair.AccessToken)
		cctx.SetExtra("refresh_token", pair.RefreshToken)
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		cli.PrintSuccess("logged in as %q", username)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "username")
	loginCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	loginCmd.Flags().Bool("register", false, "create the account first")
	rootCmd.AddCommand(loginCmd)
}
