package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lab-report-explainer/internal/setup"
)

func setupCmd() *cobra.Command {
	var (
		clientConfig string
		binary       string
		serverConfig string
		env          []string
	)

	resolvePath := func() (string, error) {
		if clientConfig != "" {
			return clientConfig, nil
		}
		return setup.DefaultClientConfigPath()
	}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with a desktop MCP client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			vars, err := parseEnv(env)
			if err != nil {
				return err
			}
			entry, err := setup.Register(path, setup.Options{
				BinaryPath: binary,
				ConfigFile: serverConfig,
				Env:        vars,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s in %s\n  command: %s %s\n",
				setup.ServerName, path, entry.Command, strings.Join(entry.Args, " "))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&clientConfig, "client-config", "", "client config file (default: per-OS location)")
	cmd.Flags().StringVar(&binary, "binary", "", "server binary (default: this executable)")
	cmd.Flags().StringVar(&serverConfig, "server-config", "", "config file passed to the server")
	cmd.Flags().StringArrayVarP(&env, "env", "e", nil, "KEY=VALUE environment for the server, repeatable")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			status, err := setup.GetStatus(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client config: %s\n", status.ConfigPath)
			fmt.Fprintf(out, "Registered:    %t\n", status.Registered)
			if status.Registered {
				fmt.Fprintf(out, "Command:       %s %s\n", status.Entry.Command, strings.Join(status.Entry.Args, " "))
			}
			for _, issue := range status.Issues {
				fmt.Fprintf(out, "  ! %s\n", issue)
			}
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			removed, err := setup.Unregister(path)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", setup.ServerName, path)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remove")
			}
			return nil
		},
	}

	cmd.AddCommand(statusCmd, removeCmd)
	return cmd
}

func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env value %q, want KEY=VALUE", p)
		}
		vars[k] = v
	}
	return vars, nil
}
