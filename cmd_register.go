package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexandro/assetgraph-mcp/register"
)

var registerFlags struct {
	name string
}

var registerCmd = &cobra.Command{
	Use:   "register <project|user> [directory] [-- server flags]",
	Short: "Add this server to an MCP client config",
	Long: `Write the server entry into <directory>/.mcp.json (project, default
directory ".") or ~/.claude.json (user). Project registrations pin
--project-dir to the registered directory. Arguments after "--" are passed
to the server on every start.

Examples:
  assetgraph-mcp register project
  assetgraph-mcp register project ../Game -- --log-level debug
  assetgraph-mcp register user -- --watch=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		options, err := registerOptions(cmd, args)
		if err != nil {
			return err
		}
		configPath, err := register.Register(options)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\n", options.ServerName, configPath)
		return nil
	},
}

var unregisterCmd = &cobra.Command{
	Use:   "unregister <project|user> [directory]",
	Short: "Remove this server from an MCP client config",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		options, err := registerOptions(cmd, args)
		if err != nil {
			return err
		}
		configPath, err := register.Unregister(options)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", options.ServerName, configPath)
		return nil
	},
}

func registerOptions(cmd *cobra.Command, args []string) (register.Options, error) {
	positional, forwarded := register.SplitArgs(args, cmd.ArgsLenAtDash())
	if len(positional) == 0 || len(positional) > 2 {
		return register.Options{}, fmt.Errorf("expected <project|user> [directory], got %d arguments", len(positional))
	}
	scope, err := register.ParseScope(positional[0])
	if err != nil {
		return register.Options{}, err
	}

	options := register.Options{
		Scope:      scope,
		ServerName: registerFlags.name,
		ServerArgs: forwarded,
	}
	if len(positional) == 2 {
		if scope != register.ScopeProject {
			return register.Options{}, fmt.Errorf("a directory is only accepted for project scope")
		}
		options.Directory = positional[1]
	}
	if options.ServerName == "" {
		options.ServerName = register.DeriveServerName(os.Args[0])
	}
	return options, nil
}

func init() {
	for _, cmd := range []*cobra.Command{registerCmd, unregisterCmd} {
		cmd.Flags().StringVar(&registerFlags.name, "name", "", "Server name in the client config (default: binary name without -mcp)")
		rootCmd.AddCommand(cmd)
	}
}
