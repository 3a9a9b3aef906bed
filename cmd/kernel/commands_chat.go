package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func buildChatCmd() *cobra.Command {
	var configPath, dbPath string
	cmd := &cobra.Command{
		Use:   "chat <agent-name> <message>",
		Short: "Run one turn against an agent and print the streamed response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(configPath, dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			agent, ok := rt.registry.ByName(args[0], "")
			if !ok {
				return fmt.Errorf("agent %q not found", args[0])
			}

			out := cmd.OutOrStdout()
			_, err = rt.engine.Run(cmd.Context(), agent.ID, args[1], func(delta string) {
				fmt.Fprint(out, delta)
			})
			fmt.Fprintln(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite agent store")
	return cmd
}
