package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

func buildAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents in the durable store",
	}
	cmd.AddCommand(buildAgentAddCmd(), buildAgentListCmd(), buildAgentRmCmd())
	return cmd
}

func buildAgentAddCmd() *cobra.Command {
	var (
		configPath, dbPath               string
		role, description, instructions  string
		provider, modelName, project     string
		leader                           bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(configPath, dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			kind := model.ProviderKind(provider)
			if kind == "" {
				kind = model.ProviderKind(rt.cfg.Provider.Kind)
			}
			if modelName == "" {
				modelName = rt.cfg.Provider.Model
			}

			a := model.Agent{
				Name:         args[0],
				Role:         role,
				Description:  description,
				Provider:     kind,
				Model:        modelName,
				Instructions: instructions,
				ProjectName:  project,
				Leader:       leader,
				Temperature:  rt.cfg.Provider.Temperature,
			}
			sanitised := rt.registry.Create(cmd.Context(), a)
			fmt.Fprintf(cmd.OutOrStdout(), "created agent %s (%s)\n", sanitised.Name, sanitised.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite agent store")
	cmd.Flags().StringVar(&role, "role", "", "Short role label")
	cmd.Flags().StringVar(&description, "description", "", "Human-readable description")
	cmd.Flags().StringVar(&instructions, "instructions", "", "System instructions")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider kind (defaults to config)")
	cmd.Flags().StringVar(&modelName, "model", "", "Model name (defaults to config)")
	cmd.Flags().StringVar(&project, "project", "", "Bound project directory name, for tool use")
	cmd.Flags().BoolVar(&leader, "leader", false, "Mark this agent as a leader able to delegate")
	return cmd
}

func buildAgentListCmd() *cobra.Command {
	var configPath, dbPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every agent in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(configPath, dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			agents := rt.registry.List()
			out := cmd.OutOrStdout()
			if len(agents) == 0 {
				fmt.Fprintln(out, "No agents.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tROLE\tPROVIDER\tSTATUS\tLEADER")
			for _, a := range agents {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", a.Name, a.Role, a.Provider, a.Status, a.Leader)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite agent store")
	return cmd
}

func buildAgentRmCmd() *cobra.Command {
	var configPath, dbPath string
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete an agent by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(configPath, dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			a, ok := rt.registry.ByName(args[0], "")
			if !ok {
				return fmt.Errorf("agent %q not found", args[0])
			}
			if err := rt.registry.Delete(cmd.Context(), a.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted agent %s\n", a.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite agent store")
	return cmd
}
