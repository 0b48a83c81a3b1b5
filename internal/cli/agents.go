package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mwhitby/agent-store/internal/model"
	"github.com/mwhitby/agent-store/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage agents",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		Run:   runAgentsList,
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an agent (get-or-create by name)",
		Args:  cobra.ExactArgs(1),
		Run:   runAgentsAdd,
	}
	add.Flags().String("username", "", "Agent username")
	add.Flags().String("bio", "", "Agent bio")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an agent and everything it owns",
		Args:  cobra.ExactArgs(1),
		Run:   runAgentsRm,
	}

	cmd.AddCommand(list, add, rm)
	RootCmd.AddCommand(cmd)
}

func runAgentsList(cmd *cobra.Command, args []string) {
	db, err := openDB(cmd.Context())
	if err != nil {
		exitErr("open db", err)
	}
	defer db.Close()

	agents, err := store.New(db, uuid.Nil).GetAgents(cmd.Context())
	if err != nil {
		exitErr("list agents", err)
	}

	b, _ := json.MarshalIndent(agents, "", "  ")
	fmt.Println(string(b))
}

func runAgentsAdd(cmd *cobra.Command, args []string) {
	username, _ := cmd.Flags().GetString("username")
	bio, _ := cmd.Flags().GetString("bio")

	db, err := openDB(cmd.Context())
	if err != nil {
		exitErr("open db", err)
	}
	defer db.Close()

	agent, err := store.New(db, uuid.Nil).EnsureAgentExists(cmd.Context(), &model.Agent{
		Name:     args[0],
		Username: username,
		Bio:      bio,
		Enabled:  true,
	})
	if err != nil {
		exitErr("add agent", err)
	}

	b, _ := json.MarshalIndent(agent, "", "  ")
	fmt.Println(string(b))
}

func runAgentsRm(cmd *cobra.Command, args []string) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		exitErr("parse agent id", err)
	}

	db, err := openDB(cmd.Context())
	if err != nil {
		exitErr("open db", err)
	}
	defer db.Close()

	if _, err := store.New(db, uuid.Nil).DeleteAgent(cmd.Context(), id); err != nil {
		exitErr("delete agent", err)
	}

	fmt.Println("deleted", id)
}
