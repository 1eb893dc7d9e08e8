// slotctl inspects and manages clickforge save slots from the command
// line, against the same backend the server uses.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"clickforge/internal/game"
	"clickforge/internal/store"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "slotctl",
		Short: "Inspect and manage clickforge save slots",
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite save file (defaults to CLICKFORGE_DB or clickforge.db)")

	rootCmd.AddCommand(listCmd(), showCmd(), resetCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openSlots() *store.SlotStore {
	modes := game.DefaultModes()

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pg, err := store.OpenPostgres(dbURL)
		if err != nil {
			log.Fatal("failed to open database:", err)
		}
		return store.NewSlotStore(pg, modes.IDs())
	}

	path := dbPath
	if path == "" {
		path = os.Getenv("CLICKFORGE_DB")
	}
	if path == "" {
		path = "clickforge.db"
	}
	s, err := store.OpenSQLite(path)
	if err != nil {
		log.Fatal("failed to open save file:", err)
	}
	return store.NewSlotStore(s, modes.IDs())
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List save slots and the active mode",
		Run: func(cmd *cobra.Command, args []string) {
			slots := openSlots()
			active := slots.ActiveMode()
			for _, mode := range slots.Modes() {
				_, ok, err := slots.Raw(mode)
				status := "empty"
				if err != nil {
					status = "error: " + err.Error()
				} else if ok {
					status = "saved"
				}
				marker := " "
				if mode == active {
					marker = "*"
				}
				fmt.Printf("%s %-12s %s\n", marker, mode, status)
			}
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <mode>",
		Short: "Print a slot's stored payload",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			slots := openSlots()
			raw, ok, err := slots.Raw(args[0])
			if err != nil {
				log.Fatal("read failed:", err)
			}
			if !ok {
				fmt.Println("empty slot (defaults apply on load)")
				return
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, []byte(raw), "", "  "); err != nil {
				// Corrupt payloads are still worth seeing as-is.
				fmt.Println(raw)
				return
			}
			fmt.Println(pretty.String())
		},
	}
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every save slot and the mode selector",
		Run: func(cmd *cobra.Command, args []string) {
			if !yes {
				fmt.Println("refusing to reset without --yes")
				os.Exit(1)
			}
			slots := openSlots()
			slots.DeleteAll()
			fmt.Println("all slots cleared")
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
