package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/nic/pkg/nic/command"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse [nachricht...]",
	Short: "Zeigt Aufrufe und gebundene Argumente",
	Long: `Zerlegt eine Nachricht, löst die Kommandos im Katalog auf und bindet
ihre Argumente, ohne etwas auszuführen.

Beispiele:
  nic parse '!echo hallo > upper'
  nic parse --json '!roll 3'`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Ausgabe als JSON")
}

// invocationJSON is the JSON form of a parsed invocation
type invocationJSON struct {
	Index      int            `json:"index"`
	Command    string         `json:"command"`
	Identifier string         `json:"identifier"`
	Args       map[string]any `json:"args"`
}

func runParse(cmd *cobra.Command, args []string) error {
	msg, err := readMessage(args)
	if err != nil {
		return err
	}

	dispatcher, err := newDispatcher(appConfig, logger, nil)
	if err != nil {
		return err
	}

	invocations, err := dispatcher.Parse(command.Message{Content: msg, Author: "cli"})
	if err != nil {
		return fmt.Errorf("[%s] %w", command.Code(err), err)
	}

	if parseJSON {
		out := make([]invocationJSON, len(invocations))
		for i, inv := range invocations {
			out[i] = invocationJSON{
				Index:      inv.Index,
				Command:    inv.Command.Name,
				Identifier: inv.Identifier,
				Args:       inv.Args.Map(),
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, inv := range invocations {
		fmt.Printf("#%d %s", inv.Index+1, inv.Command.Name)
		if inv.Identifier != inv.Command.Name {
			fmt.Printf(" (als %s)", inv.Identifier)
		}
		fmt.Println()
		for _, b := range inv.Args {
			fmt.Printf("    %-12s = %v\n", b.Name, b.Value)
		}
	}
	return nil
}
