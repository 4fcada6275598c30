package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/nic/pkg/nic/scanner"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan [nachricht...]",
	Short: "Zerlegt eine Nachricht in Tokens",
	Long: `Zerlegt eine Nachricht mit den konfigurierten Präfixen und dem
Verkettungszeichen in Tokens.

Ohne Argument wird die Nachricht von stdin gelesen.

Beispiele:
  nic scan '!echo "hallo welt" > upper'
  echo '!roll 2d6' | nic scan --json`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Ausgabe als JSON")
}

// tokenJSON is the JSON form of a token
type tokenJSON struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Pos   int    `json:"pos"`
}

func runScan(cmd *cobra.Command, args []string) error {
	msg, err := readMessage(args)
	if err != nil {
		return err
	}

	tokens, err := scanner.Scan(msg, appConfig.ParsingOptions())
	if err != nil {
		return err
	}

	if scanJSON {
		out := make([]tokenJSON, len(tokens))
		for i, tok := range tokens {
			out[i] = tokenJSON{Kind: tok.Kind.String(), Value: tok.Value, Pos: tok.Pos}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("%-5s %-14s %s\n", "POS", "TYP", "WERT")
	for _, tok := range tokens {
		fmt.Printf("%-5d %-14s %q\n", tok.Pos, tok.Kind, tok.Value)
	}
	fmt.Printf("\n%d Tokens, %d Aufrufe\n", len(tokens), len(scanner.Segments(tokens)))
	return nil
}
