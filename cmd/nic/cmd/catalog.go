package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/nic/internal/catalog"
	"github.com/msto63/nic/pkg/nic/command"
)

var catalogSchemaOut string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Verwaltet den Kommando-Katalog",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check [datei]",
	Short: "Prüft einen Katalog und listet seine Kommandos",
	Long: `Lädt einen Kommando-Katalog, prüft alle Einträge (Signaturen,
Standardwerte, Antwort-Templates, doppelte Namen) und listet die
Kommandos auf.

Ohne Argument wird catalog.path aus der Konfiguration verwendet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogCheck,
}

var catalogSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Gibt das JSON-Schema des Katalogformats aus",
	RunE:  runCatalogSchema,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
	catalogCmd.AddCommand(catalogSchemaCmd)

	catalogSchemaCmd.Flags().StringVarP(&catalogSchemaOut, "output", "o", "", "Ausgabedatei (default: stdout)")
}

func runCatalogCheck(cmd *cobra.Command, args []string) error {
	path := appConfig.Catalog.Path
	if len(args) == 1 {
		path = args[0]
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	// Collisions between entries only show up in a registry
	registry := command.NewRegistry(command.RegistryOptions{
		CaseSensitive: appConfig.Parsing.CaseSensitive,
		EnableHelp:    !appConfig.Parsing.DisableHelp,
	})
	if err := registry.Replace(cat.Definitions()); err != nil {
		return err
	}

	prefix := primaryPrefix(appConfig)
	fmt.Printf("Katalog: %s\n", path)
	fmt.Printf("Kommandos: %d\n\n", cat.Len())
	for _, c := range registry.Commands() {
		fmt.Printf("  %-30s %s\n", c.Usage(prefix), c.Description)
		if len(c.Aliases) > 0 {
			fmt.Printf("  %-30s Aliase: %v\n", "", c.Aliases)
		}
	}
	fmt.Println("\n[+] Katalog ist gültig")
	return nil
}

func runCatalogSchema(cmd *cobra.Command, args []string) error {
	data, err := catalog.SchemaJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if catalogSchemaOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(catalogSchemaOut, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Schema geschrieben: %s\n", catalogSchemaOut)
	return nil
}
