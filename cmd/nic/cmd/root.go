package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/msto63/nic/pkg/core/config"
	"github.com/msto63/nic/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nic",
	Short: "nic - Chat-Kommando-Framework",
	Long: `nic erkennt Kommandos in Chat-Nachrichten, bindet ihre Argumente
und führt sie aus.

Eine Nachricht wie

  !echo "hallo welt" 2 > upper

wird in Tokens zerlegt, an der Verkettung (>) in Aufrufe geteilt
und Aufruf für Aufruf ausgeführt.

Kommandos:
  scan     - Nachricht in Tokens zerlegen
  parse    - Aufrufe und gebundene Argumente anzeigen
  run      - Nachricht ausführen
  serve    - WebSocket-Gateway starten
  console  - Interaktive Konsole
  catalog  - Kommando-Katalog prüfen
  audit    - Ausführungsprotokoll anzeigen`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntime,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("Ausführung fehlgeschlagen", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/nic.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

// loadRuntime loads the configuration and creates the logger
func loadRuntime(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		appConfig, err = config.Load(cfgFile)
	} else {
		appConfig, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("Konfiguration: %w", err)
	}

	logCfg := appConfig.LoggerConfig("nic")
	if verbose {
		logCfg.Level = "debug"
	}
	logger = logging.NewLogger(logCfg)
	return nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}
