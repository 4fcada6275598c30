package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/nic/internal/console"
	"github.com/msto63/nic/pkg/core/logging"
)

var (
	consoleAuthor  string
	consoleChannel string
	consoleTokens  bool
)

var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"repl"},
	Short:   "Startet die interaktive Konsole",
	Long: `Startet eine interaktive Konsole, die jede Eingabe als Chat-Nachricht
gegen den Kommando-Katalog ausführt.

Tastenkürzel:
  Enter       Nachricht senden
  ↑/↓         Historie
  Ctrl+T      Token-Ansicht an/aus
  Ctrl+L      Verlauf leeren
  PgUp/PgDn   Scrollen
  Esc/Ctrl+C  Beenden`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().StringVar(&consoleAuthor, "author", os.Getenv("USER"), "Autor der Nachrichten")
	consoleCmd.Flags().StringVar(&consoleChannel, "channel", "console", "Kanal der Nachrichten")
	consoleCmd.Flags().BoolVar(&consoleTokens, "tokens", false, "Token-Ansicht beim Start aktivieren")
}

func runConsole(cmd *cobra.Command, args []string) error {
	// The alternate screen owns the terminal, log entries are discarded
	logCfg := appConfig.LoggerConfig("nic-console")
	logCfg.Output = io.Discard
	log := logging.NewLogger(logCfg)

	dispatcher, err := newDispatcher(appConfig, log, nil)
	if err != nil {
		return err
	}

	return console.Run(console.Config{
		Dispatcher: dispatcher,
		Parsing:    appConfig.ParsingOptions(),
		Author:     consoleAuthor,
		Channel:    consoleChannel,
		ShowTokens: consoleTokens,
	})
}
