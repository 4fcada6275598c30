package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/nic/pkg/nic/command"
)

var (
	runAuthor  string
	runChannel string
	runTimeout time.Duration
	runVerbose bool
)

var runCmd = &cobra.Command{
	Use:   "run [nachricht...]",
	Short: "Führt eine Nachricht aus",
	Long: `Führt eine Chat-Nachricht gegen den Kommando-Katalog aus und gibt
die Ausgaben aller verketteten Aufrufe aus.

Nachrichten ohne Kommando werden ignoriert (Exit-Code 0).

Beispiele:
  nic run '!echo "hallo welt"'
  nic run --author alice '!greet > upper'`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runAuthor, "author", "cli", "Autor der Nachricht")
	runCmd.Flags().StringVar(&runChannel, "channel", "cli", "Kanal der Nachricht")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Second, "Maximale Ausführungszeit")
	runCmd.Flags().BoolVar(&runVerbose, "details", false, "Kommando und Dauer je Aufruf anzeigen")
}

func runRun(cmd *cobra.Command, args []string) error {
	msg, err := readMessage(args)
	if err != nil {
		return err
	}

	dispatcher, err := newDispatcher(appConfig, logger, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	results, err := dispatcher.Dispatch(ctx, command.Message{
		Content: msg,
		Author:  runAuthor,
		Channel: runChannel,
	})
	if err != nil {
		if command.IsIgnorable(err) {
			fmt.Printf("Ignoriert: %s\n", command.Code(err))
			return nil
		}
		return fmt.Errorf("[%s] %w", command.Code(err), err)
	}

	for _, r := range results {
		if runVerbose {
			fmt.Printf("# %s (%s)\n", r.Invocation.Command.Name, r.Duration.Round(time.Microsecond))
		}
		fmt.Println(r.Output)
	}
	return nil
}
