package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/nic/internal/audit"
)

var (
	auditCommand   string
	auditAuthor    string
	auditStatus    string
	auditSince     time.Duration
	auditLimit     int
	auditJSON      bool
	auditOlderThan time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Zeigt das Ausführungsprotokoll",
	Long: `Zeigt und pflegt das Ausführungsprotokoll (audit.path), in das
"nic serve" jeden Kommando-Aufruf schreibt.`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Listet protokollierte Aufrufe",
	RunE:  runAuditList,
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Zeigt Aufrufe je Kommando",
	RunE:  runAuditStats,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Löscht alte Einträge",
	RunE:  runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditStatsCmd)
	auditCmd.AddCommand(auditPruneCmd)

	auditListCmd.Flags().StringVar(&auditCommand, "command", "", "Nur dieses Kommando")
	auditListCmd.Flags().StringVar(&auditAuthor, "author", "", "Nur dieser Autor")
	auditListCmd.Flags().StringVar(&auditStatus, "status", "", "Nur dieser Status (ok, failed)")
	auditListCmd.Flags().DurationVar(&auditSince, "since", 0, "Nur Einträge der letzten Dauer (z.B. 24h)")
	auditListCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "Maximale Anzahl")
	auditListCmd.Flags().BoolVar(&auditJSON, "json", false, "Ausgabe als JSON")

	auditPruneCmd.Flags().DurationVar(&auditOlderThan, "older-than", 30*24*time.Hour, "Einträge älter als diese Dauer löschen")
}

func openAudit() (*audit.Store, error) {
	store, err := audit.Open(audit.Config{Path: appConfig.Audit.Path, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("Audit-Datenbank: %w", err)
	}
	return store, nil
}

func runAuditList(cmd *cobra.Command, args []string) error {
	store, err := openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	filter := audit.Filter{
		Command: auditCommand,
		Author:  auditAuthor,
		Status:  audit.Status(auditStatus),
		Limit:   auditLimit,
	}
	if auditSince > 0 {
		filter.Since = time.Now().Add(-auditSince)
	}

	records, err := store.Query(context.Background(), filter)
	if err != nil {
		return err
	}

	if auditJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("Keine Einträge")
		return nil
	}

	for _, rec := range records {
		icon := "[+]"
		if rec.Status != audit.StatusOK {
			icon = "[-]"
		}
		fmt.Printf("%s %s  %-12s %-12s %6dms  %s\n",
			icon, rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Command, rec.Author, rec.Duration.Milliseconds(), rec.Code)
	}
	return nil
}

func runAuditStats(cmd *cobra.Command, args []string) error {
	store, err := openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	var total int64
	for _, name := range names {
		fmt.Printf("  %-20s %d\n", name, stats[name])
		total += stats[name]
	}
	fmt.Printf("\nGesamt: %d\n", total)
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	store, err := openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Prune(context.Background(), auditOlderThan)
	if err != nil {
		return err
	}
	fmt.Printf("%d Einträge gelöscht\n", removed)
	return nil
}
