package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/qrls/qrls-bot/internal/config"
	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/storage"
	"github.com/qrls/qrls-bot/internal/waivers"
)

var waiversCommand = &cli.Command{
	Name:  "waivers",
	Usage: "Inspect data/waivers.json",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "List active waiver records",
			Action: listWaivers,
		},
		{
			Name:      "clear",
			Usage:     "Delete a player's waiver record without touching the sheet",
			ArgsUsage: "<discord id>",
			Action:    clearWaiver,
		},
	},
}

var subsCommand = &cli.Command{
	Name:   "subs",
	Usage:  "List sub contracts waiting for their role removal",
	Action: listSubs,
}

var ledgerCommand = &cli.Command{
	Name:  "ledger",
	Usage: "Print the transaction ledger",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "team",
			Aliases: []string{"t"},
			Usage:   "Only print moves to or from this team",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Number of recent entries to print when no team is given",
			Value:   20,
		},
	},
	Action: printLedger,
}

func dataDir() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.DataDir, nil
}

// waiverService opens the waiver file and returns the service with its path
func waiverService() (*waivers.Service, string, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, "", err
	}
	store, err := storage.NewWaiverStorage(dir)
	if err != nil {
		return nil, "", err
	}
	return waivers.NewService(store), store.Path(), nil
}

func listWaivers(c *cli.Context) error {
	svc, path, err := waiverService()
	if err != nil {
		return err
	}
	records, err := svc.All()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No active waivers in %s.\n", path)
		return nil
	}
	sort.Slice(records, func(a, b int) bool { return records[a].ExpiresAt.Before(records[b].ExpiresAt) })

	for _, w := range records {
		fmt.Printf("%s from %s, expires %s (%s)\n",
			w.PlayerID, w.OriginalTeam, w.ExpiresAt.Local().Format("Mon Jan 2 3:04 PM"), humanize.Time(w.ExpiresAt))
		if w.HasClaim() {
			status := string(w.Claim.Status)
			if status == "" {
				status = "pending"
			}
			fmt.Printf("  claim: %s (rank %d) by %s, %s\n",
				w.Claim.TeamName, w.Claim.EffectiveRank(), w.Claim.ClaimedByID, status)
		}
	}
	return nil
}

func clearWaiver(c *cli.Context) error {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return cli.Exit("usage: rosterctl waivers clear <discord id>", 1)
	}
	svc, _, err := waiverService()
	if err != nil {
		return err
	}
	if _, err := svc.Get(id); err != nil {
		if errors.Is(err, waivers.ErrNoWaiver) {
			return cli.Exit(fmt.Sprintf("%s has no waiver record", id), 1)
		}
		return err
	}
	if err := svc.Resolve(id); err != nil {
		return err
	}
	fmt.Printf("Cleared the waiver record for %s. Fix the sheet and roles by hand if needed.\n", id)
	return nil
}

func listSubs(c *cli.Context) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	store, err := storage.NewSubStorage(dir)
	if err != nil {
		return err
	}
	contracts, err := store.All()
	if err != nil {
		return err
	}
	if len(contracts) == 0 {
		fmt.Println("No sub contracts.")
		return nil
	}
	sort.Slice(contracts, func(a, b int) bool { return contracts[a].ExpiresAt.Before(contracts[b].ExpiresAt) })
	for _, sc := range contracts {
		fmt.Printf("%s subbing for %s, role %s removed %s\n",
			sc.PlayerID, sc.TeamName, sc.RoleID, humanize.Time(sc.ExpiresAt))
	}
	return nil
}

func printLedger(c *cli.Context) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	ledger, err := storage.NewTransactionStorage(dir)
	if err != nil {
		return err
	}

	team := strings.TrimSpace(c.String("team"))
	if team == "" {
		recent, err := ledger.Recent(c.Int("limit"))
		if err != nil {
			return err
		}
		for _, tx := range recent {
			printTransaction(tx)
		}
		return nil
	}

	all, err := ledger.GetAllTransactions()
	if err != nil {
		return err
	}
	for name, txs := range storage.GroupTransactionsByTeam(all) {
		if !models.SameTeam(name, team) {
			continue
		}
		fmt.Printf("%s: %d move(s)\n", name, len(txs))
		for _, tx := range txs {
			printTransaction(tx)
		}
	}
	return nil
}

func printTransaction(tx models.Transaction) {
	fmt.Printf("%s  %-12s %s  %s → %s",
		tx.Timestamp.Local().Format("2006-01-02 15:04"), tx.Type, tx.PlayerID, orDash(tx.FromTeam), orDash(tx.ToTeam))
	if tx.ApprovedBy != "" {
		fmt.Printf("  (by %s)", tx.ApprovedBy)
	}
	fmt.Println()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
