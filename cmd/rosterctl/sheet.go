package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/qrls/qrls-bot/internal/config"
	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/sheets"
)

var sheetCommand = &cli.Command{
	Name:  "sheet",
	Usage: "Read the roster spreadsheet",
	Subcommands: []*cli.Command{
		{
			Name:   "tabs",
			Usage:  "List the spreadsheet's worksheets",
			Action: listTabs,
		},
		{
			Name:   "dump",
			Usage:  "Print the roster grouped by team",
			Action: dumpRoster,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "team",
					Aliases: []string{"t"},
					Usage:   "Only print this team",
				},
				&cli.StringFlag{
					Name:    "search",
					Aliases: []string{"s"},
					Usage:   "Only print members whose nickname contains this text",
				},
			},
		},
		{
			Name:      "nickname",
			Usage:     "Set a member's nickname cell",
			ArgsUsage: "<discord id> <nickname>",
			Action:    setNickname,
		},
	},
}

// loadSheetConfig loads the env config and checks the values needed to reach the sheet
func loadSheetConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.GoogleSheetID == "" || cfg.GoogleServiceAccountJSON == "" {
		return nil, cli.Exit("GOOGLE_SHEET_ID and GOOGLE_SERVICE_ACCOUNT_JSON must be set.", 1)
	}
	return cfg, nil
}

func openSheet(ctx context.Context) (*config.Config, *sheets.Client, error) {
	cfg, err := loadSheetConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := sheets.NewClient(ctx, cfg.GoogleSheetID, cfg.GoogleServiceAccountJSON)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func openRosterSheet(ctx context.Context) (*sheets.RosterSheet, error) {
	cfg, client, err := openSheet(ctx)
	if err != nil {
		return nil, err
	}
	return sheets.NewRosterSheet(
		client.Worksheet(cfg.GoogleWorksheet),
		client.Worksheet(cfg.WaiverOrderWorksheet),
	), nil
}

func listTabs(c *cli.Context) error {
	cfg, client, err := openSheet(c.Context)
	if err != nil {
		return err
	}
	tabs, err := client.Tabs(c.Context)
	if err != nil {
		return err
	}

	source := "file " + cfg.GoogleServiceAccountJSON
	if cfg.ServiceAccountIsInline() {
		source = "inline JSON"
	}
	fmt.Printf("Spreadsheet ID: %s\n", cfg.GoogleSheetID)
	fmt.Printf("Credentials: %s\n\n", source)

	for i, tab := range tabs {
		marker := ""
		switch tab.Title {
		case cfg.GoogleWorksheet:
			marker = " (roster)"
		case cfg.WaiverOrderWorksheet:
			marker = " (waiver order)"
		}
		fmt.Printf("%d. %s%s\n", i+1, tab.Title, marker)
		fmt.Printf("   GID: %d, %d rows x %d columns\n", tab.GID, tab.Rows, tab.Columns)
		if tab.Hidden {
			fmt.Println("   (Hidden)")
		}
	}
	return nil
}

func dumpRoster(c *cli.Context) error {
	sheet, err := openRosterSheet(c.Context)
	if err != nil {
		return err
	}
	r, err := sheet.Roster(c.Context)
	if err != nil {
		return err
	}
	if !r.HeaderValid() {
		fmt.Printf("⚠️ Unexpected header row %q (want %q)\n\n", r.Header, models.RosterHeaders)
	}

	if search := c.String("search"); search != "" {
		members := r.SearchByNickname(search)
		fmt.Printf("%d member(s) matching %q\n", len(members), search)
		for _, m := range members {
			printMember(m)
		}
		return nil
	}

	grouped := r.GroupByTeam()
	teams := make([]string, 0, len(grouped))
	for team := range grouped {
		if filter := c.String("team"); filter != "" && !models.SameTeam(team, filter) {
			continue
		}
		teams = append(teams, team)
	}
	sort.Strings(teams)

	for _, team := range teams {
		members := grouped[team]
		header := fmt.Sprintf("%s (%d", team, len(members))
		if models.IsRealTeam(team) {
			header += fmt.Sprintf("/%d, payroll $%s", models.MaxRosterSize, humanize.Comma(int64(r.Payroll(team))))
		}
		fmt.Println(header + ")")
		for _, m := range members {
			printMember(m)
		}
		fmt.Println()
	}
	return nil
}

func printMember(m models.Member) {
	captain := ""
	if m.Captain {
		captain = " [C]"
	}
	salary := strings.TrimSpace(m.Salary)
	if salary == "" {
		salary = "-"
	}
	fmt.Printf("  row %-4d %-20s %-12s %s%s\n", m.Row, m.DiscordID, salary, m.Nickname, captain)
}

func setNickname(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: rosterctl sheet nickname <discord id> <nickname>", 1)
	}
	id, nickname := c.Args().Get(0), strings.TrimSpace(c.Args().Get(1))

	sheet, err := openRosterSheet(c.Context)
	if err != nil {
		return err
	}
	r, err := sheet.Roster(c.Context)
	if err != nil {
		return err
	}
	m, ok := r.Find(id)
	if !ok {
		return cli.Exit(fmt.Sprintf("%s is not in the sheet", id), 1)
	}
	if err := sheet.SetNickname(c.Context, m.Row, nickname); err != nil {
		return err
	}
	fmt.Printf("Row %d: nickname %q → %q\n", m.Row, m.Nickname, nickname)
	return nil
}
