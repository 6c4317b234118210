// Command rosterctl inspects the roster sheet and the bot's local data files
// without starting the Discord session.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var app = &cli.App{
	Name:  "rosterctl",
	Usage: "Inspect and repair QRLS roster data",

	Commands: []*cli.Command{
		sheetCommand,
		waiversCommand,
		subsCommand,
		ledgerCommand,
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
