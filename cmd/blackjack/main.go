package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/lox/blackjack/internal/bot"
	"github.com/lox/blackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play blackjack against the dealer"`
	Simulate SimulateCmd      `cmd:"" help:"Play many rounds with an automated strategy and report statistics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Single-player blackjack against a scripted dealer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
			"strategies":  strings.Join(bot.Strategies(), ", "),
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
