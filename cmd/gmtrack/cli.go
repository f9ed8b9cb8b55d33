package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/ops"
	"github.com/jthurman/gmtrack/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "gmtrack",
		Usage:   "Tabletop session tracker",
		Version: Version,
		Commands: []*cli.Command{
			campaignCmd(db, cfg),
			characterCmd(db, cfg),
			advanceCmd(db, cfg),
			logCmd(db, cfg),
			encounterCmd(db, cfg),
			backupCmd(db, cfg),
			settingsCmd(db, cfg),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// campaignCmd creates the campaign command group.
func campaignCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "campaign",
		Usage: "Manage campaigns",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a campaign (becomes the active one)",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-party", Usage: "Skip the starter party"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.CreateCampaign(c.Context, db, cfg, ops.CreateCampaignInput{
						Name:             c.Args().First(),
						SkipDefaultParty: c.Bool("no-party"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List all campaigns",
				Action: func(c *cli.Context) error {
					output, err := ops.ListCampaigns(c.Context, db, cfg)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "show",
				Usage:     "Show a campaign with characters, logs and encounters",
				ArgsUsage: "[id]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "log-limit", Value: ops.DefaultLogLimit, Usage: "Maximum log entries to include"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.GetCampaign(c.Context, db, cfg, ops.GetCampaignInput{
						CampaignID: c.Args().First(),
						LogLimit:   c.Int("log-limit"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "activate",
				Usage:     "Make a campaign the active one",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.ActivateCampaign(c.Context, db, cfg, ops.ActivateCampaignInput{
						CampaignID: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// characterCmd creates the character command group.
func characterCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "character",
		Usage: "Manage characters",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a character to a campaign",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "campaign", Aliases: []string{"c"}, Usage: "Campaign ID (defaults to the active campaign)"},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "PLAYER", Usage: "Character type: PLAYER|NPC"},
					&cli.StringFlag{Name: "race", Usage: "Race"},
					&cli.StringFlag{Name: "class", Usage: "Class"},
					&cli.IntFlag{Name: "level", Value: 1, Usage: "Level"},
					&cli.IntFlag{Name: "max-hp", Required: true, Usage: "Maximum hit points"},
					&cli.IntFlag{Name: "hp", Usage: "Current hit points (defaults to max)"},
					&cli.IntFlag{Name: "ac", Value: 10, Usage: "Armor class"},
					&cli.IntFlag{Name: "speed", Value: 30, Usage: "Speed"},
					&cli.IntFlag{Name: "initiative", Usage: "Static initiative bonus"},
				},
				Action: func(c *cli.Context) error {
					input := ops.CreateCharacterInput{
						CampaignID: c.String("campaign"),
						Name:       c.Args().First(),
						Type:       c.String("type"),
						Level:      c.Int("level"),
						HP:         c.Int("hp"),
						MaxHP:      c.Int("max-hp"),
						ArmorClass: c.Int("ac"),
						Speed:      c.Int("speed"),
						Initiative: c.Int("initiative"),
					}
					if race := c.String("race"); race != "" {
						input.Race = &race
					}
					if class := c.String("class"); class != "" {
						input.Class = &class
					}

					output, err := ops.CreateCharacter(c.Context, db, cfg, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "clone",
				Usage:     "Copy a character template into a campaign",
				ArgsUsage: "<source-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "campaign", Aliases: []string{"c"}, Usage: "Destination campaign ID (defaults to the active campaign)"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.CloneCharacter(c.Context, db, cfg, ops.CloneCharacterInput{
						SourceID:   c.Args().First(),
						CampaignID: c.String("campaign"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "hp",
				Usage:     "Apply a hit point change (positive heals, negative damages)",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					// A flag rather than a positional so negative deltas
					// are not mistaken for flags
					&cli.IntFlag{Name: "delta", Aliases: []string{"d"}, Required: true, Usage: "Hit point change"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.UpdateHP(c.Context, db, cfg, ops.UpdateHPInput{
						CharacterID: c.Args().First(),
						Delta:       c.Int("delta"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "initiative",
				Usage:     "Record an initiative roll",
				ArgsUsage: "<id> <roll>",
				Action: func(c *cli.Context) error {
					roll, err := parseIntArg(c, 1, "roll")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.SetInitiative(c.Context, db, cfg, ops.SetInitiativeInput{
						CharacterID: c.Args().First(),
						Roll:        roll,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a character",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if err := ops.DeleteCharacter(c.Context, db, cfg, ops.DeleteCharacterInput{
						CharacterID: id,
					}); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"deleted": id})
				},
			},
		},
	}
}

// advanceCmd creates the advance command.
func advanceCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "advance",
		Usage: "Move the turn to the next character in initiative order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "campaign", Aliases: []string{"c"}, Usage: "Campaign ID (defaults to the active campaign)"},
			&cli.StringFlag{Name: "expected", Aliases: []string{"e"}, Usage: "The character believed to hold the current turn"},
		},
		Action: func(c *cli.Context) error {
			campaignID := c.String("campaign")
			if campaignID == "" {
				active, err := ops.ActiveCampaign(c.Context, db, cfg)
				if err != nil {
					return outputError(err)
				}
				campaignID = active.ID
			}
			input := ops.AdvanceInput{
				CampaignID: campaignID,
			}
			if expected := c.String("expected"); expected != "" {
				input.ExpectedActiveID = &expected
			}

			output, err := ops.Advance(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// logCmd creates the log command group.
func logCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Session log",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Append an entry to the session log",
				ArgsUsage: "<content>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "campaign", Aliases: []string{"c"}, Usage: "Campaign ID (defaults to the active campaign)"},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "Story", Usage: "Entry type: Story|Combat|Roll"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.AppendLog(c.Context, db, cfg, ops.AppendLogInput{
						CampaignID: c.String("campaign"),
						Content:    c.Args().First(),
						Type:       c.String("type"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "recent",
				Usage: "Show the most recent log entries",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "campaign", Aliases: []string{"c"}, Usage: "Campaign ID (defaults to the active campaign)"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultLogLimit, Usage: "Maximum entries to return"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.RecentLogs(c.Context, db, cfg, ops.RecentLogsInput{
						CampaignID: c.String("campaign"),
						Limit:      c.Int("limit"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// encounterCmd creates the encounter command group.
func encounterCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "encounter",
		Usage: "Save and restore initiative snapshots",
		Subcommands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Save the current initiative state as an encounter",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "campaign", Aliases: []string{"c"}, Usage: "Campaign ID (defaults to the active campaign)"},
					&cli.StringFlag{Name: "status", Value: "PLANNED", Usage: "Encounter status"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.SaveEncounter(c.Context, db, cfg, ops.SaveEncounterInput{
						CampaignID: c.String("campaign"),
						Name:       c.Args().First(),
						Status:     c.String("status"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "load",
				Usage:     "Apply a saved encounter's initiative state",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.LoadEncounter(c.Context, db, cfg, ops.LoadEncounterInput{
						EncounterID: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List saved encounters",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "campaign", Aliases: []string{"c"}, Usage: "Campaign ID (defaults to the active campaign)"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListEncounters(c.Context, db, cfg, ops.ListEncountersInput{
						CampaignID: c.String("campaign"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a saved encounter",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if err := ops.DeleteEncounter(c.Context, db, cfg, ops.DeleteEncounterInput{
						EncounterID: id,
					}); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"deleted": id})
				},
			},
		},
	}
}

// backupCmd creates the backup command group.
func backupCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Snapshot and restore the whole store",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Write a snapshot of all campaigns to the backup directory",
				Action: func(c *cli.Context) error {
					output, err := ops.CreateBackup(c.Context, db, cfg)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List backups, newest first",
				Action: func(c *cli.Context) error {
					output, err := ops.ListBackups(cfg)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "restore",
				Usage:     "Replace the store with a snapshot's contents",
				ArgsUsage: "<filename>",
				Action: func(c *cli.Context) error {
					filename := c.Args().First()
					if err := ops.RestoreBackup(c.Context, db, cfg, filename); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"restored": filename})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a backup file",
				ArgsUsage: "<filename>",
				Action: func(c *cli.Context) error {
					filename := c.Args().First()
					if err := ops.DeleteBackup(cfg, filename); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"deleted": filename})
				},
			},
		},
	}
}

// settingsCmd creates the settings command group.
func settingsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Auto-backup settings",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show current settings",
				Action: func(c *cli.Context) error {
					output, err := ops.GetSettings(c.Context, db, cfg)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "set",
				Usage: "Change settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "auto-backup", Usage: "Back up once a day when a log entry is written"},
					&cli.IntFlag{Name: "count", Usage: "How many backups to keep"},
				},
				Action: func(c *cli.Context) error {
					input := ops.UpdateSettingsInput{}
					if c.IsSet("auto-backup") {
						v := c.Bool("auto-backup")
						input.AutoBackup = &v
					}
					if c.IsSet("count") {
						v := c.Int("count")
						input.BackupCount = &v
					}

					output, err := ops.UpdateSettings(c.Context, db, cfg, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7373, Usage: "Port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if gmErr, ok := err.(*errors.GMError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", gmErr.Code, gmErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseIntArg parses a positional integer argument.
func parseIntArg(c *cli.Context, index int, name string) (int, error) {
	s := c.Args().Get(index)
	if s == "" {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("%s is required", name))
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}
