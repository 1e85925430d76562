// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// historyCommand handles history review operations
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "History record operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List history records",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Records per page",
						Value: 20,
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Filter by title text",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (success, failed, pending_action, ...)",
					},
					&cli.StringFlag{
						Name:  "job",
						Usage: "Filter by parent job id",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (table, json, csv, markdown)",
						Value: "table",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "delete",
				Usage: "Delete history records by id",
				Arguments: []cli.Argument{
					&cli.StringArgs{
						Name: "ids",
						Min:  0,
						Max:  -1,
					},
				},
				Action: r.HistoryDelete,
			},
			{
				Name:  "clear",
				Usage: "Delete all history records",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: r.HistoryClear,
			},
			{
				Name:  "export",
				Usage: "Export history to a file and record it in the local archive",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Filter by title text",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status",
					},
					&cli.BoolFlag{
						Name:  "no-archive",
						Usage: "Skip recording the export in the local archive",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:   "exports",
				Usage:  "List past exports recorded in the local archive",
				Action: r.HistoryExports,
			},
		},
	}
}

// tmdbCommand handles metadata search operations
func tmdbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tmdb",
		Usage: "Metadata search via the server's TMDB proxy",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search for series candidates",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "fuzzy",
						Usage: "Let the server retry with a simplified term",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TMDBSearch,
			},
			{
				Name:  "series",
				Usage: "Show series detail with seasons and episodes",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TMDBSeries,
			},
		},
	}
}
