// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// requestFlags are the flags shared by every command that assembles a playlist.
func requestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Genre constraint (normalized against the canonical vocabulary)",
		},
		&cli.StringFlag{
			Name:    "mood",
			Aliases: []string{"m"},
			Usage:   "Mood constraint (e.g. hype, chill, focus)",
		},
		&cli.StringFlag{
			Name:    "event",
			Aliases: []string{"e"},
			Usage:   "Event description used for search and naming (e.g. 'birthday party')",
		},
		&cli.StringSliceFlag{
			Name:    "keyword",
			Aliases: []string{"k"},
			Usage:   "Free-text keyword (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:    "artist",
			Aliases: []string{"a"},
			Usage:   "Seed artist name (repeatable)",
		},
		&cli.IntFlag{
			Name:    "duration",
			Aliases: []string{"d"},
			Usage:   "Target playlist length in minutes",
		},
		&cli.StringFlag{
			Name:    "policy",
			Aliases: []string{"p"},
			Usage:   "Content policy: clean, explicit, or any",
		},
		&cli.IntFlag{
			Name:  "birth-year",
			Usage: "Listener birth year, used for era weighting when artists give no signal",
		},
		&cli.StringFlag{
			Name:  "segments",
			Usage: "Segment spec 'name:minBPM-maxBPM:energy:minutes,...' for structured playlists",
		},
		&cli.BoolFlag{
			Name:  "workout",
			Usage: "Use the default warm-up/peak/cool-down segment structure",
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Playlist name (derived from event/mood/genre when omitted)",
		},
		&cli.BoolFlag{
			Name:  "public",
			Usage: "Create the playlist as public",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Assemble the track list without creating a playlist",
		},
	}
}

// outputFlags control rendering and persistence of build results.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "export",
			Usage: "Export format: json, csv, markdown, or txt",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Base path for exported files",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "no-save",
			Usage: "Skip recording the build in history",
		},
	}
}

// buildCommand assembles and creates a single playlist.
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "build",
		Aliases: []string{"b"},
		Usage:   "Build a playlist from mood, genre, era, and artist constraints",
		Flags:   append(requestFlags(), outputFlags()...),
		Action:  r.Build,
	}
}

// bulkCommand runs multiple builds from a request file.
func bulkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "bulk",
		Usage: "Build multiple playlists from a TOML request file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to a TOML file with one [[builds]] table per playlist",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent build workers",
				Value:   3,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Build starts per second",
				Value: 1.0,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Assemble track lists without creating playlists",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Bulk,
	}
}

// catalogCommand exposes direct catalog lookups for debugging and exploration.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Direct catalog lookups",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search the catalog for tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CatalogSearch,
			},
			{
				Name:  "artist",
				Usage: "Look up an artist and their top tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CatalogArtist,
			},
			{
				Name:  "recommend",
				Usage: "Fetch raw recommendations for genre/artist seeds",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Genre seed",
					},
					&cli.StringSliceFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "Seed artist name (repeatable, up to 4)",
					},
					&cli.StringFlag{
						Name:    "mood",
						Aliases: []string{"m"},
						Usage:   "Mood whose feature targets tune the request",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CatalogRecommend,
			},
			{
				Name:  "features",
				Usage: "Fetch audio features for comma-separated track IDs",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "ids",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CatalogFeatures,
			},
		},
	}
}

// vocabCommand lists the canonical vocabulary.
func vocabCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "vocab",
		Usage: "Inspect the canonical genre and mood vocabulary",
		Commands: []*cli.Command{
			{
				Name:  "genres",
				Usage: "List canonical genres",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.VocabGenres,
			},
			{
				Name:  "moods",
				Usage: "List moods and their audio feature targets",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.VocabMoods,
			},
		},
	}
}

// historyCommand manages the build history store.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "Inspect recorded playlist builds",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded builds",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Filter by genre",
					},
					&cli.StringFlag{
						Name:  "policy",
						Usage: "Filter by content policy",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of builds to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one build by ID or request ID",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a recorded build",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// setupCommand initializes the configuration file and build history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and run database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist building.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for previewing and building a playlist",
		Flags:   requestFlags(),
		Action:  r.TUI,
	}
}
