// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// actorFlags are shared by every mutating task command.
func actorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "actor",
			Usage: "Acting user ID (defaults to [actor] config)",
		},
		&cli.StringFlag{
			Name:  "role",
			Usage: "Acting user role: admin, lead, member, viewer",
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// taskCommand handles task lifecycle and media operations
func taskCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "Task lifecycle and media operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a task from its originating photo",
				Flags: append(actorFlags(),
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Task title",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "sets",
						Usage: "Number of required media sets",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "video",
						Usage: "Require a video per set",
					},
					&cli.StringFlag{
						Name:     "photo",
						Usage:    "File ID of the originating photo",
						Required: true,
					},
				),
				Action: r.TaskCreate,
			},
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status",
					},
					&cli.BoolFlag{
						Name:  "archived",
						Usage: "Show archived tasks only",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TaskList,
			},
			{
				Name:  "show",
				Usage: "Show a task with its media sets",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(actorFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.TaskShow,
			},
			{
				Name:  "transition",
				Usage: "Move a task to another status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(actorFlags(),
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Target status",
						Required: true,
					},
				),
				Action: r.TaskTransition,
			},
			{
				Name:  "archive",
				Usage: "Archive a submitted or completed task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  actorFlags(),
				Action: r.TaskArchive,
			},
			{
				Name:  "restore",
				Usage: "Restore an archived task to its prior status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  actorFlags(),
				Action: r.TaskRestore,
			},
			{
				Name:  "add-photo",
				Usage: "Add a photo to a media set",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(actorFlags(),
					&cli.IntFlag{
						Name:  "set",
						Usage: "Set index (zero-based)",
					},
					&cli.StringFlag{
						Name:     "file",
						Usage:    "File ID of the photo",
						Required: true,
					},
				),
				Action: r.TaskAddPhoto,
			},
			{
				Name:  "add-video",
				Usage: "Attach a video to a media set",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(actorFlags(),
					&cli.IntFlag{
						Name:  "set",
						Usage: "Set index (zero-based)",
					},
					&cli.StringFlag{
						Name:     "file",
						Usage:    "File ID of the video",
						Required: true,
					},
				),
				Action: r.TaskAddVideo,
			},
			{
				Name:  "delete-media",
				Usage: "Delete media items from a task (atomic batch)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(actorFlags(),
					&cli.StringSliceFlag{
						Name:     "file",
						Usage:    "File ID to delete (repeatable)",
						Required: true,
					},
				),
				Action: r.TaskDeleteMedia,
			},
			{
				Name:  "delete",
				Usage: "Permanently delete a task and purge its media (admin only)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(actorFlags(),
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip confirmation",
					},
				),
				Action: r.TaskDelete,
			},
			{
				Name:  "lock",
				Usage: "Reserve exclusive edit rights on a task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  actorFlags(),
				Action: r.TaskLock,
			},
			{
				Name:  "unlock",
				Usage: "Release a task lock",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  actorFlags(),
				Action: r.TaskUnlock,
			},
			{
				Name:  "export",
				Usage: "Export a task's media manifest",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: json, csv, markdown, text",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.TaskExport,
			},
		},
	}
}

// serveCommand starts the HTTP API server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the task API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (defaults to [server] config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (defaults to [server] config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive task tracking.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for task tracking",
		Flags:   actorFlags(),
		Action:  r.TUI,
	}
}
