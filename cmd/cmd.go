// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv, markdown, json",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write to a file instead of stdout",
		},
	}
}

func leaderFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "as",
		Usage: "Handle of the leader publishing this; subscribers are notified when set",
	}
}

func editorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "as",
		Usage:    "Handle of the leader making the change",
		Required: true,
	}
}

// setupCommand handles setup operations for the database.
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

// seedCommand imports YAML data.
func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Import accounts, members, songs, notices and events from YAML",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "demo",
				Usage: "Load the built-in demo data (with duplicates and legacy assignments)",
			},
		},
		Action: r.Seed,
	}
}

// reconcileCommand runs reconciliation once or as a daemon.
func reconcileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "reconcile",
		Aliases: []string{"rec"},
		Usage:   "Collapse duplicates and migrate legacy identifiers",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a single pass over the current data",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the report as JSON",
					},
				},
				Action: r.ReconcileRun,
			},
			{
				Name:  "watch",
				Usage: "Keep reconciling as the data changes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show passes in an interactive view",
					},
					&cli.DurationFlag{
						Name:  "grace",
						Usage: "How long to wait for accounts before reporting an empty gate",
					},
				},
				Action: r.ReconcileWatch,
			},
		},
	}
}

// teamCommand handles membership.
func teamCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "team",
		Usage: "Manage team membership",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account and its roster entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "handle", Usage: "Unique handle, with or without @", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password", Value: "password123"},
					&cli.StringFlag{Name: "role", Usage: "Leader or Musician", Value: "Musician"},
					&cli.StringFlag{Name: "instrument", Usage: "Instrument"},
				},
				Action: r.TeamRegister,
			},
			{
				Name:  "remove",
				Usage: "Remove a member and their account (leaders only)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "member"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "as", Usage: "Handle of the leader removing the member", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Leader's password", Value: "password123"},
				},
				Action: r.TeamRemove,
			},
			{
				Name:  "confirm",
				Usage: "Confirm (or withdraw) participation",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "handle", Usage: "Your handle", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Your password", Value: "password123"},
					&cli.BoolFlag{Name: "withdraw", Usage: "Withdraw a previous confirmation"},
				},
				Action: r.TeamConfirm,
			},
			{
				Name:  "profile",
				Usage: "Update your profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "handle", Usage: "Your handle", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Your password", Value: "password123"},
					&cli.StringFlag{Name: "name", Usage: "New display name"},
					&cli.StringFlag{Name: "instrument", Usage: "New instrument"},
					&cli.StringFlag{Name: "new-password", Usage: "New password"},
					&cli.StringFlag{Name: "push-token", Usage: "Push subscription token"},
				},
				Action: r.TeamProfile,
			},
			{
				Name:  "leave",
				Usage: "Delete your account and roster entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "handle", Usage: "Your handle", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Your password", Value: "password123"},
				},
				Action: r.TeamLeave,
			},
			{
				Name:   "list",
				Usage:  "Show the roster",
				Flags:  formatFlags(),
				Action: r.TeamList,
			},
		},
	}
}

// songsCommand handles the repertoire.
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Manage the song list",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a song",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Song title", Required: true},
					&cli.StringFlag{Name: "artist", Usage: "Artist"},
					&cli.StringFlag{Name: "key", Usage: "Musical key"},
					&cli.StringFlag{Name: "category", Usage: "Rehearsal, Service or General", Value: "General"},
					&cli.StringSliceFlag{Name: "assign", Usage: "Handle or name of an assigned musician (repeatable)"},
					&cli.StringFlag{Name: "notes", Usage: "Notes"},
					&cli.StringFlag{Name: "url", Usage: "Reference URL"},
					leaderFlag(),
				},
				Action: r.SongsAdd,
			},
			{
				Name:  "update",
				Usage: "Edit a song by id or title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "song"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Song title"},
					&cli.StringFlag{Name: "artist", Usage: "Artist"},
					&cli.StringFlag{Name: "key", Usage: "Musical key"},
					&cli.StringFlag{Name: "category", Usage: "Rehearsal, Service or General"},
					&cli.StringSliceFlag{Name: "assign", Usage: "Replace the assigned musicians (repeatable)"},
					&cli.StringFlag{Name: "notes", Usage: "Notes"},
					&cli.StringFlag{Name: "url", Usage: "Reference URL"},
					editorFlag(),
				},
				Action: r.SongsUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a song by id or title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "song"},
				},
				Flags:  []cli.Flag{editorFlag()},
				Action: r.SongsDelete,
			},
			{
				Name:  "list",
				Usage: "Show songs",
				Flags: append(formatFlags(),
					&cli.StringFlag{Name: "for", Usage: "Only songs assigned to this handle or name"},
				),
				Action: r.SongsList,
			},
		},
	}
}

// noticesCommand handles the board.
func noticesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notices",
		Usage: "Manage the notice board",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Post a notice",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Notice title", Required: true},
					&cli.StringFlag{Name: "content", Usage: "Notice text"},
					&cli.StringFlag{Name: "category", Usage: "Category", Value: "General"},
					&cli.BoolFlag{Name: "pinned", Usage: "Pin to the top"},
					leaderFlag(),
				},
				Action: r.NoticesAdd,
			},
			{
				Name:   "list",
				Usage:  "Show the notice board",
				Flags:  formatFlags(),
				Action: r.NoticesList,
			},
			{
				Name:  "delete",
				Usage: "Delete a notice by id or title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "notice"},
				},
				Flags:  []cli.Flag{editorFlag()},
				Action: r.NoticesDelete,
			},
		},
	}
}

// eventsCommand handles the calendar.
func eventsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Manage the calendar",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Schedule an event",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Event title", Required: true},
					&cli.StringFlag{Name: "date", Usage: "Date (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "time", Usage: "Time (HH:MM)"},
					&cli.StringFlag{Name: "kind", Usage: "Rehearsal, Service, Meeting or Other", Value: "Other"},
					&cli.StringFlag{Name: "location", Usage: "Location"},
					leaderFlag(),
				},
				Action: r.EventsAdd,
			},
			{
				Name:   "list",
				Usage:  "Show the calendar",
				Flags:  formatFlags(),
				Action: r.EventsList,
			},
			{
				Name:  "delete",
				Usage: "Delete an event by id or title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "event"},
				},
				Flags:  []cli.Flag{editorFlag()},
				Action: r.EventsDelete,
			},
		},
	}
}

// notifyCommand handles push notifications.
func notifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Push notifications",
		Commands: []*cli.Command{
			{
				Name:  "send",
				Usage: "Send a notification through the configured gateway",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Heading", Required: true},
					&cli.StringFlag{Name: "body", Usage: "Message", Required: true},
					&cli.StringFlag{Name: "url", Usage: "Link opened from the notification", Value: "/"},
					&cli.StringSliceFlag{Name: "to", Usage: "External user id (repeatable); everyone when omitted"},
				},
				Action: r.NotifySend,
			},
			{
				Name:  "remind",
				Usage: "Remind members to confirm and tell them their assigned songs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Usage: "Concurrent deliveries", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Deliveries per second", Value: 5},
					&cli.BoolFlag{Name: "dry-run", Usage: "List the reminders without sending"},
				},
				Action: r.NotifyRemind,
			},
			{
				Name:   "consume",
				Usage:  "Deliver queued notifications through OneSignal (or the log gateway)",
				Action: r.NotifyConsume,
			},
			{
				Name:  "list",
				Usage: "Show the notification feed, newest first",
				Flags: append(formatFlags(),
					&cli.BoolFlag{Name: "unread", Usage: "Only unread notifications"},
				),
				Action: r.NotifyList,
			},
			{
				Name:   "read",
				Usage:  "Mark every notification as read",
				Action: r.NotifyRead,
			},
		},
	}
}

// serveCommand runs the HTTP API next to the reconciliation driver.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API and keep reconciling",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port (overrides config)"},
		},
		Action: r.Serve,
	}
}
