// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database and configuration setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database, run migrations, and create the session",
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

// notesCommand handles session note operations.
func notesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "notes",
		Aliases: []string{"log"},
		Usage:   "Session note operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Save a note for the current session (replaces the session's previous note)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "body",
					},
				},
				Action: r.NotesAdd,
			},
			{
				Name:  "list",
				Usage: "Show recent notes, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of notes to return",
						Value: 10,
					},
				},
				Action: r.NotesList,
			},
			{
				Name:  "export",
				Usage: "Export notes to CSV, Markdown, or plain text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, txt)",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to stdout)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of notes to export",
						Value: 100,
					},
				},
				Action: r.NotesExport,
			},
			{
				Name:  "session",
				Usage: "Show the current session id",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Rotate to a fresh session id",
					},
				},
				Action: r.NotesSession,
			},
		},
	}
}

// projectsCommand handles remote project operations.
func projectsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "projects",
		Aliases: []string{"proj"},
		Usage:   "Remote project operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List projects from the remote source (cached listing on failure)",
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
				Action: r.ProjectsList,
			},
			{
				Name:  "preview",
				Usage: "Download, decode, and validate a project, then render its preview",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "serve",
						Usage: "Start the preview server after rendering and block",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the preview in a browser (implies --serve)",
					},
				},
				Action: r.ProjectsPreview,
			},
			{
				Name:   "serve",
				Usage:  "Run the pipeline for every listed project and serve the previews",
				Action: r.ProjectsServe,
			},
		},
	}
}

// dashCommand returns the top-level dashboard command.
func dashCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dash",
		Aliases: []string{"ui", "tui"},
		Usage:   "Launch the interactive dashboard",
		Action:  r.Dash,
	}
}
