// Command definitions. Flag values can also come from environment
// variables; CLI flags win over the environment, which wins over the
// config file.
package main

import "github.com/urfave/cli/v3"

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "Playlist source file (Album|Artist|URL per line)",
			Sources:  cli.EnvVars("PLAYLIST_FILE"),
			Required: true,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML configuration file",
			Sources: cli.EnvVars("CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for downloaded albums",
			Sources: cli.EnvVars("OUTPUT_DIR"),
		},
		&cli.StringFlag{
			Name:    "quality",
			Aliases: []string{"q"},
			Usage:   `MP3 quality: bitrate such as "320k", or "0" for best VBR`,
			Sources: cli.EnvVars("MP3_QUALITY"),
		},
		&cli.BoolFlag{
			Name:    "rate-limit",
			Aliases: []string{"r"},
			Usage:   "Pace item downloads to stay friendly",
			Sources: cli.EnvVars("RATE_LIMIT"),
		},
		&cli.IntFlag{
			Name:    "retries",
			Usage:   "Retry attempts per item",
			Sources: cli.EnvVars("MAX_RETRIES"),
		},
		&cli.StringFlag{
			Name:    "archive-file",
			Usage:   "Download archive file (one identifier per line)",
			Sources: cli.EnvVars("ARCHIVE_FILE"),
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Log file path (empty for console only)",
			Sources: cli.EnvVars("LOG_FILE"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
			Sources: cli.EnvVars("VERBOSE"),
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Download all configured playlists once and exit",
		Flags:  commonFlags(),
		Action: runAction,
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Re-check playlists on an interval until terminated",
		Flags: append(commonFlags(),
			&cli.IntFlag{
				Name:    "interval",
				Usage:   "Seconds between passes",
				Sources: cli.EnvVars("WATCHDOG_INTERVAL"),
			},
		),
		Action: watchAction,
	}
}

func maintainCommand() *cli.Command {
	return &cli.Command{
		Name:      "maintain",
		Usage:     "Maintain tags of an already-downloaded album directory",
		ArgsUsage: "ALBUM_DIR",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "dir"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "clean-empty",
				Usage: "Remove empty ID3 text frames",
			},
			&cli.BoolFlag{
				Name:  "set-album-artist",
				Usage: "Set album and album artist from the folder name",
			},
			&cli.BoolFlag{
				Name:  "replaygain",
				Usage: "Compute loudness metadata with rsgain or mp3gain",
			},
		},
		Action: maintainAction,
	}
}
