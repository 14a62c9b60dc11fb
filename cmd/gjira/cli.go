package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"gjira/internal/errors"
	"gjira/internal/ops"
	"gjira/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env) *cli.App {
	app := &cli.App{
		Name:    "gjira",
		Usage:   "Gerrit to Jira Cloud bridge",
		Version: Version,
		Commands: []*cli.Command{
			contextCmd(env),
			issueCmd(env),
			commentCmd(env),
			linkCmd(env),
			configCmd(env),
			historyCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// urlKeyFlags are the flags shared by every command that reads a change page.
func urlKeyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "Override the extracted Jira issue key"},
	}
}

// changeURLArg extracts the change URL positional argument.
func changeURLArg(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", errors.NewInvalidRequest("change URL is required")
	}
	return c.Args().First(), nil
}

// contextCmd creates the context command.
func contextCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "context",
		Usage:     "Extract the context of a Gerrit change page",
		ArgsUsage: "<url>",
		Flags:     urlKeyFlags(),
		Action: func(c *cli.Context) error {
			url, err := changeURLArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Context(c.Context, env, ops.ContextInput{
				URL: url,
				Key: c.String("key"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// issueCmd creates the issue command.
func issueCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "issue",
		Usage:     "Look up a Jira issue's summary, status, and assignee",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("issue key is required"))
			}

			output, err := ops.Issue(c.Context, env, ops.IssueInput{
				Key: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// commentCmd creates the comment command.
func commentCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "comment",
		Usage:     "Post a rendered change summary as a Jira comment",
		ArgsUsage: "<url>",
		Flags: append(urlKeyFlags(),
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Override the comment template"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Render the comment without posting it"},
		),
		Action: func(c *cli.Context) error {
			url, err := changeURLArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Comment(c.Context, env, ops.CommentInput{
				URL:      url,
				Key:      c.String("key"),
				Template: c.String("template"),
				DryRun:   c.Bool("dry-run"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// linkCmd creates the link command.
func linkCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "link",
		Usage:     "Attach a Gerrit change to a Jira issue as a remote link",
		ArgsUsage: "<url>",
		Flags:     urlKeyFlags(),
		Action: func(c *cli.Context) error {
			url, err := changeURLArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Link(c.Context, env, ops.LinkInput{
				URL: url,
				Key: c.String("key"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// configCmd creates the config command with set/unset/list subcommands.
func configCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage bridge settings (email, api_token, comment_template)",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store a setting",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("usage: gjira config set <key> <value>"))
					}

					output, err := ops.SettingsSet(env, ops.SettingsSetInput{
						Key:   c.Args().Get(0),
						Value: c.Args().Get(1),
					})
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
			{
				Name:      "unset",
				Usage:     "Remove a setting",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("usage: gjira config unset <key>"))
					}

					output, err := ops.SettingsUnset(env, ops.SettingsUnsetInput{
						Key: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "Show stored settings (the API token is masked)",
				Action: func(c *cli.Context) error {
					output, err := ops.SettingsList(env)
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
		},
	}
}

// historyCmd creates the history command.
func historyCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent bridge runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: ops.DefaultHistoryLimit, Usage: "Maximum number of runs"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(env, ops.HistoryInput{
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command for the local preview UI.
func serveCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local comment preview UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (defaults to web_addr from config)"},
		},
		Action: func(c *cli.Context) error {
			addr := c.String("addr")
			if addr == "" {
				addr = env.Config.WebAddr
			}

			srv := web.NewServer(env, Version, addr)
			return web.Run(srv)
		},
	}
}

// outputJSON writes indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if bErr, ok := err.(*errors.BridgeError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", bErr.Code, bErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
