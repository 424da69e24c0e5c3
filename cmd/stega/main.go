package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strconv"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/bodgit/stega"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newStega(c *cli.Context) (*stega.Stega, func() error, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	if c.String("journal") == "" {
		return stega.New(nil, logger), func() error { return nil }, nil
	}

	j, err := stega.NewJournal(c.String("journal"))
	if err != nil {
		return nil, nil, err
	}

	return stega.New(j, logger), j.Close, nil
}

// Show the help for the current command and fail with an empty message so
// only the help is printed
func usageError(c *cli.Context) error {
	_ = cli.ShowCommandHelp(c, c.Command.FullName())
	return cli.NewExitError("", 1)
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "stega"
	app.Usage = "Hide text in BMP images"
	app.Version = "1.0.0"

	app.CommandNotFound = func(c *cli.Context, command string) {
		_ = cli.ShowAppHelp(c)
		cli.OsExiter(1)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "journal",
			EnvVars: []string{"STEGA_JOURNAL"},
			Usage:   "path to journal database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "hide",
			Usage:       "Hide the contents of a text file in a BMP file",
			Description: "",
			ArgsUsage:   "TEXT BMP",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					EnvVars: []string{"STEGA_OUTPUT"},
					Value:   stega.DefaultOutput,
					Usage:   "write the resulting BMP to `FILE`",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					return usageError(c)
				}

				s, closer, err := newStega(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				if err := s.Hide(c.Args().Get(0), c.Args().Get(1), c.String("output")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "show",
			Usage:       "Show the text hidden in a BMP file",
			Description: "",
			ArgsUsage:   "BMP",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return usageError(c)
				}

				s, closer, err := newStega(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				if err := s.Show(c.Args().First(), c.App.Writer); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "capacity",
			Usage:       "Show how much text a BMP file can hold",
			Description: "",
			ArgsUsage:   "BMP",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return usageError(c)
				}

				s, closer, err := newStega(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				n, err := s.Capacity(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				fmt.Fprintf(c.App.Writer, "%d (%s)\n", n, bytefmt.ByteSize(uint64(n)))

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan a directory for BMP files with hidden text",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return usageError(c)
				}

				s, closer, err := newStega(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				findings, err := s.Scan(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, f := range findings {
					fmt.Fprintf(c.App.Writer, "%s: %q\n", f.Path, f.Message)
				}

				return nil
			},
		},
		{
			Name:        "history",
			Usage:       "List the BMP files recorded in the journal",
			Description: "",
			Action: func(c *cli.Context) error {
				file := c.String("journal")
				if file == "" {
					return cli.NewExitError(errors.New("no journal configured"), 1)
				}

				// Opening a journal creates it, don't do that for a mistyped path
				if _, err := os.Stat(file); err != nil {
					return cli.NewExitError(fmt.Errorf("error loading %s: %w", file, err), 1)
				}

				j, err := stega.NewJournal(file)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer j.Close()

				entries, err := j.Entries()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				table := tablewriter.NewWriter(c.App.Writer)
				table.SetHeader([]string{"Created", "Path", "Payload", "Capacity", "SHA1"})
				for _, e := range entries {
					table.Append([]string{
						e.Created.Format(time.RFC3339),
						e.Path,
						strconv.Itoa(e.Payload),
						bytefmt.ByteSize(uint64(e.Capacity)),
						e.SHA1,
					})
				}
				table.Render()

				return nil
			},
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
