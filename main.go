package main

import (
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v2"
)

const (
	PYC_SUFFIX = ".pyc"
	C_SUFFIX   = ".c"

	OUT_DIR_ENV = "PYC_OUT"
	RUNTIME_ENV = "PYC_RUNTIME"
	CC_ENV      = "CC"
	MARCH_ENV   = "PYC_MARCH"
	DEFAULT_OUT = "out"
)

func newApp() *cli.App {
	verbose := &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "print progress for every unit",
	}
	return &cli.App{
		Name:  "pyc",
		Usage: "compile pyc programs to C",
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "compile source files into <out>/<name>.c",
				ArgsUsage: "[files or directories...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "output directory",
						Value:   DEFAULT_OUT,
						EnvVars: []string{OUT_DIR_ENV},
					},
					&cli.StringFlag{
						Name:    "runtime",
						Usage:   "directory holding the runtime library headers and sources",
						EnvVars: []string{RUNTIME_ENV},
					},
					&cli.StringFlag{
						Name:    "cc",
						Usage:   "C compiler used to build executables (needs --runtime)",
						EnvVars: []string{CC_ENV},
					},
					&cli.StringFlag{
						Name:  "opt",
						Usage: "optimization flag passed to the C compiler",
						Value: DEFAULT_OPT,
					},
					&cli.StringFlag{
						Name:    "march",
						Usage:   "target architecture for the C compiler",
						EnvVars: []string{MARCH_ENV},
					},
					verbose,
				},
				Action: func(c *cli.Context) error {
					cfg := BuildConfig{
						OutDir: c.String("out"),
						Runtime: RuntimeOptions{
							SrcDir: c.String("runtime"),
							CC:     c.String("cc"),
							Opt:    c.String("opt"),
							March:  c.String("march"),
						},
						Verbose: c.Bool("verbose"),
					}
					files, err := collectSources(c.Args().Slice())
					if err != nil {
						return err
					}
					return exitStatus(Build(c.App.Writer, cfg, files))
				},
			},
			{
				Name:      "check",
				Usage:     "type check source files without writing output",
				ArgsUsage: "[files or directories...]",
				Action: func(c *cli.Context) error {
					files, err := collectSources(c.Args().Slice())
					if err != nil {
						return err
					}
					return exitStatus(Check(c.App.Writer, files), nil)
				},
			},
			{
				Name:      "emit",
				Usage:     "print the C text of one source file",
				ArgsUsage: "file",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("emit takes exactly one file, got %d", c.NArg())
					}
					return Emit(c.App.Writer, c.Args().First())
				},
			},
			{
				Name:  "repl",
				Usage: "compile statements interactively and print the generated C",
				Action: func(c *cli.Context) error {
					return runRepl(c.App.Writer, c.App.ErrWriter)
				},
			},
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					printVersion(c.App.Writer)
					return nil
				},
			},
		},
	}
}

// exitStatus turns a count of failed units into the command's exit error.
func exitStatus(failed int, err error) error {
	if err != nil {
		return err
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d unit(s) failed", failed), 1)
	}
	return nil
}

// Copy copies the contents of the file at srcpath to a regular file
// at dstpath. If the file named by dstpath already exists, it is
// truncated. The function does not copy the file mode, file
// permission bits, or file attributes.
func Copy(srcpath, dstpath string) (err error) {
	r, err := os.Open(srcpath)
	if err != nil {
		return err
	}
	defer r.Close() // ignore error: file was opened read-only.

	w, err := os.Create(dstpath)
	if err != nil {
		return err
	}

	defer func() {
		// Report the error, if any, from Close, but do so
		// only if there isn't already an outgoing error.
		if c := w.Close(); err == nil {
			err = c
		}
	}()

	_, err = io.Copy(w, r)
	return err
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
