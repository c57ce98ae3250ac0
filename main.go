package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/coreos/pkg/capnslog"
	"github.com/coreos/pkg/multierror"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/van/config"
	"github.com/pontaoski/van/driver"
	"github.com/pontaoski/van/lexer"
	"github.com/pontaoski/van/reader"
	"github.com/pontaoski/van/semantics"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/van", "main")

// report prints err to stderr, quoting source for diagnostics.
func report(err error) {
	if errs, ok := tracerr.Unwrap(err).(multierror.Error); ok {
		for _, e := range errs {
			report(e)
		}
		return
	}
	if f, ok := driver.AsFailure(err); ok {
		fmt.Fprint(os.Stderr, f.Render())
		return
	}
	tracerr.PrintSourceColor(err)
}

func setupLogging(c *cli.Context) error {
	capnslog.SetFormatter(capnslog.NewStringFormatter(os.Stderr))

	level, err := capnslog.ParseLevel(strings.ToUpper(c.String("log-level")))
	if err != nil {
		return err
	}
	capnslog.SetGlobalLogLevel(level)
	return nil
}

// silenceWarnings drops checker warnings below the error level.
func silenceWarnings() {
	repo := capnslog.MustRepoLogger("github.com/pontaoski/van")
	repo.SetLogLevel(map[string]capnslog.LogLevel{"semantics": capnslog.ERROR})
}

// moduleSources resolves what `check` should look at: the files given, or
// every source the nearest manifest names.
func moduleSources(c *cli.Context) (*config.Module, []string, error) {
	mod, path, err := config.FindAndLoad(".")
	if err != nil {
		return nil, nil, err
	}

	if c.Args().Present() {
		return mod, c.Args().Slice(), nil
	}

	root := "."
	if path != "" {
		root = config.Root(path)
	}
	files, err := reader.Scan(root, mod.Sources)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, tracerr.Errorf("no sources matching %s in %s", strings.Join(mod.Sources, ", "), root)
	}
	return mod, files, nil
}

func checkFiles(files []string, shared, dumpTypes bool) error {
	sources, err := reader.ReadAll(files)
	if err != nil {
		return err
	}

	var errs multierror.Error
	v := semantics.New()
	for _, src := range sources {
		if !shared {
			v = semantics.New()
		}
		res, err := driver.CheckWith(v, src)
		if err != nil {
			errs = append(errs, err)
			if shared {
				break
			}
			continue
		}
		plog.Infof("%s: ok", src.Filename)
		if dumpTypes {
			fmt.Printf("%s:\n%s", src.Filename, res.Visitor.TypeTab().Dump(0))
		}
	}

	return errs.AsError()
}

// watch re-runs check whenever one of files changes.
func watch(files []string, check func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer w.Close()

	dirs := map[string]bool{}
	watched := map[string]bool{}
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return tracerr.Wrap(err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return tracerr.Wrap(err)
		}
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[ev.Name] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			plog.Infof("%s changed, checking", ev.Name)
			if err := check(); err != nil {
				report(err)
			} else {
				fmt.Fprintln(os.Stderr, "ok")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			plog.Errorf("watch: %s", err)
		}
	}
}

func readSingle(c *cli.Context) (*reader.Source, error) {
	file := c.Args().First()
	if file == "" {
		return nil, tracerr.Errorf("no file provided")
	}
	return reader.ReadFile(file)
}

func main() {
	app := &cli.App{
		Name:  "van",
		Usage: "van language front-end",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warning",
				Usage: "one of critical, error, warning, notice, info, debug, trace",
			},
		},
		Before: setupLogging,
		ExitErrHandler: func(context *cli.Context, err error) {
			if err == nil {
				return
			}
			report(err)
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "init a directory",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return tracerr.Errorf("no module name provided")
					}
					path, err := config.Write(".", &config.Module{Package: name})
					if err != nil {
						return err
					}
					plog.Infof("wrote %s", path)
					return nil
				},
			},
			{
				Name:      "lex",
				Usage:     "dump the tokens of a file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "print one token per line instead of a structure dump",
					},
				},
				Action: func(c *cli.Context) error {
					src, err := readSingle(c)
					if err != nil {
						return err
					}
					tokens, err := driver.Lex(src)
					if err != nil {
						return err
					}
					if c.Bool("plain") {
						fmt.Print(lexer.Describe(tokens))
						return nil
					}
					repr.Println(tokens)
					return nil
				},
			},
			{
				Name:      "parse",
				Usage:     "dump the syntax tree of a file",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					src, err := readSingle(c)
					if err != nil {
						return err
					}
					res, err := driver.Parse(src)
					if err != nil {
						return err
					}
					repr.Println(res.Program)
					return nil
				},
			},
			{
				Name:      "check",
				Usage:     "type-check files, or every source of the module",
				ArgsUsage: "[files...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "check again whenever a source changes",
					},
					&cli.BoolFlag{
						Name:  "dump-types",
						Usage: "print the global type table of each file",
					},
					&cli.BoolFlag{
						Name:  "shared",
						Usage: "check files in order in one global scope",
					},
				},
				Action: func(c *cli.Context) error {
					mod, files, err := moduleSources(c)
					if err != nil {
						return err
					}
					if !mod.ShowWarnings() {
						silenceWarnings()
					}

					check := func() error {
						return checkFiles(files, c.Bool("shared"), c.Bool("dump-types"))
					}
					if c.Bool("watch") {
						if err := check(); err != nil {
							report(err)
						}
						return watch(files, check)
					}
					return check()
				},
			},
			{
				Name:      "typeinfo",
				Usage:     "dump the types of a file's globals, or read a dump back",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "write the type info as JSON to this path",
					},
				},
				Action: func(c *cli.Context) error {
					file := c.Args().First()
					if strings.HasSuffix(file, ".json") {
						data, err := getTypeInfoFromFile(file)
						if err != nil {
							return err
						}
						repr.Println(data)
						return nil
					}

					src, err := readSingle(c)
					if err != nil {
						return err
					}
					res, err := driver.Check(src)
					if err != nil {
						return err
					}

					mod, _, err := config.FindAndLoad(filepath.Dir(file))
					if err != nil {
						return err
					}
					data := collectTypeInfo(mod.Package, res.Visitor)

					if out := c.String("output"); out != "" {
						return writeTypeInfo(out, data)
					}
					return encodeTypeInfo(os.Stdout, data)
				},
			},
		},
	}
	app.Run(os.Args)
}
