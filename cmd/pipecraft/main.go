package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/pipecraft/internal/catalog"
	"github.com/jorge-barreto/pipecraft/internal/config"
	"github.com/jorge-barreto/pipecraft/internal/ctxlog"
	"github.com/jorge-barreto/pipecraft/internal/docs"
	"github.com/jorge-barreto/pipecraft/internal/doctor"
	"github.com/jorge-barreto/pipecraft/internal/editor"
	"github.com/jorge-barreto/pipecraft/internal/export"
	"github.com/jorge-barreto/pipecraft/internal/generate"
	"github.com/jorge-barreto/pipecraft/internal/pipeline"
	"github.com/jorge-barreto/pipecraft/internal/scaffold"
	"github.com/jorge-barreto/pipecraft/internal/server"
	"github.com/jorge-barreto/pipecraft/internal/simulate"
	"github.com/jorge-barreto/pipecraft/internal/ux"
)

func main() {
	app := &cli.Command{
		Name:        "pipecraft",
		Usage:       "Design CI/CD pipelines and generate their config files",
		Description: "Run 'pipecraft docs' for documentation on the pipeline file format, generators, and templates.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("PIPECRAFT_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format (text, json)",
				Sources: cli.EnvVars("PIPECRAFT_LOG_FORMAT"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger := ctxlog.New(cmd.String("log-level"), cmd.String("log-format"), os.Stderr)
			return ctxlog.WithLogger(ctx, logger), nil
		},
		Commands: []*cli.Command{
			initCmd(),
			generateCmd(),
			showCmd(),
			templatesCmd(),
			newCmd(),
			dockerfileCmd(),
			simulateCmd(),
			doctorCmd(),
			serveCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Pipeline file (default: pipecraft.yaml or pipecraft.hcl, searched upward)",
		Sources: cli.EnvVars("PIPECRAFT_FILE"),
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a starter pipecraft.yaml in the current directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir)
		},
	}
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate CI config and Dockerfile from the pipeline file",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.StringFlag{Name: "platform", Usage: "Override the file's platform (github-actions, jenkins, gitlab-ci, azure-devops)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "Output directory"},
			&cli.BoolFlag{Name: "force", Usage: "Overwrite existing files"},
			&cli.BoolFlag{Name: "stdout", Usage: "Print files instead of writing them"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := ctxlog.FromContext(ctx)
			p, path, err := loadPipeline(cmd.String("file"))
			if err != nil {
				return err
			}
			if v := cmd.String("platform"); v != "" {
				platform := pipeline.Platform(v)
				if !platform.Valid() {
					return fmt.Errorf("unknown platform %q (must be github-actions, jenkins, gitlab-ci, or azure-devops)", v)
				}
				p.Platform = platform
			}
			logger.Debug("generating", "file", path, "platform", p.Platform, "stages", len(p.Stages))

			files, err := generate.Files(p)
			if err != nil {
				return fmt.Errorf("generating %s: %w", path, err)
			}

			if cmd.Bool("stdout") {
				for _, name := range generate.FileNames(files) {
					fmt.Printf("%s# ── %s ──%s\n%s", ux.Dim, name, ux.Reset, files[name])
					if content := files[name]; len(content) > 0 && content[len(content)-1] != '\n' {
						fmt.Println()
					}
					fmt.Println()
				}
				return nil
			}

			written, err := export.WriteFiles(cmd.String("out"), files, cmd.Bool("force"))
			if err != nil {
				return err
			}
			for _, w := range written {
				fmt.Printf("  %s✓%s %s\n", ux.Green, ux.Reset, w)
			}
			logger.Info("generated files", "count", len(written), "dir", cmd.String("out"))
			return nil
		},
	}
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the pipeline and the order its jobs will be generated in",
		Flags: []cli.Flag{fileFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, _, err := loadPipeline(cmd.String("file"))
			if err != nil {
				return err
			}
			ux.RenderPipeline(os.Stdout, p)
			return nil
		},
	}
}

func templatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "templates",
		Usage:     "List built-in templates, or show one",
		ArgsUsage: "[id]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				fmt.Print("\nAvailable templates:\n\n")
				ux.RenderTemplates(os.Stdout, catalog.All())
				fmt.Println("\nRun 'pipecraft templates <id>' for details or 'pipecraft new --template <id>' to use one.")
				return nil
			}
			t, err := catalog.Get(id)
			if err != nil {
				return err
			}
			ux.RenderTemplate(os.Stdout, t)
			return nil
		},
	}
}

func newCmd() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Write a pipeline file based on a template",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Template id (see 'pipecraft templates')", Required: true},
			&cli.StringFlag{Name: "name", Usage: "Pipeline name (default: the template's name)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: config.DefaultYAMLFile, Usage: "Output file"},
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			t, err := catalog.Get(cmd.String("template"))
			if err != nil {
				return err
			}
			p := catalog.Clone(t, uuid.NewString(), time.Now())
			if name := cmd.String("name"); name != "" {
				p.Name = name
			}
			out := cmd.String("out")
			if err := scaffold.Write(out, config.FromPipeline(p), cmd.Bool("force")); err != nil {
				return err
			}
			fmt.Printf("\n%s%s✓ Wrote %s%s from template %s\n\n", ux.Bold, ux.Green, out, ux.Reset, t.ID)
			return nil
		},
	}
}

func dockerfileCmd() *cli.Command {
	return &cli.Command{
		Name:      "dockerfile",
		Usage:     "Print the Dockerfile for a language",
		ArgsUsage: "<language>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lang := cmd.Args().First()
			if lang == "" {
				ux.RenderLanguages(os.Stderr, generate.DockerfileLanguages())
				return fmt.Errorf("language argument is required")
			}
			fmt.Println(generate.Dockerfile(pipeline.Language(lang)))
			return nil
		},
	}
}

func simulateCmd() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Play a mock six-step pipeline run",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "fast", Usage: "Skip the delays between log lines"},
			&cli.IntFlag{Name: "seed", Usage: "Seed for repeatable outcomes"},
			&cli.StringFlag{Name: "report", Usage: "Write the finished run as JSON to this path"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var dice simulate.Dice
			if cmd.IsSet("seed") {
				dice = simulate.Seeded(uint64(cmd.Int("seed")))
			}
			sim := simulate.New(dice, ux.Printer{})
			if cmd.Bool("fast") {
				sim.StartDelay, sim.LineDelay = 0, 0
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			run, runErr := sim.Run(ctx)
			switch run.Status {
			case simulate.StatusCompleted:
				ux.Success(len(run.Steps))
			case simulate.StatusFailed:
				ux.Failed(run)
			case simulate.StatusInterrupted:
				ux.Interrupted(run)
			}

			if path := cmd.String("report"); path != "" {
				if err := export.WriteReport(path, run); err != nil {
					return errors.Join(runErr, fmt.Errorf("writing report: %w", err))
				}
				ux.ReportHint(path)
			}
			return runErr
		},
	}
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the pipeline file for problems, or diagnose a failed simulation report",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.StringFlag{Name: "report", Usage: "Diagnose the simulation report at this path instead"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if path := cmd.String("report"); path != "" {
				run, err := export.ReadReport(path)
				if err != nil {
					return err
				}
				doctor.Diagnose(os.Stdout, run)
				return nil
			}

			p, path, err := loadPipeline(cmd.String("file"))
			if err != nil {
				return err
			}
			fmt.Printf("\n%s%sChecking %s%s\n\n", ux.Bold, ux.Cyan, path, ux.Reset)
			return doctor.Print(os.Stdout, doctor.Check(p))
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the pipeline editor over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Usage:   "Listen address",
				Sources: cli.EnvVars("PIPECRAFT_ADDR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(editor.NewSession(), ctxlog.FromContext(ctx))
			return srv.Run(ctx, cmd.String("addr"))
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-14s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'pipecraft docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

// loadPipeline loads the pipeline file at path, or the one found by walking
// up from the working directory when path is empty.
func loadPipeline(path string) (*pipeline.Pipeline, string, error) {
	if path == "" {
		dir, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		if path, err = config.FindFile(dir); err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading %s: %w", path, err)
	}
	p, err := cfg.Pipeline(uuid.NewString(), time.Now())
	if err != nil {
		return nil, "", err
	}
	return p, path, nil
}
