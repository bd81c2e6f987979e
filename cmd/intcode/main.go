package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rhino1998/intcode/pkg/intcode"
	"github.com/rhino1998/intcode/pkg/topology"
	"github.com/urfave/cli/v3"
)

func newLogger(c *cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseValues(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	return intcode.ParseString(s)
}

func loadProgram(c *cli.Command) ([]int64, error) {
	if c.Args().Len() != 1 {
		return nil, fmt.Errorf("must provide exactly one program file as argument")
	}

	return intcode.LoadFile(c.Args().First())
}

func printValues(values []int64) {
	for _, v := range values {
		fmt.Println(v)
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := &cli.Command{
		Name:  "intcode",
		Usage: "Run Intcode programs and networks of Intcode machines",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "log every executed instruction",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run a program with the given input and print its output",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "comma separated input values",
					},
					&cli.StringFlag{
						Name:  "default",
						Usage: "value read whenever no input is pending (enables non-blocking input)",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					program, err := loadProgram(c)
					if err != nil {
						return err
					}

					inputs, err := parseValues(c.String("input"))
					if err != nil {
						return fmt.Errorf("invalid input: %w", err)
					}

					logger := newLogger(c)

					opts := []intcode.Option{intcode.WithLogger(logger)}
					if def := c.String("default"); def != "" {
						v, err := strconv.ParseInt(def, 10, 64)
						if err != nil {
							return fmt.Errorf("invalid default input: %w", err)
						}
						opts = append(opts, intcode.WithDefaultInput(v))
					}

					m := intcode.New(program, opts...)
					out, err := m.Run(ctx, inputs...)
					printValues(out)
					if err != nil {
						return err
					}

					logger.Debug("program finished", "steps", m.Steps())

					return nil
				},
			},
			{
				Name:      "amplify",
				Usage:     "Chain one copy of a program per phase setting and print the final signal",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "phases",
						Aliases:  []string{"p"},
						Usage:    "comma separated phase settings, one per machine",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "signal",
						Usage: "initial input signal",
						Value: "0",
					},
					&cli.BoolFlag{
						Name:    "feedback",
						Aliases: []string{"f"},
						Usage:   "connect the last machine back to the first",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					program, err := loadProgram(c)
					if err != nil {
						return err
					}

					phases, err := parseValues(c.String("phases"))
					if err != nil {
						return fmt.Errorf("invalid phases: %w", err)
					}

					initial, err := strconv.ParseInt(c.String("signal"), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid signal: %w", err)
					}

					result, err := topology.Amplify(ctx, newLogger(c), program, phases, initial, c.Bool("feedback"))
					if err != nil {
						return err
					}

					fmt.Println(result)

					return nil
				},
			},
			{
				Name:      "network",
				Usage:     "Build a network of machines from a TOML description and run it",
				ArgsUsage: "CONFIG",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("must provide exactly one network config as argument")
					}

					logger := newLogger(c)

					config, err := topology.LoadConfig(c.Args().First())
					if err != nil {
						return err
					}

					network, err := config.Build(logger, intcode.LoadFile)
					if err != nil {
						return err
					}

					err = network.Run(ctx)

					names := []string{network.Output()}
					if network.Output() == "" {
						names = names[:0]
						for _, node := range network.Nodes() {
							names = append(names, node.Name)
						}
					}

					for _, name := range names {
						out := network.Outputs(name)
						if len(out) == 0 {
							continue
						}
						fmt.Printf("%s: %s\n", name, intcode.Format(out))
					}

					return err
				},
			},
			{
				Name:      "disasm",
				Usage:     "Print a linear disassembly of a program",
				ArgsUsage: "FILE",
				Action: func(ctx context.Context, c *cli.Command) error {
					program, err := loadProgram(c)
					if err != nil {
						return err
					}

					return intcode.Disassemble(os.Stdout, program)
				},
			},
		},
	}

	err := cmd.Run(ctx, os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}
