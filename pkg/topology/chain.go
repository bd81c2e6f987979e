package topology

import (
	"context"
	"fmt"
	"log/slog"
)

var ErrNoOutput = fmt.Errorf("no output")

func NodeName(i int) string {
	return fmt.Sprintf("node%d", i)
}

// Pipeline builds len(seeds) copies of program connected in a line. Node i
// is seeded with seeds[i]; the last node is the output.
func Pipeline(logger *slog.Logger, program []int64, seeds ...[]int64) *Network {
	n := New(logger)

	for i, seed := range seeds {
		n.AddNode(Node{
			Name:    NodeName(i),
			Program: program,
			Seed:    seed,
		})

		if i > 0 {
			n.Connect(NodeName(i-1), NodeName(i))
		}
	}

	if len(seeds) > 0 {
		n.SetOutput(NodeName(len(seeds) - 1))
	}

	return n
}

// Ring is Pipeline with the last node feeding back into the first.
func Ring(logger *slog.Logger, program []int64, seeds ...[]int64) *Network {
	n := Pipeline(logger, program, seeds...)

	if len(seeds) > 0 {
		n.Connect(NodeName(len(seeds)-1), NodeName(0))
	}

	return n
}

// Amplify runs one copy of program per phase, each seeded with its phase
// setting, and feeds signal to the first. With feedback the chain is closed
// into a ring. It returns the last value the final node produced.
func Amplify(ctx context.Context, logger *slog.Logger, program []int64, phases []int64, signal int64, feedback bool) (int64, error) {
	if len(phases) == 0 {
		return 0, fmt.Errorf("amplify: no phases")
	}

	seeds := make([][]int64, len(phases))
	for i, phase := range phases {
		seeds[i] = []int64{phase}
	}
	seeds[0] = append(seeds[0], signal)

	build := Pipeline
	if feedback {
		build = Ring
	}

	n := build(logger, program, seeds...)

	err := n.Run(ctx)
	if err != nil {
		return 0, err
	}

	out := n.Outputs(n.Output())
	if len(out) == 0 {
		return 0, fmt.Errorf("amplify: %w", ErrNoOutput)
	}

	return out[len(out)-1], nil
}
