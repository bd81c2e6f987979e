package topology_test

import (
	"context"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/rhino1998/intcode/pkg/intcode"
	"github.com/rhino1998/intcode/pkg/topology"
	"github.com/stretchr/testify/require"
)

// Reads a value, writes value+1, forever.
const increment = "3,100,101,1,100,100,4,100,1105,1,0"

// Reads a value and prints it, until it reads zero.
const printer = "3,100,1006,100,10,4,100,1105,1,0,99"

func TestNetwork_Pipeline(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	// src emits 1..3 then stops; printer relays until the zero it never gets.
	src := intcode.MustParse("104,1,104,2,104,3,99")

	n := topology.New(slogt.New(t)).
		AddNode(topology.Node{Name: "src", Program: src}).
		AddNode(topology.Node{Name: "sink", Program: intcode.MustParse(printer)}).
		Connect("src", "sink").
		SetOutput("sink")

	err := n.Run(testContext(t))
	r.ErrorIs(err, intcode.ErrInputClosed)

	var nodeErr topology.NodeError
	r.ErrorAs(err, &nodeErr)
	r.Equal("sink", nodeErr.Node)

	r.Equal([]int64{1, 2, 3}, n.Outputs("sink"))
	r.Empty(n.Outputs("src"))
}

func TestNetwork_FeedbackRing(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	// a decrements whatever it reads and b echoes it back, until b reads
	// zero and halts.
	dec := intcode.MustParse("3,100,1001,100,-1,100,4,100,1105,1,0")
	echo := intcode.MustParse(printer)

	n := topology.New(slogt.New(t)).
		AddNode(topology.Node{Name: "a", Program: dec, Seed: []int64{5}}).
		AddNode(topology.Node{Name: "b", Program: echo}).
		Connect("a", "b").
		Connect("b", "a")

	err := n.Run(testContext(t))

	// b closes a's input when it halts, so a faults on its next read.
	r.ErrorIs(err, intcode.ErrInputClosed)

	var nodeErr topology.NodeError
	r.ErrorAs(err, &nodeErr)
	r.Equal("a", nodeErr.Node)

	r.Empty(n.Outputs("a"))
	r.Empty(n.Outputs("b"))
	r.Equal(int64(0), n.Machine("a").Memory().Read(100))
	r.Equal(int64(0), n.Machine("b").Memory().Read(100))
}

func TestNetwork_FaultCancelsRest(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	// bad faults immediately; the ring of incrementers would spin forever
	// without cancellation.
	n := topology.New(slogt.New(t)).
		AddNode(topology.Node{Name: "bad", Program: intcode.MustParse("42")}).
		AddNode(topology.Node{Name: "x", Program: intcode.MustParse(increment), Seed: []int64{0}}).
		AddNode(topology.Node{Name: "y", Program: intcode.MustParse(increment)}).
		Connect("x", "y").
		Connect("y", "x")

	err := n.Run(testContext(t))
	r.ErrorIs(err, intcode.ErrUnknownOpcode)
	r.NotErrorIs(err, context.Canceled)
}

func TestNetwork_DefaultInput(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	def := int64(-1)
	n := topology.New(slogt.New(t)).
		AddNode(topology.Node{Name: "m", Program: intcode.MustParse("3,0,4,0,3,0,4,0,99"), Seed: []int64{7}, DefaultInput: &def})

	r.NoError(n.Run(testContext(t)))
	r.Equal([]int64{7, -1}, n.Outputs("m"))
	r.Equal(int64(8), n.Machine("m").PC())
}

func TestNetwork_Validate(t *testing.T) {
	t.Parallel()

	prog := intcode.MustParse("99")

	tests := []struct {
		name  string
		build func(n *topology.Network)
		err   error
	}{
		{
			name: "duplicate",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a", Program: prog})
				n.AddNode(topology.Node{Name: "a", Program: prog})
			},
			err: topology.ErrDuplicateNode,
		},
		{
			name: "unknown link end",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a", Program: prog})
				n.Connect("a", "b")
			},
			err: topology.ErrUnknownNode,
		},
		{
			name: "unknown output",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a", Program: prog})
				n.SetOutput("z")
			},
			err: topology.ErrUnknownNode,
		},
		{
			name: "fan in",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a", Program: prog})
				n.AddNode(topology.Node{Name: "b", Program: prog})
				n.AddNode(topology.Node{Name: "c", Program: prog})
				n.Connect("a", "c")
				n.Connect("b", "c")
			},
			err: topology.ErrFanIn,
		},
		{
			name: "fan out",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a", Program: prog})
				n.AddNode(topology.Node{Name: "b", Program: prog})
				n.AddNode(topology.Node{Name: "c", Program: prog})
				n.Connect("a", "b")
				n.Connect("a", "c")
			},
			err: topology.ErrFanOut,
		},
		{
			name: "empty program",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a"})
			},
			err: topology.ErrEmptyProgram,
		},
		{
			name: "unseeded cycle",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a", Program: prog})
				n.AddNode(topology.Node{Name: "b", Program: prog})
				n.Connect("a", "b")
				n.Connect("b", "a")
			},
			err: topology.ErrUnseededCycle,
		},
		{
			name: "second cycle unseeded",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a", Program: prog, Seed: []int64{1}})
				n.AddNode(topology.Node{Name: "b", Program: prog})
				n.AddNode(topology.Node{Name: "c", Program: prog})
				n.AddNode(topology.Node{Name: "d", Program: prog})
				n.Connect("a", "b")
				n.Connect("b", "a")
				n.Connect("c", "d")
				n.Connect("d", "c")
			},
			err: topology.ErrUnseededCycle,
		},
		{
			name: "seed outside the cycle",
			build: func(n *topology.Network) {
				n.AddNode(topology.Node{Name: "a", Program: prog})
				n.AddNode(topology.Node{Name: "b", Program: prog})
				n.AddNode(topology.Node{Name: "c", Program: prog, Seed: []int64{1}})
				n.AddNode(topology.Node{Name: "d", Program: prog})
				n.Connect("a", "b")
				n.Connect("b", "a")
				n.Connect("c", "d")
			},
			err: topology.ErrUnseededCycle,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			n := topology.New(slogt.New(t))
			test.build(n)

			err := n.Start(testContext(t))
			r.ErrorIs(err, test.err)
			r.ErrorIs(n.Wait(), topology.ErrNotStarted)
		})
	}
}

func TestNetwork_ValidateReportsEverything(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	n := topology.New(nil).
		AddNode(topology.Node{Name: "a"}).
		AddNode(topology.Node{Name: "a", Program: intcode.MustParse("99")}).
		Connect("a", "zz")

	err := n.Validate()
	r.ErrorIs(err, topology.ErrEmptyProgram)
	r.ErrorIs(err, topology.ErrDuplicateNode)
	r.ErrorIs(err, topology.ErrUnknownNode)

	var set *topology.ErrorSet
	r.ErrorAs(err, &set)
	r.Len(set.Errs, 3)
}

func TestNetwork_StartTwice(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	n := topology.New(nil).AddNode(topology.Node{Name: "a", Program: intcode.MustParse("99")})
	r.NoError(n.Start(testContext(t)))
	r.Error(n.Start(testContext(t)))
	r.NoError(n.Wait())
}

func TestNetwork_UnseededCycleNamesOnlyThatCycle(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	prog := intcode.MustParse("3,0,99")

	n := topology.New(slogt.New(t)).
		AddNode(topology.Node{Name: "a", Program: prog, Seed: []int64{1}}).
		AddNode(topology.Node{Name: "b", Program: prog}).
		AddNode(topology.Node{Name: "c", Program: prog}).
		AddNode(topology.Node{Name: "d", Program: prog}).
		Connect("a", "b").
		Connect("b", "a").
		Connect("c", "d").
		Connect("d", "c")

	err := n.Start(testContext(t))
	r.ErrorIs(err, topology.ErrUnseededCycle)
	r.ErrorContains(err, "[c d]")
	r.NotContains(err.Error(), "[a b]")
}

func TestNetwork_CycleStartable(t *testing.T) {
	t.Parallel()

	def := int64(0)

	tests := []struct {
		name  string
		nodes []topology.Node
	}{
		{
			name: "default input",
			nodes: []topology.Node{
				{Name: "a", DefaultInput: &def},
				{Name: "b", DefaultInput: &def},
			},
		},
		{
			name: "one default input",
			nodes: []topology.Node{
				{Name: "a"},
				{Name: "b", DefaultInput: &def},
			},
		},
		{
			name: "seed",
			nodes: []topology.Node{
				{Name: "a", Seed: []int64{1}},
				{Name: "b"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			// Each machine reads one value, echoes it and halts.
			n := topology.New(slogt.New(t))
			for _, node := range test.nodes {
				node.Program = intcode.MustParse("3,0,4,0,99")
				n.AddNode(node)
			}
			n.Connect("a", "b").Connect("b", "a")

			r.NoError(n.Run(testContext(t)))
		})
	}
}
