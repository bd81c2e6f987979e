package topology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rhino1998/intcode/pkg/intcode"
	"github.com/rhino1998/intcode/pkg/topological"
	"golang.org/x/sync/errgroup"
)

var ErrEmptyProgram = fmt.Errorf("empty program")

// Node is one machine in a network. Seed values are queued on the node's
// input before any linked producer runs.
type Node struct {
	Name    string
	Program []int64
	Seed    []int64

	// DefaultInput, when set, runs the machine in non-blocking input mode.
	DefaultInput *int64
}

// Link connects the output of From to the input of To.
type Link struct {
	From string
	To   string
}

// Network wires machines together through pipes. Every pipe has exactly one
// producer and one consumer, so a node has at most one inbound and one
// outbound link. Cycles are allowed as long as every one of them has a
// seeded node or a node with a default input.
type Network struct {
	logger *slog.Logger

	nodes  []Node
	links  []Link
	output string

	order    []string
	machines map[string]*intcode.Machine
	outs     map[string]*intcode.Pipe
	errs     []error
	group    *errgroup.Group
}

func New(logger *slog.Logger) *Network {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Network{
		logger: logger,
	}
}

func (n *Network) AddNode(node Node) *Network {
	n.nodes = append(n.nodes, node)
	return n
}

func (n *Network) Connect(from, to string) *Network {
	n.links = append(n.links, Link{From: from, To: to})
	return n
}

// SetOutput names the node whose leftover output the caller is interested
// in. It is informational for Outputs and required by Amplify.
func (n *Network) SetOutput(name string) *Network {
	n.output = name
	return n
}

func (n *Network) Output() string {
	return n.output
}

func (n *Network) Nodes() []Node {
	return slices.Clone(n.nodes)
}

func (n *Network) Links() []Link {
	return slices.Clone(n.links)
}

func (n *Network) node(name string) (Node, bool) {
	idx := slices.IndexFunc(n.nodes, func(node Node) bool { return node.Name == name })
	if idx < 0 {
		return Node{}, false
	}

	return n.nodes[idx], true
}

// producer returns the node feeding name, if any.
func (n *Network) producer(name string) (string, bool) {
	for _, link := range n.links {
		if link.To == name {
			return link.From, true
		}
	}

	return "", false
}

// Validate reports every structural problem at once.
func (n *Network) Validate() error {
	errs := newErrorSet()

	seen := make(map[string]struct{})
	for i, node := range n.nodes {
		if node.Name == "" {
			errs.Add(fmt.Errorf("node %d has no name", i))
			continue
		}

		if _, ok := seen[node.Name]; ok {
			errs.Add(NodeError{Node: node.Name, Err: ErrDuplicateNode})
		}
		seen[node.Name] = struct{}{}

		if len(node.Program) == 0 {
			errs.Add(NodeError{Node: node.Name, Err: ErrEmptyProgram})
		}
	}

	inbound := make(map[string]int)
	outbound := make(map[string]int)
	for _, link := range n.links {
		for _, end := range []string{link.From, link.To} {
			if _, ok := seen[end]; !ok {
				errs.Add(fmt.Errorf("link %s -> %s: %w %q", link.From, link.To, ErrUnknownNode, end))
			}
		}

		outbound[link.From]++
		inbound[link.To]++
	}

	for _, node := range n.nodes {
		if inbound[node.Name] > 1 {
			errs.Add(NodeError{Node: node.Name, Err: ErrFanIn})
		}
		if outbound[node.Name] > 1 {
			errs.Add(NodeError{Node: node.Name, Err: ErrFanOut})
		}
	}

	if n.output != "" {
		if _, ok := seen[n.output]; !ok {
			errs.Add(fmt.Errorf("output: %w %q", ErrUnknownNode, n.output))
		}
	}

	return errs.Err()
}

// startOrder orders producers before their consumers. Nodes caught in a
// feedback cycle are appended after the acyclic prefix.
func (n *Network) startOrder() ([]string, error) {
	names := make([]string, 0, len(n.nodes))
	for _, node := range n.nodes {
		names = append(names, node.Name)
	}

	order, err := topological.Sort(names, func(name string) []string {
		if from, ok := n.producer(name); ok {
			return []string{from}
		}
		return nil
	})
	if err == nil {
		return order, nil
	}

	var cycle *topological.CycleError[string]
	if !errors.As(err, &cycle) {
		return nil, err
	}

	errs := newErrorSet()
	for _, loop := range n.cycles(cycle.Remaining) {
		if !slices.ContainsFunc(loop, n.canStart) {
			errs.Add(fmt.Errorf("%w: %v", ErrUnseededCycle, loop))
			continue
		}

		n.logger.Debug("feedback loop", "nodes", loop)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	return append(order, cycle.Remaining...), nil
}

// canStart reports whether name can make progress inside a feedback loop
// before anything reaches it: it has seed values queued, or it never
// blocks on input.
func (n *Network) canStart(name string) bool {
	node, _ := n.node(name)
	return len(node.Seed) > 0 || node.DefaultInput != nil
}

// consumer returns the node name feeds, if any.
func (n *Network) consumer(name string) (string, bool) {
	for _, link := range n.links {
		if link.From == name {
			return link.To, true
		}
	}

	return "", false
}

// cycles splits the nodes a sort could not order into the individual loops
// among them. Every node has at most one consumer, so following consumers
// from any node ends in at most one loop.
func (n *Network) cycles(remaining []string) [][]string {
	const (
		unvisited = iota
		onPath
		done
	)

	state := make(map[string]int, len(remaining))
	var loops [][]string

	for _, start := range remaining {
		var path []string

		name, ok := start, true
		for ok && state[name] == unvisited {
			state[name] = onPath
			path = append(path, name)

			name, ok = n.consumer(name)
		}

		if ok && state[name] == onPath {
			idx := slices.Index(path, name)
			loops = append(loops, slices.Clone(path[idx:]))
		}

		for _, p := range path {
			state[p] = done
		}
	}

	return loops
}

// Start validates the network, creates its pipes and spawns one goroutine
// per node. It returns once every machine is running.
func (n *Network) Start(ctx context.Context) error {
	if n.group != nil {
		return fmt.Errorf("network already started")
	}

	err := n.Validate()
	if err != nil {
		return fmt.Errorf("invalid network: %w", err)
	}

	order, err := n.startOrder()
	if err != nil {
		return fmt.Errorf("invalid network: %w", err)
	}

	n.order = order
	n.machines = make(map[string]*intcode.Machine, len(order))
	n.outs = make(map[string]*intcode.Pipe, len(order))
	n.errs = make([]error, len(order))

	for _, name := range order {
		n.outs[name] = intcode.NewPipe()
	}

	inputs := make(map[string]*intcode.Pipe, len(order))
	for _, name := range order {
		node, _ := n.node(name)

		if from, ok := n.producer(name); ok {
			in := n.outs[from]
			for _, v := range node.Seed {
				in.Send(v)
			}
			inputs[name] = in
		} else {
			in := intcode.NewPipe(node.Seed...)
			in.Close()
			inputs[name] = in
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	n.group = group

	for i, name := range order {
		node, _ := n.node(name)

		logger := n.logger.With("node", name)
		opts := []intcode.Option{intcode.WithLogger(logger)}
		if node.DefaultInput != nil {
			opts = append(opts, intcode.WithDefaultInput(*node.DefaultInput))
		}

		m := intcode.New(node.Program, opts...)
		n.machines[name] = m

		in, out := inputs[name], n.outs[name]
		group.Go(func() error {
			err := m.Exec(gctx, in, out)
			if err != nil {
				err = NodeError{Node: name, Err: err}
				n.errs[i] = err
			}
			return err
		})
	}

	n.logger.Info("network started", "nodes", len(order), "order", order)

	return nil
}

// Wait blocks until every machine has stopped. The first failure cancels
// the rest of the network. Faults are all reported; cancellations only
// when nothing else failed.
func (n *Network) Wait() error {
	if n.group == nil {
		return ErrNotStarted
	}

	_ = n.group.Wait()

	errs := newErrorSet()
	var cancelled error
	for _, err := range n.errs {
		if err == nil {
			continue
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if cancelled == nil {
				cancelled = err
			}
			continue
		}

		errs.Add(err)
	}

	if err := errs.Err(); err != nil {
		n.logger.Warn("network failed", "err", err)
		return err
	}

	if cancelled != nil {
		return cancelled
	}

	n.logger.Info("network halted")

	return nil
}

// Run is Start followed by Wait.
func (n *Network) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}

	return n.Wait()
}

// Outputs drains what name emitted that no other node consumed. In a
// feedback ring this is whatever is left on the next node's input after
// everything halted.
func (n *Network) Outputs(name string) []int64 {
	out, ok := n.outs[name]
	if !ok {
		return nil
	}

	return out.Drain()
}

// Machine returns the machine running name, once the network has started.
func (n *Network) Machine(name string) *intcode.Machine {
	return n.machines[name]
}
