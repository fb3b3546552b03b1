package layout

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/model"
)

const (
	DefaultIterations = 20
	DefaultNodeSep    = 20

	stepSize = 0.1
)

// SpringOptions tunes the spring embedder. Zero values select the defaults;
// a separation of zero would leave zero-length edges without a fallback.
type SpringOptions struct {
	Iterations int
	NodeSep    float64
	// Rand breaks ties between coincident nodes. A randomly seeded source
	// is used when nil.
	Rand *rand.Rand
}

// DefaultSpringOptions returns 20 iterations with a separation of 20.
func DefaultSpringOptions() SpringOptions {
	return SpringOptions{Iterations: DefaultIterations, NodeSep: DefaultNodeSep}
}

// SpringEmbedder is a force directed layout of the whole graph. Edges act as
// springs with a rest length derived from their endpoints' sizes, and every
// pair of nodes repels. The result is fitted to the viewport and written to
// the graph once, one move per node.
type SpringEmbedder struct {
	opts SpringOptions
	ctx  Context
}

func NewSpringEmbedder(opts SpringOptions) *SpringEmbedder {
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.NodeSep <= 0 {
		opts.NodeSep = DefaultNodeSep
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SpringEmbedder{opts: opts}
}

func (s *SpringEmbedder) Init(ctx Context) bool {
	s.ctx = ctx
	return ctx.Graph != nil && ctx.View != nil
}

func (s *SpringEmbedder) DoLayout() {
	sim := newSimulation(s.ctx.Graph, s.ctx.View, s.opts.NodeSep, s.opts.Rand)
	for range s.opts.Iterations {
		sim.step()
	}

	centres := make([]geometry.Point, len(sim.bodies))
	boxes := make([]geometry.Rect, len(sim.bodies))
	for i, b := range sim.bodies {
		centres[i] = b.pos
		boxes[i] = b.box.Translate(r2.Sub(b.pos, b.node.Position()))
	}
	tr := fitTransform(centres, boxes, s.ctx.View.Viewport())

	for i, b := range sim.bodies {
		b.node.SetPosition(tr.apply(centres[i]))
	}
	logging.Debug("spring layout done", "nodes", len(sim.bodies), "edges", len(sim.springs), "iterations", s.opts.Iterations)
}

// body is the private simulation state of one node.
type body struct {
	node *model.Node
	box  geometry.Rect
	pos  geometry.Point
	acc  geometry.Point
}

type spring struct {
	src, dst *body
	rest     float64
}

type simulation struct {
	bodies  []*body
	springs []spring
	sep     float64
	rng     *rand.Rand
}

func newSimulation(g *model.Graph, boxes BoxQuerier, sep float64, rng *rand.Rand) *simulation {
	sim := &simulation{sep: sep, rng: rng}
	byNode := make(map[*model.Node]*body, g.NodeCount())
	for _, n := range g.Nodes() {
		b := &body{node: n, box: boxes.BBox(n), pos: n.Position()}
		sim.bodies = append(sim.bodies, b)
		byNode[n] = b
	}
	for _, e := range g.Edges() {
		src, dst := byNode[e.Src()], byNode[e.Dst()]
		sim.springs = append(sim.springs, spring{
			src:  src,
			dst:  dst,
			rest: halfExtent(src.box) + halfExtent(dst.box) + sep,
		})
	}
	return sim
}

func halfExtent(r geometry.Rect) float64 {
	return max(r.Width, r.Height) / 2
}

// step accumulates every force from the current positions, then integrates
// all bodies at once.
func (s *simulation) step() {
	for _, sp := range s.springs {
		v := r2.Sub(sp.dst.pos, sp.src.pos)
		length := r2.Norm(v)
		if length == 0 {
			length = s.sep
		}
		d := r2.Scale((sp.rest-length)/(3*length), v)
		sp.src.acc = r2.Sub(sp.src.acc, d)
		sp.dst.acc = r2.Add(sp.dst.acc, d)
	}

	for _, b := range s.bodies {
		var push geometry.Point
		for _, other := range s.bodies {
			if other == b {
				continue
			}
			v := r2.Sub(b.pos, other.pos)
			if length := r2.Norm(v); length == 0 {
				push = r2.Add(push, geometry.Pt(s.rng.Float64(), s.rng.Float64()))
			} else {
				push = r2.Add(push, r2.Scale(1/length, v))
			}
		}
		if m := r2.Norm(push); m > 0 {
			b.acc = r2.Add(b.acc, r2.Scale(m/2, push))
		}
	}

	for _, b := range s.bodies {
		b.pos = r2.Add(b.pos, r2.Scale(stepSize, b.acc))
		b.acc = r2.Scale(0.5, b.acc)
	}
}
