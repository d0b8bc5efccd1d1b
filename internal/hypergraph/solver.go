package hypergraph

import (
	"cmp"
	"fmt"
	"slices"

	streamerrors "github.com/tamirms/hypermph/errors"
)

// Key is the 128-bit digest of a key.
type Key struct {
	Hi, Lo uint64
}

// Solution is the result of solving one chunk.
type Solution struct {
	// Seed is the chunk seed that produced a peelable hypergraph.
	Seed uint64

	// Fields holds one value per chunk vertex, each in [0, number of keys).
	// Fields is owned by the caller.
	Fields []uint32

	// Attempts is the number of seeds tried, including the successful one.
	Attempts int
}

// peeled records an edge removed during peeling and the degree-1 vertex
// (the hinge) it was removed through.
type peeled struct {
	edge  uint32
	hinge uint32
}

// Solver finds chunk seeds and vertex fields by peeling 3-hypergraphs.
//
// A Solver is NOT safe for concurrent use. It retains its scratch buffers
// between calls, so one Solver should be reused across chunks.
type Solver struct {
	edges    [][3]uint32
	degree   []uint32
	incident []uint32 // XOR of the ids of all unpeeled edges at each vertex
	queue    []uint32
	stack    []peeled
	sorted   []Key
}

// NewSolver creates a solver with empty scratch buffers.
func NewSolver() *Solver {
	return &Solver{}
}

// Solve assigns vertex fields for the given keys over a chunk of vertices
// vertices. Key i receives chunk-local index i.
//
// Seeds are tried in order 0..MaxSeeds-1, so the result is deterministic.
// Returns ErrDuplicateKey if two keys share a digest, and ErrPeelingFailed if
// no seed yields a peelable hypergraph.
func (s *Solver) Solve(keys []Key, vertices uint64) (Solution, error) {
	n := len(keys)
	if n == 0 {
		return Solution{Fields: make([]uint32, vertices)}, nil
	}
	if n > MaxChunkKeys || vertices < 3 || vertices > uint64(^uint32(0)) {
		return Solution{}, fmt.Errorf("%w: chunk of %d keys over %d vertices", streamerrors.ErrPeelingFailed, n, vertices)
	}
	if err := s.checkDuplicates(keys); err != nil {
		return Solution{}, err
	}

	s.grow(n, int(vertices))
	for seed := uint64(0); seed < MaxSeeds; seed++ {
		if !s.peel(keys, seed, vertices) {
			continue
		}
		return Solution{
			Seed:     seed,
			Fields:   s.assign(n, int(vertices)),
			Attempts: int(seed) + 1,
		}, nil
	}
	return Solution{}, fmt.Errorf("%w: %d keys over %d vertices", streamerrors.ErrPeelingFailed, n, vertices)
}

// checkDuplicates rejects key sets containing identical digests, which can
// never peel under any seed.
func (s *Solver) checkDuplicates(keys []Key) error {
	s.sorted = append(s.sorted[:0], keys...)
	slices.SortFunc(s.sorted, func(a, b Key) int {
		if c := cmp.Compare(a.Hi, b.Hi); c != 0 {
			return c
		}
		return cmp.Compare(a.Lo, b.Lo)
	})
	for i := 1; i < len(s.sorted); i++ {
		if s.sorted[i] == s.sorted[i-1] {
			return streamerrors.ErrDuplicateKey
		}
	}
	return nil
}

func (s *Solver) grow(n, m int) {
	s.edges = slices.Grow(s.edges[:0], n)[:n]
	s.degree = slices.Grow(s.degree[:0], m)[:m]
	s.incident = slices.Grow(s.incident[:0], m)[:m]
	s.stack = slices.Grow(s.stack[:0], n)
}

// peel builds the hypergraph for seed and repeatedly removes edges through
// degree-1 vertices. Reports whether every edge was removed.
func (s *Solver) peel(keys []Key, seed, vertices uint64) bool {
	clear(s.degree)
	clear(s.incident)

	for i, k := range keys {
		e := Edge(k.Hi, k.Lo, seed, vertices)
		edge := [3]uint32{uint32(e[0]), uint32(e[1]), uint32(e[2])}
		s.edges[i] = edge
		for _, v := range edge {
			s.degree[v]++
			s.incident[v] ^= uint32(i)
		}
	}

	s.queue = s.queue[:0]
	for v, d := range s.degree {
		if d == 1 {
			s.queue = append(s.queue, uint32(v))
		}
	}

	s.stack = s.stack[:0]
	for len(s.queue) > 0 {
		v := s.queue[len(s.queue)-1]
		s.queue = s.queue[:len(s.queue)-1]
		if s.degree[v] != 1 {
			continue
		}
		e := s.incident[v]
		s.stack = append(s.stack, peeled{edge: e, hinge: v})
		for _, u := range s.edges[e] {
			s.degree[u]--
			s.incident[u] ^= e
			if s.degree[u] == 1 {
				s.queue = append(s.queue, u)
			}
		}
	}
	return len(s.stack) == len(keys)
}

// assign walks the peel order backwards. When an edge is reached, its two
// non-hinge vertices already hold their final values and its hinge is still
// zero, so the hinge field can be chosen to make the edge sum to its index.
func (s *Solver) assign(n, m int) []uint32 {
	fields := make([]uint32, m)
	k := uint64(n)
	for i := len(s.stack) - 1; i >= 0; i-- {
		p := s.stack[i]
		e := s.edges[p.edge]
		other := (uint64(fields[e[0]]) + uint64(fields[e[1]]) + uint64(fields[e[2]])) % k
		fields[p.hinge] = uint32((uint64(p.edge) + k - other) % k)
	}
	return fields
}
