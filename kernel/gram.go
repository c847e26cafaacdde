package kernel

import (
	"container/list"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/gosvm/core/parallel"
)

// DefaultCacheRows is the default capacity of the Gram row cache.
const DefaultCacheRows = 256

// Row fill switches to chunked goroutines above this many samples.
const parallelThreshold = 1024

// Gram is the similarity oracle over a fixed dataset. It borrows the dataset
// rows for the lifetime of one training run; the rows must not be mutated
// while the Gram is in use. Row results are cached with LRU eviction so the
// solver can revisit recently selected variables without recomputation.
//
// A Gram is private to one training run and is not safe for concurrent use.
type Gram struct {
	x      [][]float64
	method Method
	d      []float64
	xsq    []float64 // squared norms, RBF fast path
	gamma  float64   // RBF only

	maxRows int
	rows    map[int]*list.Element
	lru     *list.List // front = most recently used
}

type cachedRow struct {
	index int
	data  []float64
}

// NewGram creates the oracle for the given dataset rows and kernel method.
// cacheRows bounds the number of cached similarity rows; values below 2 fall
// back to DefaultCacheRows (the solver holds two rows at a time).
func NewGram(x [][]float64, method Method, cacheRows int) *Gram {
	if cacheRows < 2 {
		cacheRows = DefaultCacheRows
	}
	g := &Gram{
		x:       x,
		method:  method,
		maxRows: cacheRows,
		rows:    make(map[int]*list.Element, cacheRows),
		lru:     list.New(),
	}
	if rbf, ok := method.(gaussian); ok {
		g.gamma = rbf.gamma
		g.xsq = make([]float64, len(x))
		for i, xi := range x {
			g.xsq[i] = floats.Dot(xi, xi)
		}
	}
	g.d = make([]float64, len(x))
	for i := range x {
		g.d[i] = g.at(i, i)
	}
	return g
}

// Len returns the number of samples in the dataset.
func (g *Gram) Len() int { return len(g.x) }

// Value returns the similarity between samples i and j.
func (g *Gram) Value(i, j int) float64 {
	g.check(i)
	g.check(j)
	if e, ok := g.rows[i]; ok {
		return e.Value.(*cachedRow).data[j]
	}
	if e, ok := g.rows[j]; ok {
		return e.Value.(*cachedRow).data[i]
	}
	return g.at(i, j)
}

// Row returns the similarity row of sample i against all samples. The
// returned slice is owned by the cache and valid until i is evicted; callers
// must not retain or mutate it across further oracle calls.
func (g *Gram) Row(i int) []float64 {
	g.check(i)
	if e, ok := g.rows[i]; ok {
		g.lru.MoveToFront(e)
		return e.Value.(*cachedRow).data
	}
	row := make([]float64, len(g.x))
	parallel.ParallelizeWithThreshold(len(g.x), parallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			row[j] = g.at(i, j)
		}
	})
	for g.lru.Len() >= g.maxRows {
		old := g.lru.Back()
		g.lru.Remove(old)
		delete(g.rows, old.Value.(*cachedRow).index)
	}
	g.rows[i] = g.lru.PushFront(&cachedRow{index: i, data: row})
	return row
}

// Diag returns the main diagonal of the kernel matrix.
func (g *Gram) Diag() []float64 { return g.d }

func (g *Gram) at(i, j int) float64 {
	if g.xsq != nil {
		// exp(-gamma*||xi-xj||^2) via precomputed squared norms
		return math.Exp(-g.gamma * (g.xsq[i] + g.xsq[j] - 2*floats.Dot(g.x[i], g.x[j])))
	}
	return g.method.Compute(g.x[i], g.x[j])
}

func (g *Gram) check(i int) {
	if i < 0 || i >= len(g.x) {
		panic(fmt.Sprintf("kernel: sample index %d out of range [0, %d)", i, len(g.x)))
	}
}
