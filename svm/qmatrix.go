package svm

// Oracle is the kernel abstraction the solver optimizes over. It answers
// pairwise similarity queries for a fixed dataset and must be deterministic
// and symmetric. *kernel.Gram satisfies it; tests may supply a precomputed
// matrix instead.
type Oracle interface {
	// Len returns the number of samples.
	Len() int
	// Value returns the similarity between samples i and j.
	Value(i, j int) float64
	// Row returns the similarity row of sample i against all samples. The
	// slice is only valid until the next oracle call.
	Row(i int) []float64
	// Diag returns the main diagonal of the kernel matrix.
	Diag() []float64
}

// signedQ materializes rows of the quadratic form
//
//	Q[i][j] = sign[i]*sign[j]*K(index[i], index[j])
//
// on demand. The sign vector carries the labels for classification; the
// index vector maps the doubled regression variables back onto their sample.
// Swapping entries keeps the view consistent with the solver's active-set
// reordering without touching the underlying oracle.
//
// Rows are served from two rotating buffers: the pair optimizer holds the
// rows of both selected variables at once, never more.
type signedQ struct {
	k     Oracle
	sign  []int8
	index []int
	d     []float64

	buf  [2][]float64
	next int
}

func newSignedQ(k Oracle, sign []int8, index []int) *signedQ {
	n := len(sign)
	q := &signedQ{
		k:     k,
		sign:  make([]int8, n),
		index: make([]int, n),
		d:     make([]float64, n),
	}
	copy(q.sign, sign)
	copy(q.index, index)
	kd := k.Diag()
	for i := range q.d {
		q.d[i] = kd[q.index[i]]
	}
	q.buf[0] = make([]float64, n)
	q.buf[1] = make([]float64, n)
	return q
}

// row returns Q[i][0:upto] in the solver's current variable order.
func (q *signedQ) row(i, upto int) []float64 {
	base := q.k.Row(q.index[i])
	out := q.buf[q.next]
	q.next = 1 - q.next
	si := q.sign[i]
	for j := 0; j < upto; j++ {
		out[j] = float64(si*q.sign[j]) * base[q.index[j]]
	}
	return out[:upto]
}

// diag returns the diagonal of Q in the solver's current variable order.
func (q *signedQ) diag() []float64 { return q.d }

func (q *signedQ) swap(i, j int) {
	q.sign[i], q.sign[j] = q.sign[j], q.sign[i]
	q.index[i], q.index[j] = q.index[j], q.index[i]
	q.d[i], q.d[j] = q.d[j], q.d[i]
}
