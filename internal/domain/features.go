package domain

import "math"

// SparseVector is a row of a sparse matrix. Indices are strictly increasing
// and Values never holds an explicit zero; an all-zero row has no indices.
type SparseVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// At returns the value stored at column i.
func (v SparseVector) At(i int) float64 {
	for k, idx := range v.Indices {
		if idx == i {
			return v.Values[k]
		}
		if idx > i {
			break
		}
	}
	return 0
}

// Dense expands the row to a full slice of length Dim.
func (v SparseVector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for k, idx := range v.Indices {
		out[idx] = v.Values[k]
	}
	return out
}

// NNZ returns the number of stored non-zero values.
func (v SparseVector) NNZ() int { return len(v.Indices) }

// SparseFromDense builds a sparse row, skipping zeros.
func SparseFromDense(dense []float64) SparseVector {
	v := SparseVector{Dim: len(dense)}
	for i, x := range dense {
		if x != 0 {
			v.Indices = append(v.Indices, i)
			v.Values = append(v.Values, x)
		}
	}
	return v
}

// Features holds the per-contact outputs of the feature builder. All slices
// are row-aligned with Names.
type Features struct {
	Names      []string
	Documents  []string
	Vocabulary []string
	TFIDF      []SparseVector
	Embeddings [][]float64
}

// Rows returns the number of contacts represented.
func (f Features) Rows() int { return len(f.Names) }

// Row returns the index of name, or -1.
func (f Features) Row(name string) int {
	for i, n := range f.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
