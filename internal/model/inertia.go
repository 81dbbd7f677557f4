package model

import (
	"gonum.org/v1/gonum/mat"
)

// SpatialInertia is a rigid-body inertia: mass, center of mass in the
// link frame, and the 3x3 rotational inertia about the center of mass
// expressed in the link frame.
type SpatialInertia struct {
	Mass    float64
	COM     [3]float64
	Inertia *mat.SymDense // nil means zero
}

// NewSpatialInertia builds a SpatialInertia from a row-major 3x3
// tensor. Only the upper triangle is read; the tensor is assumed
// symmetric.
func NewSpatialInertia(mass float64, com [3]float64, tensor [3][3]float64) SpatialInertia {
	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			sym.SetSym(i, j, tensor[i][j])
		}
	}
	return SpatialInertia{Mass: mass, COM: com, Inertia: sym}
}

// NewDiagonalInertia builds a SpatialInertia with a diagonal tensor.
func NewDiagonalInertia(mass float64, com [3]float64, diag [3]float64) SpatialInertia {
	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		sym.SetSym(i, i, diag[i])
	}
	return SpatialInertia{Mass: mass, COM: com, Inertia: sym}
}

func (si SpatialInertia) tensor() *mat.SymDense {
	if si.Inertia == nil {
		return mat.NewSymDense(3, nil)
	}
	return si.Inertia
}

// At returns tensor entry (i, j).
func (si SpatialInertia) At(i, j int) float64 { return si.tensor().At(i, j) }

// PhysicallyConsistent reports whether the inertia could belong to a
// real rigid body: non-negative mass, non-negative principal moments,
// and the triangle inequality on the principal moments (each one no
// larger than the sum of the other two).
func (si SpatialInertia) PhysicallyConsistent() bool {
	if si.Mass < 0 {
		return false
	}
	var eig mat.EigenSym
	if !eig.Factorize(si.tensor(), false) {
		return false
	}
	v := eig.Values(nil)
	const tol = 1e-10
	for i := 0; i < 3; i++ {
		if v[i] < -tol {
			return false
		}
		if v[i] > v[(i+1)%3]+v[(i+2)%3]+tol {
			return false
		}
	}
	return true
}
