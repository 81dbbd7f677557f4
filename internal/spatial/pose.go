// Package spatial implements rigid-transform algebra for the converter.
// A Pose is a rotation plus translation, written H in the usual
// parent_H_child notation: the pose of the child frame expressed in the
// parent frame. Composition follows root_H_child = root_H_parent *
// parent_H_child and the relative pose between two frames sharing a
// root is parent_H_child = root_H_parent.Inverse() * root_H_child.
package spatial

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Pose is a rigid transform. The zero value is the identity transform.
type Pose struct {
	rot *mat.Dense // 3x3 rotation; nil means identity
	pos [3]float64
}

// Identity returns the identity transform.
func Identity() Pose { return Pose{} }

// New builds a Pose from a 3x3 rotation matrix and a translation.
// The rotation is copied; the caller keeps ownership of rot.
func New(rot *mat.Dense, pos [3]float64) Pose {
	p := Pose{pos: pos}
	if rot != nil {
		p.rot = mat.DenseCopyOf(rot)
	}
	return p
}

// FromRows builds a Pose from a row-major 3x3 rotation and a translation.
// CAD hosts report placement matrices in this layout.
func FromRows(r [9]float64, pos [3]float64) Pose {
	return Pose{rot: mat.NewDense(3, 3, r[:]), pos: pos}
}

// FromXYZRPY builds a Pose from a translation and fixed-axis
// roll/pitch/yaw angles (radians), the URDF origin convention.
func FromXYZRPY(xyz, rpy [3]float64) Pose {
	return Pose{rot: rpyMatrix(rpy), pos: xyz}
}

func rpyMatrix(rpy [3]float64) *mat.Dense {
	sr, cr := math.Sincos(rpy[0])
	sp, cp := math.Sincos(rpy[1])
	sy, cy := math.Sincos(rpy[2])
	// R = Rz(yaw) * Ry(pitch) * Rx(roll)
	return mat.NewDense(3, 3, []float64{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr,
		-sp, cp * sr, cp * cr,
	})
}

func (p Pose) rotation() *mat.Dense {
	if p.rot == nil {
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}
	return p.rot
}

// Rotation returns a copy of the 3x3 rotation matrix.
func (p Pose) Rotation() *mat.Dense { return mat.DenseCopyOf(p.rotation()) }

// Position returns the translation component.
func (p Pose) Position() [3]float64 { return p.pos }

// Mul composes two transforms: if p is a_H_b and q is b_H_c, the result
// is a_H_c.
func (p Pose) Mul(q Pose) Pose {
	var r mat.Dense
	r.Mul(p.rotation(), q.rotation())
	t := p.Apply(q.pos)
	return Pose{rot: &r, pos: t}
}

// Inverse returns the transform mapping the other way: if p is a_H_b,
// the result is b_H_a.
func (p Pose) Inverse() Pose {
	var rt mat.Dense
	rt.CloneFrom(p.rotation().T())
	var t [3]float64
	for i := 0; i < 3; i++ {
		t[i] = -(rt.At(i, 0)*p.pos[0] + rt.At(i, 1)*p.pos[1] + rt.At(i, 2)*p.pos[2])
	}
	return Pose{rot: &rt, pos: t}
}

// Apply transforms a point from the child frame into the parent frame.
func (p Pose) Apply(v [3]float64) [3]float64 {
	r := p.rotation()
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = r.At(i, 0)*v[0] + r.At(i, 1)*v[1] + r.At(i, 2)*v[2] + p.pos[i]
	}
	return out
}

// Rotate applies only the rotation component to a direction vector.
func (p Pose) Rotate(v [3]float64) [3]float64 {
	r := p.rotation()
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = r.At(i, 0)*v[0] + r.At(i, 1)*v[1] + r.At(i, 2)*v[2]
	}
	return out
}

// ScaleTranslation returns a copy of p with each translation component
// multiplied by the matching scale factor. Used to bring CAD length
// units (typically millimeters) into meters.
func (p Pose) ScaleTranslation(s [3]float64) Pose {
	out := Pose{pos: [3]float64{p.pos[0] * s[0], p.pos[1] * s[1], p.pos[2] * s[2]}}
	if p.rot != nil {
		out.rot = mat.DenseCopyOf(p.rot)
	}
	return out
}

// RPY extracts fixed-axis roll/pitch/yaw angles (radians) from the
// rotation, matching FromXYZRPY.
func (p Pose) RPY() [3]float64 {
	r := p.rotation()
	pitch := math.Atan2(-r.At(2, 0), math.Hypot(r.At(0, 0), r.At(1, 0)))
	var roll, yaw float64
	if math.Abs(math.Cos(pitch)) < 1e-12 {
		// Gimbal lock: fold everything into roll.
		roll = math.Atan2(-r.At(1, 2), r.At(1, 1))
	} else {
		roll = math.Atan2(r.At(2, 1), r.At(2, 2))
		yaw = math.Atan2(r.At(1, 0), r.At(0, 0))
	}
	return [3]float64{roll, pitch, yaw}
}

// ApproxEqual reports whether two poses agree within tol on every
// rotation entry and translation component.
func (p Pose) ApproxEqual(q Pose, tol float64) bool {
	pr, qr := p.rotation(), q.rotation()
	for i := 0; i < 3; i++ {
		if math.Abs(p.pos[i]-q.pos[i]) > tol {
			return false
		}
		for j := 0; j < 3; j++ {
			if math.Abs(pr.At(i, j)-qr.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}

// Deg2Rad converts degrees to radians. Joint limit tables are stored in
// degrees while the model works in radians.
func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180.0 }
