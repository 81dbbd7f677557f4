package convert

import (
	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// buildInertia turns CAD mass properties into the link's spatial
// inertia. Tensor entries scale by scale[i]*scale[j]; a configured
// diagonal override replaces the whole tensor with the given diagonal.
// The center of mass is scaled per-axis and then re-expressed in the
// link frame through the inverse of the root-to-link pose. The scaling
// happens before the frame change, matching the established converter
// behavior for non-uniform scale vectors.
func (s *Session) buildInertia(mp cad.MassProperty, rootHLink spatial.Pose, urdfName string) model.SpatialInertia {
	mass := mp.Mass
	if assigned, ok := s.opts.AssignedMass(urdfName); ok {
		mass = assigned
	}

	com := [3]float64{
		mp.COM[0] * s.scale[0],
		mp.COM[1] * s.scale[1],
		mp.COM[2] * s.scale[2],
	}
	com = rootHLink.Inverse().Apply(com)

	if diag, ok := s.opts.AssignedInertia(urdfName); ok {
		return model.NewDiagonalInertia(mass, com, diag)
	}

	var tensor [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tensor[i][j] = mp.Inertia[i][j] * s.scale[i] * s.scale[j]
		}
	}
	return model.NewSpatialInertia(mass, com, tensor)
}
