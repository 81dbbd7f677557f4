package convert

import (
	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// RootTransform resolves the pose of a component's named reference
// frame with respect to the assembly root: the component placement
// composed with the frame's local pose, with the unit scale applied to
// the translation. An empty frameName selects the component's default
// frame.
func (s *Session) RootTransform(c cad.Component, frameName string) (spatial.Pose, error) {
	rootHComp, err := s.host.Placement(c)
	if err != nil {
		return spatial.Pose{}, err
	}
	compHFrame, err := c.FrameTransform(frameName)
	if err != nil {
		return spatial.Pose{}, err
	}
	return rootHComp.Mul(compHFrame).ScaleTranslation(s.scale), nil
}

// PartTransform resolves a frame's pose entirely within one component:
// default_H_frame with the unit scale applied. Used for frame-to-frame
// conversions that never leave the part.
func (s *Session) PartTransform(c cad.Component, frameName string) (spatial.Pose, error) {
	p, err := c.FrameTransform(frameName)
	if err != nil {
		return spatial.Pose{}, err
	}
	return p.ScaleTranslation(s.scale), nil
}
