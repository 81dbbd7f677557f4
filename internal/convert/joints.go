package convert

import (
	"fmt"
	"strings"

	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// FixedJointMarker is the substring that flags a coordinate system as a
// fixed-joint mate. General coordinate systems (CSYS, ASM_CSYS, ...) do
// not carry it.
const FixedJointMarker = "SCSYS"

// jointCandidate accumulates the endpoints registered under one axis or
// coordinate-system name. The first registration is the parent, the
// second the child; anything beyond two is a model error.
type jointCandidate struct {
	name   string
	kind   model.JointKind
	parent string // raw CAD component name, set on first registration
	child  string // raw CAD component name, set on second registration
}

// registerEndpoint records one occurrence of a joint key on a
// component. A third occurrence is reported and ignored, keeping the
// first two endpoints.
func (s *Session) registerEndpoint(key string, kind model.JointKind, linkName string) {
	cand, ok := s.candidates[key]
	if !ok {
		s.candidates[key] = &jointCandidate{name: key, kind: kind, parent: linkName}
		s.candOrder = append(s.candOrder, key)
		return
	}
	if cand.child == "" {
		cand.child = linkName
		return
	}
	msglog.Warnf("joint %s already has endpoints %s and %s; extra occurrence on %s ignored",
		key, cand.parent, cand.child, linkName)
}

// discoverJoints runs the two per-component discovery passes: every
// axis is a revolute candidate, every marked coordinate system a fixed
// candidate.
func (s *Session) discoverJoints(c cad.Component) {
	linkName := c.Name()

	axes := c.Axes()
	if len(axes) == 0 {
		msglog.Warnf("there is no axis in the part %s", linkName)
	}
	for _, axisName := range axes {
		s.registerEndpoint(axisName, model.Revolute, linkName)
	}

	csysList := c.CoordSystems()
	if len(csysList) == 0 {
		msglog.Warnf("there is no coordinate system in the part %s", linkName)
	}
	for _, csysName := range csysList {
		if !strings.Contains(csysName, FixedJointMarker) {
			continue
		}
		s.registerEndpoint(csysName, model.Fixed, linkName)
	}
}

// assembleJoints consumes the candidate table once traversal is
// complete and adds the joint set to the model. Candidates missing a
// child endpoint (a severed assembly) are dropped silently; a joint
// insertion failure is fatal.
func (s *Session) assembleJoints() error {
	for _, key := range s.candOrder {
		cand := s.candidates[key]
		if cand.child == "" {
			continue
		}

		parentInfo := s.links[cand.parent]
		childInfo := s.links[cand.child]
		jointName := s.opts.Rename(cand.parent + "--" + cand.child)
		parentHChild := parentInfo.rootPose.Inverse().Mul(childInfo.rootPose)

		joint := model.Joint{
			Name:   jointName,
			Kind:   cand.kind,
			Parent: parentInfo.urdfName,
			Child:  childInfo.urdfName,
			Origin: parentHChild,
		}

		if cand.kind == model.Revolute {
			axis, err := s.rotationAxis(parentInfo, cand.name)
			if err != nil {
				return fmt.Errorf("joint %s: %w", jointName, err)
			}
			if s.opts.ReverseRotationAxis(jointName) {
				axis = [3]float64{-axis[0], -axis[1], -axis[2]}
			}
			joint.Axis = axis

			row, err := s.limits.Limits(jointName)
			if err != nil {
				return fmt.Errorf("joint %s: %w", jointName, err)
			}
			joint.Limits = model.Limits{
				Lower: spatial.Deg2Rad(row.Lower),
				Upper: spatial.Deg2Rad(row.Upper),
			}
			joint.Dynamics = model.Dynamics{Damping: row.Damping, Friction: row.Friction}
		} else {
			// Remember the joint's defining coordinate system so FT
			// sensors mounted on it can be placed later.
			if pose, err := s.jointCsysTransform(parentInfo, cand.name); err == nil {
				s.jointFrames[jointName] = pose
			}
		}

		if err := s.model.AddJoint(joint); err != nil {
			return fmt.Errorf("failed to add joint %s: %w", jointName, err)
		}
	}
	return nil
}

// rotationAxis returns the joint axis direction expressed in the parent
// link frame.
func (s *Session) rotationAxis(parent *linkInfo, axisName string) ([3]float64, error) {
	dir, err := parent.component.AxisDirection(axisName)
	if err != nil {
		return [3]float64{}, err
	}
	if parent.frameName == "" {
		return dir, nil
	}
	defaultHLinkFrame, err := parent.component.FrameTransform(parent.frameName)
	if err != nil {
		return [3]float64{}, err
	}
	return defaultHLinkFrame.Inverse().Rotate(dir), nil
}

// jointCsysTransform returns parentLinkFrame_H_csys for a fixed joint's
// defining coordinate system on the parent component.
func (s *Session) jointCsysTransform(parent *linkInfo, csysName string) (spatial.Pose, error) {
	defaultHCsys, err := s.PartTransform(parent.component, csysName)
	if err != nil {
		return spatial.Pose{}, err
	}
	defaultHLinkFrame, err := s.PartTransform(parent.component, parent.frameName)
	if err != nil {
		return spatial.Pose{}, err
	}
	return defaultHLinkFrame.Inverse().Mul(defaultHCsys), nil
}
