package convert

import (
	"strings"

	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// UseraddedSuffix is appended to auto-discovered user frame names.
const UseraddedSuffix = "_USERADDED"

// exportedFrame is one pending additional-frame export, keyed in the
// session table by the source coordinate-system name.
type exportedFrame struct {
	sourceName     string
	referenceLink  string       // canonical link name
	exportedName   string
	linkHFrame     spatial.Pose // linkFrame_H_additionalFrame, set during traversal
	additional     spatial.Pose // extra fixed offset composed on top
	resolved       bool
	autoDiscovered bool // registered by the blanket user-frame sweep
}

// readExportedFramesFromConfig seeds the exported-frame table from the
// explicit configuration entries. When blanket user-frame export is on,
// the explicit list is ignored and frames are auto-discovered instead.
func (s *Session) readExportedFramesFromConfig() {
	if s.opts.ExportAllUseradded() {
		return
	}
	for _, ef := range s.opts.ExportedFrames() {
		frame := &exportedFrame{
			sourceName:    ef.FrameName,
			referenceLink: ef.FrameReferenceLink,
			exportedName:  ef.ExportedFrameName,
		}
		if ef.AdditionalTransformation != nil {
			v := ef.AdditionalTransformation
			frame.additional = spatial.FromXYZRPY(
				[3]float64{v[0], v[1], v[2]},
				[3]float64{v[3], v[4], v[5]},
			)
		}
		s.exported[ef.FrameName] = frame
		s.exportOrder = append(s.exportOrder, ef.FrameName)
	}
}

// discoverExportedFrames registers auto-exported user frames for one
// component and resolves the transform of every table entry whose
// source coordinate system lives on this component.
func (s *Session) discoverExportedFrames(c cad.Component) {
	linkName := c.Name()
	info := s.links[linkName]

	for _, csysName := range c.CoordSystems() {
		if s.opts.ExportAllUseradded() {
			if strings.Contains(csysName, FixedJointMarker) {
				if _, exists := s.exported[csysName]; !exists {
					s.exported[csysName] = &exportedFrame{
						sourceName:     csysName,
						referenceLink:  info.urdfName,
						exportedName:   csysName + UseraddedSuffix,
						autoDiscovered: true,
					}
					s.exportOrder = append(s.exportOrder, csysName)
				}
			}
		}

		frame, ok := s.exported[csysName]
		if !ok || frame.resolved {
			continue
		}
		csysHFrame, err := s.PartTransform(c, csysName)
		if err != nil {
			msglog.Warnf("exported frame %s: %v", csysName, err)
			continue
		}
		csysHLinkFrame, err := s.PartTransform(c, info.frameName)
		if err != nil {
			msglog.Warnf("exported frame %s: link frame %s: %v", csysName, info.frameName, err)
			continue
		}
		frame.linkHFrame = csysHLinkFrame.Inverse().Mul(csysHFrame)
		frame.resolved = true
	}
}

// consumedAsFixedJoint reports whether a coordinate-system name was
// paired into a two-endpoint fixed joint, which excludes it from frame
// export.
func (s *Session) consumedAsFixedJoint(sourceName string) bool {
	cand, ok := s.candidates[sourceName]
	return ok && cand.kind == model.Fixed && cand.child != ""
}

// attachExportedFrames adds every resolved exported frame to its
// reference link. Unresolvable references warn and skip; the run
// continues. The fixed-joint exclusion only applies to frames picked
// up by the blanket sweep: a frame the configuration asked for by name
// is attached even when its coordinate system also forms a joint.
func (s *Session) attachExportedFrames() {
	for _, key := range s.exportOrder {
		frame := s.exported[key]
		if frame.autoDiscovered && s.consumedAsFixedJoint(frame.sourceName) {
			continue
		}
		if !frame.resolved {
			msglog.Warnf("exported frame %s was never resolved; skipping", frame.exportedName)
			continue
		}
		pose := frame.linkHFrame.Mul(frame.additional)
		if err := s.model.AddFrameToLink(frame.referenceLink, frame.exportedName, pose); err != nil {
			msglog.Warnf("failed to add additional frame %s: %v", frame.exportedName, err)
		}
	}
}

// attachSensorFrames adds the sensor and FT-sensor frames to the model.
func (s *Session) attachSensorFrames() {
	for _, sensor := range s.sensorizer.Sensors {
		if !sensor.ExportFrameInURDF {
			continue
		}
		if err := s.model.AddFrameToLink(sensor.Link, sensor.ExportedFrameName, sensor.Transform); err != nil {
			msglog.Warnf("failed to add sensor frame %s: %v", sensor.ExportedFrameName, err)
		}
	}
	for jointName, ft := range s.sensorizer.FTSensors {
		if !ft.ExportFrameInURDF {
			continue
		}
		joint, ok := s.model.Joint(jointName)
		if !ok {
			msglog.Warnf("ft sensor %s: joint %s is not in the model", ft.Name, jointName)
			continue
		}
		// The frame attaches to the first of the joint's two links.
		if err := s.model.AddFrameToLink(joint.Parent, ft.ExportedFrameName, ft.Transform); err != nil {
			msglog.Warnf("failed to add ft sensor frame %s: %v", ft.ExportedFrameName, err)
		}
	}
}

// ExportedFrameTransform implements sensors.FrameResolver: the resolved
// linkFrame_H_frame for a source coordinate-system name.
func (s *Session) ExportedFrameTransform(frameName string) (spatial.Pose, bool) {
	frame, ok := s.exported[frameName]
	if !ok || !frame.resolved {
		return spatial.Pose{}, false
	}
	return frame.linkHFrame, true
}

// JointFrameTransform implements sensors.FrameResolver: the pose of a
// fixed joint's defining coordinate system in its parent link frame.
func (s *Session) JointFrameTransform(jointName string) (spatial.Pose, bool) {
	pose, ok := s.jointFrames[jointName]
	return pose, ok
}
