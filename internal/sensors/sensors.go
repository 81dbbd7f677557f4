// Package sensors manages sensor and force/torque sensor declarations:
// reading them from the configuration document, resolving their poses
// against the converted model's frames, and rendering the XML fragments
// appended to the exported file.
package sensors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/banshee-data/cad2urdf/internal/config"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// Sensor is a generic sensor attached to a link.
type Sensor struct {
	Name              string
	Type              string
	Link              string
	FrameName         string // exported frame the pose is resolved from
	ExportFrameInURDF bool
	ExportedFrameName string
	UpdateRate        float64
	Blobs             []string
	Transform         spatial.Pose // link_H_sensor, set by AssignSensorTransforms
	resolved          bool
}

// FTSensor is a force/torque sensor mounted on a fixed joint.
type FTSensor struct {
	Name              string
	Joint             string
	ExportFrameInURDF bool
	ExportedFrameName string
	Transform         spatial.Pose // parent_link_H_sensor, set by AssignFTTransforms
	resolved          bool
}

// FrameResolver supplies resolved frame poses from the conversion
// session.
type FrameResolver interface {
	// ExportedFrameTransform returns link_H_frame for a named exported
	// frame.
	ExportedFrameTransform(frameName string) (spatial.Pose, bool)

	// JointFrameTransform returns parentLinkFrame_H_jointFrame for the
	// coordinate system that defines the named joint.
	JointFrameTransform(jointName string) (spatial.Pose, bool)
}

// Sensorizer collects the declared sensors for one conversion run.
type Sensorizer struct {
	Sensors   []Sensor
	FTSensors map[string]FTSensor // keyed by owning joint name
}

// FromConfig reads sensor declarations from the configuration document.
func FromConfig(opts *config.Options) *Sensorizer {
	s := &Sensorizer{FTSensors: make(map[string]FTSensor)}
	for _, e := range opts.Sensors() {
		exported := e.ExportedFrameName
		if exported == "" {
			exported = e.SensorName
		}
		s.Sensors = append(s.Sensors, Sensor{
			Name:              e.SensorName,
			Type:              e.SensorType,
			Link:              e.LinkName,
			FrameName:         e.FrameName,
			ExportFrameInURDF: e.ExportFrameInURDF,
			ExportedFrameName: exported,
			UpdateRate:        e.UpdateRate,
			Blobs:             e.SensorBlobs,
		})
	}
	for _, e := range opts.FTSensors() {
		exported := e.ExportedFrameName
		if exported == "" {
			exported = e.SensorName
		}
		s.FTSensors[e.JointName] = FTSensor{
			Name:              e.SensorName,
			Joint:             e.JointName,
			ExportFrameInURDF: e.ExportFrameInURDF,
			ExportedFrameName: exported,
		}
	}
	return s
}

// AssignSensorTransforms resolves each sensor's pose from the exported
// frame it references. A sensor whose frame was never resolved keeps an
// identity pose and is reported.
func (s *Sensorizer) AssignSensorTransforms(frames FrameResolver) {
	for i := range s.Sensors {
		sensor := &s.Sensors[i]
		pose, ok := frames.ExportedFrameTransform(sensor.FrameName)
		if !ok {
			msglog.Warnf("sensor %s references unresolved frame %s", sensor.Name, sensor.FrameName)
			continue
		}
		sensor.Transform = pose
		sensor.resolved = true
	}
}

// AssignFTTransforms resolves each force/torque sensor's pose from the
// coordinate system of its owning joint.
func (s *Sensorizer) AssignFTTransforms(frames FrameResolver) {
	for joint, ft := range s.FTSensors {
		pose, ok := frames.JointFrameTransform(joint)
		if !ok {
			msglog.Warnf("ft sensor %s references unresolved joint %s", ft.Name, joint)
			continue
		}
		ft.Transform = pose
		ft.resolved = true
		s.FTSensors[joint] = ft
	}
}

func poseAttrs(p spatial.Pose) string {
	pos := p.Position()
	rpy := p.RPY()
	return fmt.Sprintf(`xyz="%g %g %g" rpy="%g %g %g"`,
		pos[0], pos[1], pos[2], rpy[0], rpy[1], rpy[2])
}

// BuildFTXMLBlobs renders one XML fragment per force/torque sensor.
func (s *Sensorizer) BuildFTXMLBlobs() []string {
	var blobs []string
	for _, j := range sortedKeys(s.FTSensors) {
		ft := s.FTSensors[j]
		var b strings.Builder
		fmt.Fprintf(&b, "<sensor name=%q type=\"force_torque\">\n", ft.Name)
		fmt.Fprintf(&b, "  <parent joint=%q/>\n", ft.Joint)
		fmt.Fprintf(&b, "  <origin %s/>\n", poseAttrs(ft.Transform))
		b.WriteString("  <force_torque>\n    <frame>sensor</frame>\n    <measure_direction>child_to_parent</measure_direction>\n  </force_torque>\n")
		b.WriteString("</sensor>")
		blobs = append(blobs, b.String())
	}
	return blobs
}

// BuildSensorsXMLBlobs renders one XML fragment per generic sensor,
// followed by any raw per-sensor blobs from the configuration.
func (s *Sensorizer) BuildSensorsXMLBlobs() []string {
	var blobs []string
	for _, sensor := range s.Sensors {
		var b strings.Builder
		fmt.Fprintf(&b, "<sensor name=%q type=%q>\n", sensor.Name, sensor.Type)
		fmt.Fprintf(&b, "  <parent link=%q/>\n", sensor.Link)
		fmt.Fprintf(&b, "  <origin %s/>\n", poseAttrs(sensor.Transform))
		if sensor.UpdateRate > 0 {
			fmt.Fprintf(&b, "  <update_rate>%g</update_rate>\n", sensor.UpdateRate)
		}
		b.WriteString("</sensor>")
		blobs = append(blobs, b.String())
		blobs = append(blobs, sensor.Blobs...)
	}
	return blobs
}

func sortedKeys(m map[string]FTSensor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
