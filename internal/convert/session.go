// Package convert drives one CAD-assembly-to-robot-model conversion.
// A Session owns all per-run state: the link table, the joint-candidate
// table, the exported-frame table and the model under construction. A
// fresh Session is built for every run; it is not safe for concurrent
// use.
package convert

import (
	"fmt"

	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/config"
	"github.com/banshee-data/cad2urdf/internal/limits"
	"github.com/banshee-data/cad2urdf/internal/mesh"
	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/sensors"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// linkInfo is the per-component record kept during traversal, keyed by
// the raw CAD component name.
type linkInfo struct {
	urdfName  string
	component cad.Component
	rootPose  spatial.Pose // root_H_linkFrame, scaled
	frameName string       // CAD reference frame the link is anchored to
}

// Session is the state of one conversion run.
type Session struct {
	opts   *config.Options
	host   cad.Session
	limits limits.Source
	scale  [3]float64

	meshes     *mesh.Exporter // nil disables mesh export
	sensorizer *sensors.Sensorizer

	links       map[string]*linkInfo
	linkOrder   []string
	candidates  map[string]*jointCandidate
	candOrder   []string
	exported    map[string]*exportedFrame
	exportOrder []string
	jointFrames map[string]spatial.Pose // final joint name -> parentLinkFrame_H_jointCsys

	model *model.Model
}

// NewSession builds the state for one run. meshExporter may be nil when
// mesh export is disabled.
func NewSession(opts *config.Options, host cad.Session, limitsSource limits.Source, meshExporter *mesh.Exporter) *Session {
	return &Session{
		opts:        opts,
		host:        host,
		limits:      limitsSource,
		scale:       opts.Scale(),
		meshes:      meshExporter,
		sensorizer:  sensors.FromConfig(opts),
		links:       make(map[string]*linkInfo),
		candidates:  make(map[string]*jointCandidate),
		exported:    make(map[string]*exportedFrame),
		jointFrames: make(map[string]spatial.Pose),
		model:       model.New(opts.RobotName()),
	}
}

// Model returns the model under construction. It is fully assembled
// only after Run returns without error.
func (s *Session) Model() *model.Model { return s.model }

// Sensorizer returns the run's sensor subsystem.
func (s *Session) Sensorizer() *sensors.Sensorizer { return s.sensorizer }

// Run executes the conversion: traverse components building links and
// candidate tables, assemble the joint set, project auxiliary frames
// and sensors.
func (s *Session) Run() error {
	if err := s.opts.Validate(); err != nil {
		return err
	}

	comps, err := s.host.Components()
	if err != nil {
		return fmt.Errorf("enumerate assembly: %w", err)
	}
	if len(comps) == 0 {
		return fmt.Errorf("assembly has no component features")
	}

	s.readExportedFramesFromConfig()

	for _, c := range comps {
		if err := s.processComponent(c); err != nil {
			return err
		}
	}

	if err := s.assembleJoints(); err != nil {
		return err
	}

	s.sensorizer.AssignSensorTransforms(s)
	s.sensorizer.AssignFTTransforms(s)
	s.attachSensorFrames()
	s.attachExportedFrames()

	return nil
}

// processComponent builds the link for one traversed component and
// feeds the joint and exported-frame discovery passes.
func (s *Session) processComponent(c cad.Component) error {
	linkName := c.Name()
	urdfName := s.opts.Rename(linkName)
	frameName := s.opts.LinkFrameName(urdfName)

	rootHLink, err := s.RootTransform(c, frameName)
	if err != nil {
		// An unresolvable link frame poisons every pose derived from
		// it; abort before the model is built on inconsistent data.
		return fmt.Errorf("resolve link frame for %s: %w", linkName, err)
	}

	mp, err := c.MassProperty()
	if err != nil {
		return fmt.Errorf("mass properties for %s: %w", linkName, err)
	}

	inertia := s.buildInertia(mp, rootHLink, urdfName)
	if !inertia.PhysicallyConsistent() {
		msglog.Warnf("link %s is NOT physically consistent", urdfName)
	}

	link := model.Link{
		Name:      urdfName,
		Inertia:   inertia,
		RootPose:  rootHLink,
		FrameName: frameName,
	}

	s.links[linkName] = &linkInfo{
		urdfName:  urdfName,
		component: c,
		rootPose:  rootHLink,
		frameName: frameName,
	}
	s.linkOrder = append(s.linkOrder, linkName)

	s.discoverJoints(c)
	s.discoverExportedFrames(c)

	s.addShapes(&link, c)

	if err := s.model.AddLink(link); err != nil {
		return err
	}
	return nil
}

// addShapes exports the component mesh and attaches the visual and
// collision geometry to the link.
func (s *Session) addShapes(link *model.Link, c cad.Component) {
	if s.meshes == nil {
		return
	}
	if _, err := s.meshes.Export(c, link.FrameName); err != nil {
		msglog.Warnf("mesh export failed for %s: %v", link.Name, err)
		return
	}
	visual := model.Mesh{
		Filename: s.meshes.Reference(c.Name()),
		Scale:    s.scale,
		Color:    s.opts.AssignedColor(link.Name),
	}
	link.Visuals = append(link.Visuals, visual)

	if spec, ok := s.opts.CollisionGeometry(link.Name); ok {
		shape, err := shapeFromSpec(spec)
		if err != nil {
			msglog.Warnf("collision geometry for %s: %v", link.Name, err)
			link.Collisions = append(link.Collisions, visual)
			return
		}
		link.Collisions = append(link.Collisions, shape)
		return
	}
	link.Collisions = append(link.Collisions, visual)
}

// shapeFromSpec maps a configured geometric shape onto the model's
// shape variants.
func shapeFromSpec(spec config.ShapeSpec) (model.Shape, error) {
	var pose spatial.Pose
	if spec.Origin != nil {
		if len(spec.Origin) != 6 {
			return nil, fmt.Errorf("shape origin must have 6 entries, got %d", len(spec.Origin))
		}
		pose = spatial.FromXYZRPY(
			[3]float64{spec.Origin[0], spec.Origin[1], spec.Origin[2]},
			[3]float64{spec.Origin[3], spec.Origin[4], spec.Origin[5]},
		)
	}
	switch spec.Shape {
	case "box":
		if len(spec.Size) != 3 {
			return nil, fmt.Errorf("box size must have 3 entries, got %d", len(spec.Size))
		}
		return model.Box{Size: [3]float64{spec.Size[0], spec.Size[1], spec.Size[2]}, Pose: pose}, nil
	case "cylinder":
		return model.Cylinder{Radius: spec.Radius, Length: spec.Length, Pose: pose}, nil
	case "sphere":
		return model.Sphere{Radius: spec.Radius, Pose: pose}, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", spec.Shape)
	}
}
