// Package config loads and resolves the YAML conversion configuration.
// Absent keys fall back to defaults; only robotName and a resolvable
// base link are required, and only at export time.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/cad2urdf/internal/msglog"
)

// RootLinkSentinel is the legacy rename key consulted for the base link
// when the `root` option is absent.
const RootLinkSentinel = "SIM_ECUB_1-1_ROOT_LINK"

// LinkFrame binds a link to the coordinate system its geometry and
// meshes are anchored to.
type LinkFrame struct {
	LinkName  string `yaml:"linkName"`
	FrameName string `yaml:"frameName"`
}

// AssignedInertia overrides the diagonal of a link's inertia tensor.
type AssignedInertia struct {
	LinkName string  `yaml:"linkName"`
	XX       float64 `yaml:"xx"`
	YY       float64 `yaml:"yy"`
	ZZ       float64 `yaml:"zz"`
}

// ShapeSpec is the raw geometric shape description from the document.
// Which fields are meaningful depends on Shape (box: Size; cylinder:
// Radius+Length; sphere: Radius).
type ShapeSpec struct {
	Shape  string    `yaml:"shape"`
	Size   []float64 `yaml:"size"`
	Radius float64   `yaml:"radius"`
	Length float64   `yaml:"length"`
	Origin []float64 `yaml:"origin"`
}

// CollisionGeometry assigns an analytic collision shape to a link in
// place of its exported mesh.
type CollisionGeometry struct {
	LinkName       string    `yaml:"linkName"`
	GeometricShape ShapeSpec `yaml:"geometricShape"`
}

// ExportedFrame is an explicit additional-frame export request.
type ExportedFrame struct {
	FrameName                string    `yaml:"frameName"`
	FrameReferenceLink       string    `yaml:"frameReferenceLink"`
	ExportedFrameName        string    `yaml:"exportedFrameName"`
	AdditionalTransformation []float64 `yaml:"additionalTransformation"`
}

// SensorEntry declares a generic sensor attached to a link. FrameName
// names the exported frame the sensor pose is resolved from.
type SensorEntry struct {
	SensorName        string   `yaml:"sensorName"`
	SensorType        string   `yaml:"sensorType"`
	LinkName          string   `yaml:"linkName"`
	FrameName         string   `yaml:"frameName"`
	ExportFrameInURDF bool     `yaml:"exportFrameInURDF"`
	ExportedFrameName string   `yaml:"exportedFrameName"`
	UpdateRate        float64  `yaml:"updateRate"`
	SensorBlobs       []string `yaml:"sensorBlobs"`
}

// FTSensorEntry declares a force/torque sensor on a fixed joint.
type FTSensorEntry struct {
	JointName         string `yaml:"jointName"`
	SensorName        string `yaml:"sensorName"`
	ExportFrameInURDF bool   `yaml:"exportFrameInURDF"`
	ExportedFrameName string `yaml:"exportedFrameName"`
}

// Document mirrors the top-level YAML configuration keys.
type Document struct {
	RobotName                      string                `yaml:"robotName"`
	Root                           string                `yaml:"root"`
	Scale                          []float64             `yaml:"scale"`
	OriginXYZ                      []float64             `yaml:"originXYZ"`
	OriginRPY                      []float64             `yaml:"originRPY"`
	ExportAllUseradded             bool                  `yaml:"exportAllUseradded"`
	Rename                         map[string]string     `yaml:"rename"`
	LinkFrames                     []LinkFrame           `yaml:"linkFrames"`
	AssignedMasses                 map[string]float64    `yaml:"assignedMasses"`
	AssignedInertias               []AssignedInertia     `yaml:"assignedInertias"`
	AssignedCollisionGeometry      []CollisionGeometry   `yaml:"assignedCollisionGeometry"`
	ExportedFrames                 []ExportedFrame       `yaml:"exportedFrames"`
	ReverseRotationAxis            string                `yaml:"reverseRotationAxis"`
	XMLBlobs                       []string              `yaml:"XMLBlobs"`
	StringToRemoveFromMeshFileName string                `yaml:"stringToRemoveFromMeshFileName"`
	ForceLowercase                 bool                  `yaml:"forcelowercase"`
	FilenameFormat                 string                `yaml:"filenameformat"`
	AssignedColors                 map[string][]float64  `yaml:"assignedColors"`
	Sensors                        []SensorEntry         `yaml:"sensors"`
	FTSensors                      []FTSensorEntry       `yaml:"ftSensors"`
}

// Options is the resolved view of a loaded Document.
type Options struct {
	doc Document
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses a configuration document from raw YAML.
func Parse(data []byte) (*Options, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	o := &Options{doc: doc}
	if err := o.checkVectors(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Options) checkVectors() error {
	check3 := func(key string, v []float64) error {
		if v != nil && len(v) != 3 {
			return fmt.Errorf("config: %s must have 3 entries, got %d", key, len(v))
		}
		return nil
	}
	if err := check3("scale", o.doc.Scale); err != nil {
		return err
	}
	if err := check3("originXYZ", o.doc.OriginXYZ); err != nil {
		return err
	}
	if err := check3("originRPY", o.doc.OriginRPY); err != nil {
		return err
	}
	for name, c := range o.doc.AssignedColors {
		if len(c) != 4 {
			return fmt.Errorf("config: assignedColors[%s] must have 4 entries (RGBA), got %d", name, len(c))
		}
	}
	for _, ef := range o.doc.ExportedFrames {
		if ef.AdditionalTransformation != nil && len(ef.AdditionalTransformation) != 6 {
			return fmt.Errorf("config: exportedFrames[%s] additionalTransformation must have 6 entries, got %d",
				ef.FrameName, len(ef.AdditionalTransformation))
		}
	}
	return nil
}

// Rename maps a CAD element name to its canonical model name. A name
// with no rename entry is returned unchanged, with a warning, so
// partially-renamed assemblies still convert.
func (o *Options) Rename(name string) string {
	if renamed, ok := o.doc.Rename[name]; ok {
		return renamed
	}
	msglog.Warnf("element %s is not present in the rename table", name)
	return name
}

// Scale returns the per-axis unit scale, defaulting to 1.0 each.
func (o *Options) Scale() [3]float64 {
	if o.doc.Scale == nil {
		return [3]float64{1, 1, 1}
	}
	return [3]float64{o.doc.Scale[0], o.doc.Scale[1], o.doc.Scale[2]}
}

// OriginXYZ returns the model origin position (for the pose blob).
func (o *Options) OriginXYZ() [3]float64 { return vec3(o.doc.OriginXYZ) }

// OriginRPY returns the model origin orientation (for the pose blob).
func (o *Options) OriginRPY() [3]float64 { return vec3(o.doc.OriginRPY) }

// HasOrigin reports whether a model origin was configured at all. The
// pose blob is only emitted when it was.
func (o *Options) HasOrigin() bool {
	return o.doc.OriginXYZ != nil || o.doc.OriginRPY != nil
}

func vec3(v []float64) [3]float64 {
	if v == nil {
		return [3]float64{}
	}
	return [3]float64{v[0], v[1], v[2]}
}

// ExportAllUseradded reports whether user-added coordinate systems are
// blanket-exported as additional frames.
func (o *Options) ExportAllUseradded() bool { return o.doc.ExportAllUseradded }

// LinkFrameName returns the configured reference frame for a link, or
// empty when the link uses its component's default frame.
func (o *Options) LinkFrameName(linkName string) string {
	for _, lf := range o.doc.LinkFrames {
		if lf.LinkName == linkName {
			return lf.FrameName
		}
	}
	return ""
}

// AssignedMass returns a configured mass override for the link.
func (o *Options) AssignedMass(linkName string) (float64, bool) {
	m, ok := o.doc.AssignedMasses[linkName]
	return m, ok
}

// AssignedInertia returns a configured diagonal-inertia override
// (xx, yy, zz) for the link.
func (o *Options) AssignedInertia(linkName string) ([3]float64, bool) {
	for _, ai := range o.doc.AssignedInertias {
		if ai.LinkName == linkName {
			return [3]float64{ai.XX, ai.YY, ai.ZZ}, true
		}
	}
	return [3]float64{}, false
}

// CollisionGeometry returns the configured collision shape for a link.
func (o *Options) CollisionGeometry(linkName string) (ShapeSpec, bool) {
	for _, cg := range o.doc.AssignedCollisionGeometry {
		if cg.LinkName == linkName {
			return cg.GeometricShape, true
		}
	}
	return ShapeSpec{}, false
}

// AssignedColor returns the RGBA color for a link, defaulting to a
// mid grey.
func (o *Options) AssignedColor(linkName string) [4]float64 {
	if c, ok := o.doc.AssignedColors[linkName]; ok {
		return [4]float64{c[0], c[1], c[2], c[3]}
	}
	return [4]float64{0.5, 0.5, 0.5, 1}
}

// ExportedFrames returns the explicit exported-frame entries.
func (o *Options) ExportedFrames() []ExportedFrame { return o.doc.ExportedFrames }

// ReverseRotationAxis reports whether the named joint's rotation axis
// must be reversed. The configured value is searched for the joint name
// as a substring.
func (o *Options) ReverseRotationAxis(jointName string) bool {
	if o.doc.ReverseRotationAxis == "" || jointName == "" {
		return false
	}
	return strings.Contains(o.doc.ReverseRotationAxis, jointName)
}

// RobotName returns the exported robot name.
func (o *Options) RobotName() string { return o.doc.RobotName }

// BaseLink resolves the model's base link: the `root` option when set,
// otherwise the rename of the legacy root-link sentinel key.
func (o *Options) BaseLink() string {
	if o.doc.Root != "" {
		return o.doc.Root
	}
	return o.doc.Rename[RootLinkSentinel]
}

// XMLBlobs returns the raw markup fragments to append to the export.
func (o *Options) XMLBlobs() []string { return o.doc.XMLBlobs }

// MeshNameTrim returns the substring stripped from mesh file names.
func (o *Options) MeshNameTrim() string { return o.doc.StringToRemoveFromMeshFileName }

// ForceLowercase reports whether mesh file names are lowercased.
func (o *Options) ForceLowercase() bool { return o.doc.ForceLowercase }

// FilenameFormat returns the mesh reference template. It contains a
// single %s placeholder for the mesh base name; empty means "%s".
func (o *Options) FilenameFormat() string {
	if o.doc.FilenameFormat == "" {
		return "%s"
	}
	return o.doc.FilenameFormat
}

// Sensors returns the declared generic sensors.
func (o *Options) Sensors() []SensorEntry { return o.doc.Sensors }

// FTSensors returns the declared force/torque sensors.
func (o *Options) FTSensors() []FTSensorEntry { return o.doc.FTSensors }

// Validate checks the options that are required for export.
func (o *Options) Validate() error {
	if o.doc.RobotName == "" {
		return fmt.Errorf("config: robotName is required")
	}
	if o.BaseLink() == "" {
		return fmt.Errorf("config: base link is required (set root, or rename[%s])", RootLinkSentinel)
	}
	return nil
}
