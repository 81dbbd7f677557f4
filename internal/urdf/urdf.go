// Package urdf serializes an assembled model to the URDF robot
// description format. Auxiliary frames are exported the conventional
// way: as massless dummy links attached by fixed joints. Caller-provided
// XML fragments are appended verbatim before the closing tag.
package urdf

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// Revolute joints need effort/velocity attributes to form valid URDF;
// the CAD side has no such data, so a permissive bound is written.
const defaultEffortVelocity = 1e6

// Options controls one export.
type Options struct {
	RobotName string
	BaseLink  string
	XMLBlobs  []string // appended verbatim, in order
}

type origin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

func originOf(p spatial.Pose) origin {
	pos := p.Position()
	rpy := p.RPY()
	return origin{
		XYZ: fmt.Sprintf("%g %g %g", pos[0], pos[1], pos[2]),
		RPY: fmt.Sprintf("%g %g %g", rpy[0], rpy[1], rpy[2]),
	}
}

type massElem struct {
	Value float64 `xml:"value,attr"`
}

type inertiaElem struct {
	Ixx float64 `xml:"ixx,attr"`
	Ixy float64 `xml:"ixy,attr"`
	Ixz float64 `xml:"ixz,attr"`
	Iyy float64 `xml:"iyy,attr"`
	Iyz float64 `xml:"iyz,attr"`
	Izz float64 `xml:"izz,attr"`
}

type inertialElem struct {
	Origin  origin      `xml:"origin"`
	Mass    massElem    `xml:"mass"`
	Inertia inertiaElem `xml:"inertia"`
}

type meshElem struct {
	Filename string `xml:"filename,attr"`
	Scale    string `xml:"scale,attr,omitempty"`
}

type boxElem struct {
	Size string `xml:"size,attr"`
}

type cylinderElem struct {
	Radius float64 `xml:"radius,attr"`
	Length float64 `xml:"length,attr"`
}

type sphereElem struct {
	Radius float64 `xml:"radius,attr"`
}

type geometryElem struct {
	Mesh     *meshElem     `xml:"mesh,omitempty"`
	Box      *boxElem      `xml:"box,omitempty"`
	Cylinder *cylinderElem `xml:"cylinder,omitempty"`
	Sphere   *sphereElem   `xml:"sphere,omitempty"`
}

type colorElem struct {
	RGBA string `xml:"rgba,attr"`
}

type materialElem struct {
	Name  string    `xml:"name,attr"`
	Color colorElem `xml:"color"`
}

type shapeElem struct {
	Origin   origin        `xml:"origin"`
	Geometry geometryElem  `xml:"geometry"`
	Material *materialElem `xml:"material,omitempty"`
}

type linkElem struct {
	XMLName   xml.Name      `xml:"link"`
	Name      string        `xml:"name,attr"`
	Inertial  *inertialElem `xml:"inertial,omitempty"`
	Visual    []shapeElem   `xml:"visual,omitempty"`
	Collision []shapeElem   `xml:"collision,omitempty"`
}

type axisElem struct {
	XYZ string `xml:"xyz,attr"`
}

type limitElem struct {
	Lower    float64 `xml:"lower,attr"`
	Upper    float64 `xml:"upper,attr"`
	Effort   float64 `xml:"effort,attr"`
	Velocity float64 `xml:"velocity,attr"`
}

type dynamicsElem struct {
	Damping  float64 `xml:"damping,attr"`
	Friction float64 `xml:"friction,attr"`
}

type parentElem struct {
	Link string `xml:"link,attr"`
}

type childElem struct {
	Link string `xml:"link,attr"`
}

type jointElem struct {
	XMLName  xml.Name      `xml:"joint"`
	Name     string        `xml:"name,attr"`
	Type     string        `xml:"type,attr"`
	Origin   origin        `xml:"origin"`
	Parent   parentElem    `xml:"parent"`
	Child    childElem     `xml:"child"`
	Axis     *axisElem     `xml:"axis,omitempty"`
	Limit    *limitElem    `xml:"limit,omitempty"`
	Dynamics *dynamicsElem `xml:"dynamics,omitempty"`
}

func shapeOf(s model.Shape, linkName string, material bool) shapeElem {
	elem := shapeElem{Origin: originOf(s.Placement())}
	switch g := s.(type) {
	case model.Mesh:
		elem.Geometry.Mesh = &meshElem{
			Filename: g.Filename,
			Scale:    fmt.Sprintf("%g %g %g", g.Scale[0], g.Scale[1], g.Scale[2]),
		}
		if material {
			elem.Material = &materialElem{
				Name: linkName + "_material",
				Color: colorElem{RGBA: fmt.Sprintf("%g %g %g %g",
					g.Color[0], g.Color[1], g.Color[2], g.Color[3])},
			}
		}
	case model.Box:
		elem.Geometry.Box = &boxElem{Size: fmt.Sprintf("%g %g %g", g.Size[0], g.Size[1], g.Size[2])}
	case model.Cylinder:
		elem.Geometry.Cylinder = &cylinderElem{Radius: g.Radius, Length: g.Length}
	case model.Sphere:
		elem.Geometry.Sphere = &sphereElem{Radius: g.Radius}
	}
	return elem
}

func linkOf(l *model.Link) linkElem {
	elem := linkElem{Name: l.Name}
	si := l.Inertia
	elem.Inertial = &inertialElem{
		Origin: origin{
			XYZ: fmt.Sprintf("%g %g %g", si.COM[0], si.COM[1], si.COM[2]),
			RPY: "0 0 0",
		},
		Mass: massElem{Value: si.Mass},
		Inertia: inertiaElem{
			Ixx: si.At(0, 0), Ixy: si.At(0, 1), Ixz: si.At(0, 2),
			Iyy: si.At(1, 1), Iyz: si.At(1, 2), Izz: si.At(2, 2),
		},
	}
	for _, s := range l.Visuals {
		elem.Visual = append(elem.Visual, shapeOf(s, l.Name, true))
	}
	for _, s := range l.Collisions {
		elem.Collision = append(elem.Collision, shapeOf(s, l.Name, false))
	}
	return elem
}

func jointOf(j *model.Joint) jointElem {
	elem := jointElem{
		Name:   j.Name,
		Type:   j.Kind.String(),
		Origin: originOf(j.Origin),
		Parent: parentElem{Link: j.Parent},
		Child:  childElem{Link: j.Child},
	}
	if j.Kind == model.Revolute {
		elem.Axis = &axisElem{XYZ: fmt.Sprintf("%g %g %g", j.Axis[0], j.Axis[1], j.Axis[2])}
		elem.Limit = &limitElem{
			Lower:    j.Limits.Lower,
			Upper:    j.Limits.Upper,
			Effort:   defaultEffortVelocity,
			Velocity: defaultEffortVelocity,
		}
		elem.Dynamics = &dynamicsElem{Damping: j.Dynamics.Damping, Friction: j.Dynamics.Friction}
	}
	return elem
}

// Marshal validates the model and renders the URDF document.
func Marshal(m *model.Model, opts Options) ([]byte, error) {
	if opts.RobotName == "" {
		return nil, fmt.Errorf("urdf: robot name is required")
	}
	if err := m.Validate(opts.BaseLink); err != nil {
		return nil, fmt.Errorf("urdf: model is not valid: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<robot name=%q>\n", opts.RobotName)

	enc := xml.NewEncoder(&buf)
	enc.Indent("  ", "  ")

	encode := func(v interface{}) error {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("urdf: encode: %w", err)
		}
		return nil
	}

	for _, l := range m.Links() {
		if err := encode(linkOf(l)); err != nil {
			return nil, err
		}
	}
	for _, j := range m.Joints() {
		if err := encode(jointOf(j)); err != nil {
			return nil, err
		}
	}

	// Auxiliary frames become massless dummy links on fixed joints.
	for _, f := range m.Frames() {
		if err := encode(linkElem{Name: f.Name}); err != nil {
			return nil, err
		}
		if err := encode(jointElem{
			Name:   f.Name + "_fixed_joint",
			Type:   "fixed",
			Origin: originOf(f.Pose),
			Parent: parentElem{Link: f.Link},
			Child:  childElem{Link: f.Name},
		}); err != nil {
			return nil, err
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("urdf: flush: %w", err)
	}
	buf.WriteByte('\n')

	for _, blob := range opts.XMLBlobs {
		buf.WriteString(blob)
		buf.WriteByte('\n')
	}

	buf.WriteString("</robot>\n")
	return buf.Bytes(), nil
}
