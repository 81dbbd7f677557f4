// Package model holds the assembled robot model: a directed tree of
// links connected by joints, with auxiliary frames attached to links.
// The model exclusively owns its links, joints and frames once built.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// Link is one rigid body of the model.
type Link struct {
	Name       string
	Inertia    SpatialInertia
	RootPose   spatial.Pose // root_H_link
	FrameName  string       // CAD coordinate system the link geometry is anchored to
	Visuals    []Shape
	Collisions []Shape
}

// JointKind distinguishes the supported joint types.
type JointKind int

const (
	Revolute JointKind = iota
	Fixed
)

func (k JointKind) String() string {
	if k == Fixed {
		return "fixed"
	}
	return "revolute"
}

// Limits is a position limit pair in radians.
type Limits struct {
	Lower float64
	Upper float64
}

// Dynamics carries the joint damping and static friction coefficients.
type Dynamics struct {
	Damping  float64
	Friction float64
}

// Joint connects a parent link to a child link.
type Joint struct {
	Name   string
	Kind   JointKind
	Parent string
	Child  string
	Origin spatial.Pose // parent_H_child

	// Revolute only.
	Axis     [3]float64
	Limits   Limits
	Dynamics Dynamics
}

// Frame is a named auxiliary frame rigidly attached to a link.
type Frame struct {
	Name string
	Link string
	Pose spatial.Pose // link_H_frame
}

// Model is the assembled robot.
type Model struct {
	Name string

	links  []*Link
	joints []*Joint
	frames []*Frame

	linkIndex  map[string]int
	jointIndex map[string]int
	frameIndex map[string]int
}

// New returns an empty model.
func New(name string) *Model {
	return &Model{
		Name:       name,
		linkIndex:  make(map[string]int),
		jointIndex: make(map[string]int),
		frameIndex: make(map[string]int),
	}
}

// AddLink inserts a link. Link names are unique.
func (m *Model) AddLink(l Link) error {
	if l.Name == "" {
		return fmt.Errorf("model: link name is empty")
	}
	if _, ok := m.linkIndex[l.Name]; ok {
		return fmt.Errorf("model: duplicate link %s", l.Name)
	}
	m.linkIndex[l.Name] = len(m.links)
	m.links = append(m.links, &l)
	return nil
}

// Link returns the named link.
func (m *Model) Link(name string) (*Link, bool) {
	i, ok := m.linkIndex[name]
	if !ok {
		return nil, false
	}
	return m.links[i], true
}

// Links returns the links in insertion order.
func (m *Model) Links() []*Link { return m.links }

// LinkNames returns the sorted set of link names.
func (m *Model) LinkNames() []string {
	names := make([]string, 0, len(m.links))
	for _, l := range m.links {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}

// AddJoint inserts a joint. Both endpoints must already exist as links
// and the joint name must be unused.
func (m *Model) AddJoint(j Joint) error {
	if j.Name == "" {
		return fmt.Errorf("model: joint name is empty")
	}
	if _, ok := m.jointIndex[j.Name]; ok {
		return fmt.Errorf("model: duplicate joint %s", j.Name)
	}
	if _, ok := m.linkIndex[j.Parent]; !ok {
		return fmt.Errorf("model: joint %s parent link %s does not exist", j.Name, j.Parent)
	}
	if _, ok := m.linkIndex[j.Child]; !ok {
		return fmt.Errorf("model: joint %s child link %s does not exist", j.Name, j.Child)
	}
	m.jointIndex[j.Name] = len(m.joints)
	m.joints = append(m.joints, &j)
	return nil
}

// Joint returns the named joint.
func (m *Model) Joint(name string) (*Joint, bool) {
	i, ok := m.jointIndex[name]
	if !ok {
		return nil, false
	}
	return m.joints[i], true
}

// Joints returns the joints in insertion order.
func (m *Model) Joints() []*Joint { return m.joints }

// JointNames returns the sorted set of joint names.
func (m *Model) JointNames() []string {
	names := make([]string, 0, len(m.joints))
	for _, j := range m.joints {
		names = append(names, j.Name)
	}
	sort.Strings(names)
	return names
}

// AddFrameToLink attaches an auxiliary frame to an existing link.
// Frame names share a namespace with links and joints.
func (m *Model) AddFrameToLink(linkName, frameName string, pose spatial.Pose) error {
	if _, ok := m.linkIndex[linkName]; !ok {
		return fmt.Errorf("model: frame %s references unknown link %s", frameName, linkName)
	}
	if _, ok := m.frameIndex[frameName]; ok {
		return fmt.Errorf("model: duplicate frame %s", frameName)
	}
	if _, ok := m.linkIndex[frameName]; ok {
		return fmt.Errorf("model: frame %s collides with a link name", frameName)
	}
	m.frameIndex[frameName] = len(m.frames)
	m.frames = append(m.frames, &Frame{Name: frameName, Link: linkName, Pose: pose})
	return nil
}

// Frames returns the auxiliary frames in insertion order.
func (m *Model) Frames() []*Frame { return m.frames }

// FramesOfLink returns the auxiliary frames attached to one link.
func (m *Model) FramesOfLink(linkName string) []*Frame {
	var out []*Frame
	for _, f := range m.frames {
		if f.Link == linkName {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks that the model is a well-formed tree rooted at
// baseLink: the base exists, every other link is reachable through
// exactly one parent joint, and there are no cycles.
func (m *Model) Validate(baseLink string) error {
	if m.Name == "" {
		return fmt.Errorf("model: robot name is empty")
	}
	if _, ok := m.linkIndex[baseLink]; !ok {
		return fmt.Errorf("model: base link %s does not exist", baseLink)
	}

	parent := make(map[string]string, len(m.links))
	for _, j := range m.joints {
		if prev, ok := parent[j.Child]; ok {
			return fmt.Errorf("model: link %s has two parent joints (via %s and %s)", j.Child, prev, j.Name)
		}
		parent[j.Child] = j.Name
	}
	if _, ok := parent[baseLink]; ok {
		return fmt.Errorf("model: base link %s has a parent joint", baseLink)
	}

	// Walk each link towards the base; a repeated visit is a cycle, a
	// dead end is a disconnected link.
	childOf := make(map[string]string, len(m.joints))
	for _, j := range m.joints {
		childOf[j.Child] = j.Parent
	}
	for _, l := range m.links {
		seen := map[string]bool{l.Name: true}
		cur := l.Name
		for cur != baseLink {
			next, ok := childOf[cur]
			if !ok {
				return fmt.Errorf("model: link %s is not connected to base link %s", l.Name, baseLink)
			}
			if seen[next] {
				return fmt.Errorf("model: cycle detected through link %s", next)
			}
			seen[next] = true
			cur = next
		}
	}
	return nil
}

// String renders a plain-text dump of the model, the analogue of the
// intermediate representation file written next to the URDF.
func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model %s: %d links, %d joints, %d frames\n", m.Name, len(m.links), len(m.joints), len(m.frames))
	for _, l := range m.links {
		pos := l.RootPose.Position()
		fmt.Fprintf(&b, "  link %s mass=%.6g com=[%.6g %.6g %.6g] root_pos=[%.6g %.6g %.6g]\n",
			l.Name, l.Inertia.Mass,
			l.Inertia.COM[0], l.Inertia.COM[1], l.Inertia.COM[2],
			pos[0], pos[1], pos[2])
	}
	for _, j := range m.joints {
		fmt.Fprintf(&b, "  joint %s (%s) %s -> %s", j.Name, j.Kind, j.Parent, j.Child)
		if j.Kind == Revolute {
			fmt.Fprintf(&b, " axis=[%.6g %.6g %.6g] limits=[%.6g %.6g]",
				j.Axis[0], j.Axis[1], j.Axis[2], j.Limits.Lower, j.Limits.Upper)
		}
		b.WriteByte('\n')
	}
	for _, f := range m.frames {
		pos := f.Pose.Position()
		fmt.Fprintf(&b, "  frame %s on %s pos=[%.6g %.6g %.6g]\n", f.Name, f.Link, pos[0], pos[1], pos[2])
	}
	return b.String()
}
