// Package cad defines the query surface the converter needs from a CAD
// host session. The real host (a proprietary parametric CAD API) lives
// outside this repository; MockSession provides a deterministic
// in-memory implementation for tests and demo runs.
package cad

import (
	"errors"

	"github.com/banshee-data/cad2urdf/internal/spatial"
)

var (
	// ErrComponentNotFound is returned when a named component cannot be
	// resolved in the open assembly.
	ErrComponentNotFound = errors.New("cad: component not found")
	// ErrFrameNotFound is returned when a component has no coordinate
	// system with the requested name.
	ErrFrameNotFound = errors.New("cad: reference frame not found")
	// ErrAxisNotFound is returned when a component has no axis with the
	// requested name.
	ErrAxisNotFound = errors.New("cad: axis not found")
)

// MassProperty carries the mass data the host reports for a solid:
// mass, center of gravity, and the 3x3 inertia tensor about the center
// of gravity, all in the component's own frame and the host's native
// units.
type MassProperty struct {
	Mass    float64
	COM     [3]float64
	Inertia [3][3]float64
}

// Component is a handle on one traversed assembly component.
type Component interface {
	// Name returns the component's full model name.
	Name() string

	// Axes lists the names of the component's rotational axes in a
	// stable order.
	Axes() []string

	// CoordSystems lists the names of the component's coordinate
	// systems in a stable order.
	CoordSystems() []string

	// FrameTransform returns the pose of the named coordinate system
	// relative to the component's default frame, in native units.
	// An empty name selects the default frame itself.
	FrameTransform(name string) (spatial.Pose, error)

	// AxisDirection returns the unit direction of the named axis in the
	// component's default frame.
	AxisDirection(name string) ([3]float64, error)

	// MassProperty returns the component's solid mass data.
	MassProperty() (MassProperty, error)

	// ExportMesh writes the component's tessellated geometry as a
	// binary STL at path, expressed relative to the named coordinate
	// system (empty selects the default frame).
	ExportMesh(path, frameName string) error
}

// Session is an open assembly in the CAD host.
type Session interface {
	// Components enumerates the assembly's component features in
	// traversal order. Non-component features are already filtered out.
	Components() ([]Component, error)

	// Placement returns the pose of the component's default frame in
	// the assembly root frame, in native units.
	Placement(c Component) (spatial.Pose, error)
}
