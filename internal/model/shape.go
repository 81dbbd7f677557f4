package model

import "github.com/banshee-data/cad2urdf/internal/spatial"

// Shape is a visual or collision geometry attached to a link. It is a
// closed set: Mesh, Box, Cylinder or Sphere.
type Shape interface {
	// Placement returns link_H_geometry.
	Placement() spatial.Pose
	shape()
}

// Mesh references an exported mesh file.
type Mesh struct {
	Filename string
	Scale    [3]float64
	Color    [4]float64
	Pose     spatial.Pose
}

// Box is an axis-aligned box of the given full side lengths.
type Box struct {
	Size [3]float64
	Pose spatial.Pose
}

// Cylinder is a z-aligned cylinder.
type Cylinder struct {
	Radius float64
	Length float64
	Pose   spatial.Pose
}

// Sphere is a sphere of the given radius.
type Sphere struct {
	Radius float64
	Pose   spatial.Pose
}

func (m Mesh) Placement() spatial.Pose     { return m.Pose }
func (b Box) Placement() spatial.Pose      { return b.Pose }
func (c Cylinder) Placement() spatial.Pose { return c.Pose }
func (s Sphere) Placement() spatial.Pose   { return s.Pose }

func (Mesh) shape()     {}
func (Box) shape()      {}
func (Cylinder) shape() {}
func (Sphere) shape()   {}
