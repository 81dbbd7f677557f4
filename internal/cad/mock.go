package cad

import (
	"fmt"
	"os"

	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// MockComponent implements Component from in-memory data.
type MockComponent struct {
	ComponentName string

	// AxisNames preserves declaration order; AxisDirs maps name to unit
	// direction in the component default frame.
	AxisNames []string
	AxisDirs  map[string][3]float64

	// FrameNames preserves declaration order; FramePoses maps name to
	// default_H_frame.
	FrameNames []string
	FramePoses map[string]spatial.Pose

	Mass MassProperty

	// MeshData is written verbatim by ExportMesh. When empty a minimal
	// binary STL stub is produced.
	MeshData []byte
}

func (m *MockComponent) Name() string          { return m.ComponentName }
func (m *MockComponent) Axes() []string        { return m.AxisNames }
func (m *MockComponent) CoordSystems() []string { return m.FrameNames }

func (m *MockComponent) FrameTransform(name string) (spatial.Pose, error) {
	if name == "" {
		return spatial.Identity(), nil
	}
	p, ok := m.FramePoses[name]
	if !ok {
		return spatial.Pose{}, fmt.Errorf("%w: %s in %s", ErrFrameNotFound, name, m.ComponentName)
	}
	return p, nil
}

func (m *MockComponent) AxisDirection(name string) ([3]float64, error) {
	d, ok := m.AxisDirs[name]
	if !ok {
		return [3]float64{}, fmt.Errorf("%w: %s in %s", ErrAxisNotFound, name, m.ComponentName)
	}
	return d, nil
}

func (m *MockComponent) MassProperty() (MassProperty, error) { return m.Mass, nil }

func (m *MockComponent) ExportMesh(path, frameName string) error {
	if _, err := m.FrameTransform(frameName); err != nil {
		return err
	}
	data := m.MeshData
	if len(data) == 0 {
		// 84-byte binary STL header + zero triangle count.
		data = make([]byte, 84)
		copy(data, "solid mock stl header padding for tests....")
	}
	return os.WriteFile(path, data, 0o644)
}

// AddAxis registers a named axis with its unit direction.
func (m *MockComponent) AddAxis(name string, dir [3]float64) *MockComponent {
	if m.AxisDirs == nil {
		m.AxisDirs = make(map[string][3]float64)
	}
	m.AxisNames = append(m.AxisNames, name)
	m.AxisDirs[name] = dir
	return m
}

// AddFrame registers a named coordinate system with its local pose.
func (m *MockComponent) AddFrame(name string, pose spatial.Pose) *MockComponent {
	if m.FramePoses == nil {
		m.FramePoses = make(map[string]spatial.Pose)
	}
	m.FrameNames = append(m.FrameNames, name)
	m.FramePoses[name] = pose
	return m
}

// MockSession implements Session over a fixed component list.
type MockSession struct {
	Comps      []*MockComponent
	Placements map[string]spatial.Pose
}

// NewMockSession builds an empty session; add components with AddComponent.
func NewMockSession() *MockSession {
	return &MockSession{Placements: make(map[string]spatial.Pose)}
}

// AddComponent appends a component with its root placement.
func (s *MockSession) AddComponent(c *MockComponent, rootHComp spatial.Pose) *MockSession {
	s.Comps = append(s.Comps, c)
	s.Placements[c.ComponentName] = rootHComp
	return s
}

func (s *MockSession) Components() ([]Component, error) {
	out := make([]Component, len(s.Comps))
	for i, c := range s.Comps {
		out[i] = c
	}
	return out, nil
}

func (s *MockSession) Placement(c Component) (spatial.Pose, error) {
	p, ok := s.Placements[c.Name()]
	if !ok {
		return spatial.Pose{}, fmt.Errorf("%w: %s", ErrComponentNotFound, c.Name())
	}
	return p, nil
}
