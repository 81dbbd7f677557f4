package cad

import (
	"math"

	"github.com/banshee-data/cad2urdf/internal/spatial"
)

// DemoSession builds the small three-component arm used by demo runs
// and the integration tests. Native units are millimeters, so a scale
// of 0.001 brings the model into meters.
//
// Topology:
//
//	BASE_1-1 --AXIS_J1(revolute)--> ARM_1-1 --SCSYS_TOOL(fixed)--> TOOL_1-1
//
// ARM_1-1 additionally carries AXIS_J2 with no mating component (a
// severed joint that must be dropped) and SCSYS_EE, a user-added frame.
func DemoSession() *MockSession {
	base := (&MockComponent{
		ComponentName: "BASE_1-1",
		Mass: MassProperty{
			Mass: 5.2,
			COM:  [3]float64{0, 0, 40},
			Inertia: [3][3]float64{
				{52000, 10, 20},
				{10, 52000, 30},
				{20, 30, 26000},
			},
		},
	}).
		AddAxis("AXIS_J1", [3]float64{0, 0, 1}).
		AddFrame("CSYS", spatial.Identity())

	arm := (&MockComponent{
		ComponentName: "ARM_1-1",
		Mass: MassProperty{
			Mass: 3.1,
			COM:  [3]float64{0, 0, 150},
			Inertia: [3][3]float64{
				{31000, 0, 0},
				{0, 31000, 0},
				{0, 0, 4500},
			},
		},
	}).
		AddAxis("AXIS_J1", [3]float64{0, 0, 1}).
		AddAxis("AXIS_J2", [3]float64{0, 1, 0}).
		AddFrame("CSYS", spatial.Identity()).
		AddFrame("SCSYS_TOOL", spatial.FromXYZRPY([3]float64{0, 0, 300}, [3]float64{0, 0, 0})).
		AddFrame("SCSYS_EE", spatial.FromXYZRPY([3]float64{0, 20, 310}, [3]float64{0, math.Pi / 2, 0}))

	tool := (&MockComponent{
		ComponentName: "TOOL_1-1",
		Mass: MassProperty{
			Mass: 0.4,
			COM:  [3]float64{0, 0, 25},
			Inertia: [3][3]float64{
				{400, 0, 0},
				{0, 400, 0},
				{0, 0, 200},
			},
		},
	}).
		AddFrame("CSYS", spatial.Identity()).
		AddFrame("SCSYS_TOOL", spatial.Identity())

	return NewMockSession().
		AddComponent(base, spatial.Identity()).
		AddComponent(arm, spatial.FromXYZRPY([3]float64{0, 0, 80}, [3]float64{0, 0, 0})).
		AddComponent(tool, spatial.FromXYZRPY([3]float64{0, 0, 380}, [3]float64{0, 0, 0}))
}
