package convert

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/config"
	"github.com/banshee-data/cad2urdf/internal/limits"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

func spatial0() spatial.Pose { return spatial.Identity() }

// spatialZ is a pure translation of z millimeters along the root z axis.
func spatialZ(z float64) spatial.Pose {
	return spatial.FromXYZRPY([3]float64{0, 0, z}, [3]float64{})
}

// stubLimits is an in-memory limits source for tests.
type stubLimits map[string]limits.JointLimits

func (s stubLimits) Limits(name string) (limits.JointLimits, error) {
	row, ok := s[name]
	if !ok {
		return limits.JointLimits{}, fmt.Errorf("%w: %s", limits.ErrJointNotFound, name)
	}
	return row, nil
}

func mustOptions(t *testing.T, yaml string) *config.Options {
	t.Helper()
	o, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	return o
}

func muteLog(t *testing.T) {
	t.Helper()
	original := msglog.Logf
	msglog.SetLogger(nil)
	t.Cleanup(func() { msglog.SetLogger(original) })
}

// twoArmSession builds a two-component assembly where ARM_1-1 and
// ARM_2-1 share axis AXIS_J1 across non-adjacent traversal.
func twoArmSession() *cad.MockSession {
	arm1 := (&cad.MockComponent{
		ComponentName: "ARM_1-1",
		Mass:          cad.MassProperty{Mass: 3.1, COM: [3]float64{0, 0, 50}},
	}).
		AddAxis("AXIS_J1", [3]float64{0, 0, 1}).
		AddFrame("CSYS", spatial0())

	arm2 := (&cad.MockComponent{
		ComponentName: "ARM_2-1",
		Mass:          cad.MassProperty{Mass: 1.2, COM: [3]float64{0, 0, 30}},
	}).
		AddAxis("AXIS_J1", [3]float64{0, 0, 1}).
		AddFrame("CSYS", spatial0()).
		AddFrame("XSCSYS_TOOL", spatial0())

	return cad.NewMockSession().
		AddComponent(arm1, spatial0()).
		AddComponent(arm2, spatialZ(100))
}

const twoArmYAML = `
robotName: two_arm
root: ARM_1-1
scale: [0.001, 0.001, 0.001]
rename: {}
`

func demoLimits() stubLimits {
	return stubLimits{
		"ARM_1-1--ARM_2-1": {Lower: -170, Upper: 170, Damping: 0.1, Friction: 0.02},
	}
}

// demoYAML drives cad.DemoSession with identity renames.
const demoYAML = `
robotName: demo_arm
root: BASE_1-1
scale: [0.001, 0.001, 0.001]
`

func demoSessionLimits() stubLimits {
	return stubLimits{
		"BASE_1-1--ARM_1-1": {Lower: -120, Upper: 120, Damping: 0.2, Friction: 0.05},
	}
}
