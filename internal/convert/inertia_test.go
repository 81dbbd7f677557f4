package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/msglog"
)

func TestInertiaScaling(t *testing.T) {
	muteLog(t)
	s := NewSession(mustOptions(t, twoArmYAML), twoArmSession(), demoLimits(), nil)

	mp := cad.MassProperty{
		Mass: 2.0,
		COM:  [3]float64{100, 200, 300},
		Inertia: [3][3]float64{
			{1000, 10, 20},
			{10, 2000, 30},
			{20, 30, 3000},
		},
	}
	si := s.buildInertia(mp, spatial0(), "ARM_1-1")

	// Entries scale by scale[i]*scale[j]; with a uniform 0.001 scale
	// that is 1e-6 everywhere.
	assert.InDelta(t, 1000e-6, si.At(0, 0), 1e-15)
	assert.InDelta(t, 10e-6, si.At(0, 1), 1e-15)
	assert.InDelta(t, 3000e-6, si.At(2, 2), 1e-15)

	// COM scaled per-axis into meters.
	assert.InDelta(t, 0.1, si.COM[0], 1e-12)
	assert.InDelta(t, 0.2, si.COM[1], 1e-12)
	assert.InDelta(t, 0.3, si.COM[2], 1e-12)
	assert.Equal(t, 2.0, si.Mass)
}

func TestInertiaCOMReexpressedInLinkFrame(t *testing.T) {
	muteLog(t)
	s := NewSession(mustOptions(t, twoArmYAML), twoArmSession(), demoLimits(), nil)

	mp := cad.MassProperty{Mass: 1, COM: [3]float64{0, 0, 500}}
	// Link frame 0.1 m above root: the scaled 0.5 m COM lands at 0.4 m.
	rootHLink := spatialZ(0.1)
	si := s.buildInertia(mp, rootHLink, "ARM_1-1")
	assert.InDelta(t, 0.4, si.COM[2], 1e-12)
}

func TestAssignedMassOverride(t *testing.T) {
	muteLog(t)
	yaml := twoArmYAML + "assignedMasses:\n  ARM_1-1: 2.5\n"
	s := NewSession(mustOptions(t, yaml), twoArmSession(), demoLimits(), nil)

	mp := cad.MassProperty{Mass: 3.1}
	si := s.buildInertia(mp, spatial0(), "ARM_1-1")
	assert.Equal(t, 2.5, si.Mass)

	// Other links keep the CAD-reported mass.
	other := s.buildInertia(mp, spatial0(), "ARM_2-1")
	assert.Equal(t, 3.1, other.Mass)
}

func TestDiagonalInertiaOverride(t *testing.T) {
	muteLog(t)
	yaml := twoArmYAML + `
assignedInertias:
  - linkName: ARM_1-1
    xx: 0.01
    yy: 0.02
    zz: 0.03
`
	s := NewSession(mustOptions(t, yaml), twoArmSession(), demoLimits(), nil)

	mp := cad.MassProperty{
		Mass: 1,
		Inertia: [3][3]float64{
			{999, 111, 222},
			{111, 999, 333},
			{222, 333, 999},
		},
	}
	si := s.buildInertia(mp, spatial0(), "ARM_1-1")

	// The override is diagonal-only: configured diagonal, zero
	// everywhere else, regardless of the CAD-reported tensor.
	require.Equal(t, 0.01, si.At(0, 0))
	require.Equal(t, 0.02, si.At(1, 1))
	require.Equal(t, 0.03, si.At(2, 2))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j {
				assert.Zero(t, si.At(i, j))
			}
		}
	}
}

func TestInconsistentInertiaWarnsButConverts(t *testing.T) {
	var warned bool
	original := msglog.Logf
	msglog.SetLogger(func(format string, v ...interface{}) {
		if strings.Contains(format, "NOT physically consistent") {
			warned = true
		}
	})
	t.Cleanup(func() { msglog.SetLogger(original) })

	sess := twoArmSession()
	// A flat-plate tensor violating the triangle inequality.
	sess.Comps[0].Mass.Inertia = [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 5}}

	s := NewSession(mustOptions(t, twoArmYAML), sess, demoLimits(), nil)
	require.NoError(t, s.Run(), "inconsistent inertia is a warning, not an error")
	assert.True(t, warned)
}
