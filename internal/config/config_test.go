package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cad2urdf/internal/msglog"
)

const demoYAML = `
robotName: demo_arm
scale: [0.001, 0.001, 0.001]
originXYZ: [0, 0, 0.1]
originRPY: [0, 0, 1.5708]
exportAllUseradded: true
rename:
  BASE_1-1: base_link
  ARM_1-1: arm
  BASE_1-1--ARM_1-1: joint_1
  SIM_ECUB_1-1_ROOT_LINK: base_link
linkFrames:
  - linkName: arm
    frameName: CSYS
assignedMasses:
  ARM_1-1: 2.5
assignedInertias:
  - linkName: arm
    xx: 0.01
    yy: 0.02
    zz: 0.03
assignedCollisionGeometry:
  - linkName: arm
    geometricShape:
      shape: cylinder
      radius: 0.04
      length: 0.3
      origin: [0, 0, 0.15, 0, 0, 0]
exportedFrames:
  - frameName: SCSYS_EE
    frameReferenceLink: arm
    exportedFrameName: ee_frame
    additionalTransformation: [0, 0, 0.01, 0, 0, 0]
reverseRotationAxis: joint_1
XMLBlobs:
  - "<gazebo><plugin name=\"p\"/></gazebo>"
stringToRemoveFromMeshFileName: "-1"
forcelowercase: true
filenameformat: "package://demo/meshes/%s"
assignedColors:
  arm: [1, 0, 0, 1]
`

func load(t *testing.T) *Options {
	t.Helper()
	o, err := Parse([]byte(demoYAML))
	require.NoError(t, err)
	return o
}

func TestRename(t *testing.T) {
	original := msglog.Logf
	msglog.SetLogger(nil)
	defer msglog.SetLogger(original)

	o := load(t)
	assert.Equal(t, "base_link", o.Rename("BASE_1-1"))
	// Absent names fall back to identity with a warning.
	assert.Equal(t, "UNKNOWN-7", o.Rename("UNKNOWN-7"))
	// Renaming an already-canonical name with its own entry is a no-op
	// round trip.
	assert.Equal(t, "joint_1", o.Rename("BASE_1-1--ARM_1-1"))
}

func TestDefaults(t *testing.T) {
	o, err := Parse([]byte("robotName: r\nroot: base\n"))
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, 1, 1}, o.Scale())
	assert.Equal(t, [3]float64{}, o.OriginXYZ())
	assert.False(t, o.ExportAllUseradded())
	assert.Equal(t, "%s", o.FilenameFormat())
	assert.Equal(t, [4]float64{0.5, 0.5, 0.5, 1}, o.AssignedColor("anything"))
	_, ok := o.AssignedMass("anything")
	assert.False(t, ok)
	assert.NoError(t, o.Validate())
}

func TestTypedAccessors(t *testing.T) {
	o := load(t)

	assert.Equal(t, [3]float64{0.001, 0.001, 0.001}, o.Scale())
	assert.Equal(t, "CSYS", o.LinkFrameName("arm"))
	assert.Equal(t, "", o.LinkFrameName("base_link"))

	m, ok := o.AssignedMass("ARM_1-1")
	require.True(t, ok)
	assert.Equal(t, 2.5, m)

	d, ok := o.AssignedInertia("arm")
	require.True(t, ok)
	assert.Equal(t, [3]float64{0.01, 0.02, 0.03}, d)

	cg, ok := o.CollisionGeometry("arm")
	require.True(t, ok)
	assert.Equal(t, "cylinder", cg.Shape)
	assert.Equal(t, 0.04, cg.Radius)

	assert.True(t, o.ReverseRotationAxis("joint_1"))
	assert.False(t, o.ReverseRotationAxis("joint_2"))
	assert.False(t, o.ReverseRotationAxis(""))

	assert.Equal(t, [4]float64{1, 0, 0, 1}, o.AssignedColor("arm"))
}

func TestBaseLinkFallback(t *testing.T) {
	o := load(t)
	// No root key: falls back to the rename of the sentinel.
	assert.Equal(t, "base_link", o.BaseLink())

	o2, err := Parse([]byte("robotName: r\nroot: pelvis\n"))
	require.NoError(t, err)
	assert.Equal(t, "pelvis", o2.BaseLink())
}

func TestBaseLinkIsCanonical(t *testing.T) {
	// BaseLink already resolves to a final link name; callers use it
	// as-is. A rename entry that happens to share the canonical name
	// must not remap it.
	o, err := Parse([]byte(`
robotName: r
root: pelvis
rename:
  pelvis: somewhere_else
`))
	require.NoError(t, err)
	assert.Equal(t, "pelvis", o.BaseLink())
}

func TestValidateRequiredKeys(t *testing.T) {
	o, err := Parse([]byte("root: base\n"))
	require.NoError(t, err)
	assert.Error(t, o.Validate(), "missing robotName")

	o2, err := Parse([]byte("robotName: r\n"))
	require.NoError(t, err)
	assert.Error(t, o2.Validate(), "unresolvable base link")
}

func TestMalformedVectors(t *testing.T) {
	_, err := Parse([]byte("scale: [1, 2]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("assignedColors:\n  arm: [1, 0, 0]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("exportedFrames:\n  - frameName: f\n    additionalTransformation: [1]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte(":\tnot yaml"))
	assert.Error(t, err)
}
