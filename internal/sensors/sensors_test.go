package sensors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cad2urdf/internal/config"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

const sensorYAML = `
robotName: r
root: base
sensors:
  - sensorName: imu_head
    sensorType: accelerometer
    linkName: head
    frameName: SCSYS_IMU
    exportFrameInURDF: true
    updateRate: 100
    sensorBlobs:
      - "<gazebo reference=\"imu_head\"/>"
ftSensors:
  - jointName: arm--tool
    sensorName: ft_wrist
    exportFrameInURDF: true
`

type fakeResolver struct {
	frames map[string]spatial.Pose
	joints map[string]spatial.Pose
}

func (f *fakeResolver) ExportedFrameTransform(name string) (spatial.Pose, bool) {
	p, ok := f.frames[name]
	return p, ok
}

func (f *fakeResolver) JointFrameTransform(name string) (spatial.Pose, bool) {
	p, ok := f.joints[name]
	return p, ok
}

func TestFromConfigAndAssign(t *testing.T) {
	original := msglog.Logf
	msglog.SetLogger(nil)
	defer msglog.SetLogger(original)

	opts, err := config.Parse([]byte(sensorYAML))
	require.NoError(t, err)

	s := FromConfig(opts)
	require.Len(t, s.Sensors, 1)
	require.Len(t, s.FTSensors, 1)
	// Exported frame name defaults to the sensor name.
	assert.Equal(t, "imu_head", s.Sensors[0].ExportedFrameName)

	resolver := &fakeResolver{
		frames: map[string]spatial.Pose{
			"SCSYS_IMU": spatial.FromXYZRPY([3]float64{0, 0, 0.1}, [3]float64{}),
		},
		joints: map[string]spatial.Pose{
			"arm--tool": spatial.FromXYZRPY([3]float64{0.01, 0, 0}, [3]float64{}),
		},
	}
	s.AssignSensorTransforms(resolver)
	s.AssignFTTransforms(resolver)

	assert.InDelta(t, 0.1, s.Sensors[0].Transform.Position()[2], 1e-12)
	assert.InDelta(t, 0.01, s.FTSensors["arm--tool"].Transform.Position()[0], 1e-12)
}

func TestAssignUnresolvedWarnsAndSkips(t *testing.T) {
	var messages []string
	original := msglog.Logf
	msglog.SetLogger(func(format string, v ...interface{}) {
		messages = append(messages, format)
	})
	defer msglog.SetLogger(original)

	opts, err := config.Parse([]byte(sensorYAML))
	require.NoError(t, err)
	s := FromConfig(opts)

	s.AssignSensorTransforms(&fakeResolver{})
	s.AssignFTTransforms(&fakeResolver{})

	assert.Len(t, messages, 2)
	assert.True(t, s.Sensors[0].Transform.ApproxEqual(spatial.Identity(), 0))
}

func TestXMLBlobs(t *testing.T) {
	opts, err := config.Parse([]byte(sensorYAML))
	require.NoError(t, err)
	s := FromConfig(opts)

	ft := s.BuildFTXMLBlobs()
	require.Len(t, ft, 1)
	assert.Contains(t, ft[0], `type="force_torque"`)
	assert.Contains(t, ft[0], `<parent joint="arm--tool"/>`)

	sens := s.BuildSensorsXMLBlobs()
	require.Len(t, sens, 2, "sensor element plus its raw blob")
	assert.Contains(t, sens[0], `type="accelerometer"`)
	assert.Contains(t, sens[0], "<update_rate>100</update_rate>")
	assert.True(t, strings.HasPrefix(sens[1], "<gazebo"))
}
