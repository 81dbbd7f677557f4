package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/spatial"
	"github.com/banshee-data/cad2urdf/internal/timeutil"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	original := msglog.Logf
	msglog.SetLogger(nil)
	t.Cleanup(func() { msglog.Logf = original })

	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New("arm2")
	require.NoError(t, m.AddLink(model.Link{
		Name:    "base_link",
		Inertia: model.NewDiagonalInertia(4.0, [3]float64{}, [3]float64{0.1, 0.1, 0.1}),
	}))
	require.NoError(t, m.AddLink(model.Link{
		Name:    "arm_link",
		Inertia: model.NewDiagonalInertia(1.5, [3]float64{}, [3]float64{0.02, 0.02, 0.001}),
	}))
	require.NoError(t, m.AddJoint(model.Joint{
		Name: "base_link--arm_link", Kind: model.Revolute,
		Parent: "base_link", Child: "arm_link", Axis: [3]float64{0, 0, 1},
	}))
	require.NoError(t, m.AddFrameToLink("arm_link", "ee_frame", spatial.Identity()))
	return m
}

func TestRecordAndGetRun(t *testing.T) {
	s := openTestStore(t)
	m := testModel(t)

	run := &ConversionRun{
		RobotName:  "arm2",
		BaseLink:   "base_link",
		ConfigPath: "arm2.yaml",
		OutputDir:  "out",
	}
	require.NoError(t, s.RecordRun(run, m))
	require.NotEmpty(t, run.RunID)
	assert.NotZero(t, run.CreatedAtNs)

	got, err := s.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run, got)
	assert.Equal(t, 2, got.LinkCount)
	assert.Equal(t, 1, got.JointCount)
	assert.Equal(t, 1, got.FrameCount)
}

func TestRunSnapshotsReadBack(t *testing.T) {
	s := openTestStore(t)
	m := testModel(t)

	run := &ConversionRun{RobotName: "arm2", BaseLink: "base_link"}
	require.NoError(t, s.RecordRun(run, m))

	links, err := s.RunLinks(run.RunID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "arm_link", links[0].Name)
	assert.InDelta(t, 1.5, links[0].Mass, 1e-12)
	assert.Equal(t, "base_link", links[1].Name)
	assert.InDelta(t, 4.0, links[1].Mass, 1e-12)

	joints, err := s.RunJoints(run.RunID)
	require.NoError(t, err)
	require.Len(t, joints, 1)
	assert.Equal(t, RunJoint{
		RunID:  run.RunID,
		Name:   "base_link--arm_link",
		Kind:   "revolute",
		Parent: "base_link",
		Child:  "arm_link",
	}, joints[0])
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	m := testModel(t)

	first := &ConversionRun{RobotName: "arm2", BaseLink: "base_link", CreatedAtNs: 100}
	second := &ConversionRun{RobotName: "arm2", BaseLink: "base_link", CreatedAtNs: 200}
	require.NoError(t, s.RecordRun(first, m))
	require.NoError(t, s.RecordRun(second, m))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID, runs[0].RunID)
	assert.Equal(t, first.RunID, runs[1].RunID)
}

func TestRecordRunUsesInjectedClock(t *testing.T) {
	s := openTestStore(t)
	m := testModel(t)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s.SetClock(timeutil.NewMockClock(at))

	run := &ConversionRun{RobotName: "arm2", BaseLink: "base_link"}
	require.NoError(t, s.RecordRun(run, m))
	assert.Equal(t, at.UnixNano(), run.CreatedAtNs)

	got, err := s.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, at.UnixNano(), got.CreatedAtNs)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun("no-such-run")
	assert.Error(t, err)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	s := openTestStore(t)
	m := testModel(t)

	run := &ConversionRun{RunID: "fixed-id", RobotName: "arm2", BaseLink: "base_link"}
	require.NoError(t, s.RecordRun(run, m))

	dup := &ConversionRun{RunID: "fixed-id", RobotName: "arm2", BaseLink: "base_link"}
	assert.Error(t, s.RecordRun(dup, m))

	// Failed insert must not leave partial snapshots behind.
	links, err := s.RunLinks("fixed-id")
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestOpenIsIdempotent(t *testing.T) {
	original := msglog.Logf
	msglog.SetLogger(nil)
	t.Cleanup(func() { msglog.Logf = original })

	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening an already-migrated database is not an error.
	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
