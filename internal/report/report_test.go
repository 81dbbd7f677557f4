package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/spatial"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New("arm2")
	require.NoError(t, m.AddLink(model.Link{Name: "base_link"}))
	require.NoError(t, m.AddLink(model.Link{
		Name:     "arm_link",
		RootPose: spatial.FromXYZRPY([3]float64{0.1, 0, 0.08}, [3]float64{}),
	}))
	require.NoError(t, m.AddLink(model.Link{
		Name:     "tool_link",
		RootPose: spatial.FromXYZRPY([3]float64{0.1, 0, 0.38}, [3]float64{}),
	}))
	require.NoError(t, m.AddJoint(model.Joint{
		Name: "base_link--arm_link", Kind: model.Revolute,
		Parent: "base_link", Child: "arm_link", Axis: [3]float64{0, 0, 1},
	}))
	require.NoError(t, m.AddJoint(model.Joint{
		Name: "arm_link--tool_link", Kind: model.Fixed,
		Parent: "arm_link", Child: "tool_link",
	}))
	require.NoError(t, m.AddFrameToLink("tool_link", "ee_frame", spatial.Identity()))
	return m
}

func TestRenderTreeContainsEveryLinkOnce(t *testing.T) {
	m := testModel(t)

	var buf bytes.Buffer
	require.NoError(t, RenderTree(&buf, m, "arm2", "base_link"))
	html := buf.String()

	for _, name := range m.LinkNames() {
		assert.Equal(t, 1, strings.Count(html, name), "link %s must appear exactly once", name)
	}
	assert.Contains(t, html, "arm_link (revolute)")
	assert.Contains(t, html, "ee_frame [frame]")
}

func TestRenderTreeUnknownBaseLink(t *testing.T) {
	m := testModel(t)
	var buf bytes.Buffer
	err := RenderTree(&buf, m, "arm2", "nope")
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestWriteAll(t *testing.T) {
	original := msglog.Logf
	msglog.SetLogger(nil)
	t.Cleanup(func() { msglog.Logf = original })

	m := testModel(t)
	dir := filepath.Join(t.TempDir(), "report")
	require.NoError(t, WriteAll(dir, m, "arm2", "base_link"))

	html, err := os.ReadFile(filepath.Join(dir, "tree.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "base_link")

	png, err := os.ReadFile(filepath.Join(dir, "origins.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "origins.png must be a PNG")
}
