package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/config"
)

func newExporter(t *testing.T, yaml, outDir string) *Exporter {
	t.Helper()
	opts, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	return NewExporter(opts, outDir)
}

func TestNaming(t *testing.T) {
	e := newExporter(t, `
stringToRemoveFromMeshFileName: "-1"
forcelowercase: true
filenameformat: "package://demo/meshes/%s"
`, t.TempDir())

	assert.Equal(t, "arm_1", e.BaseName("ARM_1-1"))
	assert.Equal(t, "package://demo/meshes/arm_1.stl", e.Reference("ARM_1-1"))
}

func TestNamingDefaults(t *testing.T) {
	e := newExporter(t, "robotName: r\n", t.TempDir())
	assert.Equal(t, "ARM_1-1", e.BaseName("ARM_1-1"))
	assert.Equal(t, "ARM_1-1.stl", e.Reference("ARM_1-1"))
}

func TestNamingSanitizesHostileComponentNames(t *testing.T) {
	e := newExporter(t, "robotName: r\n", t.TempDir())
	assert.Equal(t, "etc_passwd", e.BaseName("../../etc/passwd"))
	assert.Equal(t, "ARM_LEFT", e.BaseName("ARM LEFT"))
}

func TestExportSanitizes(t *testing.T) {
	dir := t.TempDir()
	e := newExporter(t, "forcelowercase: true\n", dir)

	comp := &cad.MockComponent{
		ComponentName: "ARM_1-1",
		MeshData:      append([]byte("solid binary stl that lies about its format"), make([]byte, 64)...),
	}

	path, err := e.Export(comp, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "arm_1-1.stl"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(data), "solid"), "sanitized file must not start with 'solid'")
	assert.True(t, strings.HasPrefix(string(data), "robot"))
	// Only the leading bytes change.
	assert.Equal(t, byte(' '), data[5])
}

func TestSanitizeShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.stl")
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))
	assert.Error(t, Sanitize(path))
}

func TestExportUnknownFrame(t *testing.T) {
	e := newExporter(t, "robotName: r\n", t.TempDir())
	comp := &cad.MockComponent{ComponentName: "ARM_1-1"}
	_, err := e.Export(comp, "NO_SUCH_FRAME")
	assert.Error(t, err)
}
