package urdf

import (
	"fmt"
	"path/filepath"

	"github.com/banshee-data/cad2urdf/internal/fsutil"
	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/msglog"
)

// Export renders the model and writes model.urdf plus a plain-text
// structure dump into dir. Nothing is written unless serialization
// succeeds.
func Export(fs fsutil.FileSystem, dir string, m *model.Model, opts Options) error {
	data, err := Marshal(m, opts)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("urdf: create output dir %s: %w", dir, err)
	}
	urdfPath := filepath.Join(dir, "model.urdf")
	if err := fs.WriteFile(urdfPath, data, 0o644); err != nil {
		return fmt.Errorf("urdf: write %s: %w", urdfPath, err)
	}
	dumpPath := filepath.Join(dir, "model.txt")
	if err := fs.WriteFile(dumpPath, []byte(m.String()), 0o644); err != nil {
		return fmt.Errorf("urdf: write %s: %w", dumpPath, err)
	}
	msglog.Infof("wrote %s (%d links, %d joints, %d frames)",
		urdfPath, len(m.Links()), len(m.Joints()), len(m.Frames()))
	return nil
}
