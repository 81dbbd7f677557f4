// Package mesh exports per-link geometry through the CAD session and
// sanitizes the resulting binary STL files. Binary STLs that happen to
// start with the bytes "solid" are misread as ASCII STL by common
// parsers, so the first bytes of every exported file are rewritten.
package mesh

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/config"
	"github.com/banshee-data/cad2urdf/internal/security"
)

const fileExtension = ".stl"

// header is written over the first bytes of every exported binary STL.
// Anything that does not spell "solid" will do.
var header = []byte("robot")

// Exporter writes link meshes into an output directory and derives the
// mesh reference names embedded in the model.
type Exporter struct {
	outDir    string
	trim      string
	lowercase bool
	format    string // single %s placeholder
}

// NewExporter builds an Exporter from the configured naming options.
func NewExporter(opts *config.Options, outDir string) *Exporter {
	return &Exporter{
		outDir:    outDir,
		trim:      opts.MeshNameTrim(),
		lowercase: opts.ForceLowercase(),
		format:    opts.FilenameFormat(),
	}
}

// BaseName derives the mesh file base name from a component name,
// applying the configured trim substring and lowercasing. Component
// names come from the CAD assembly, so the result is sanitized before
// it is allowed anywhere near a path.
func (e *Exporter) BaseName(componentName string) string {
	name := componentName
	if e.trim != "" {
		name = strings.Replace(name, e.trim, "", 1)
	}
	if e.lowercase {
		name = strings.ToLower(name)
	}
	return security.SanitizeFilename(name)
}

// Reference returns the mesh reference recorded in the model for a
// component, the configured filename template applied to the base name.
func (e *Exporter) Reference(componentName string) string {
	return fmt.Sprintf(e.format, e.BaseName(componentName)) + fileExtension
}

// Export writes the component's mesh relative to frameName, sanitizes
// it, and returns the absolute path of the written file.
func (e *Exporter) Export(c cad.Component, frameName string) (string, error) {
	path := filepath.Join(e.outDir, e.BaseName(c.Name())+fileExtension)
	if err := security.ValidatePathWithinDirectory(path, e.outDir); err != nil {
		return "", fmt.Errorf("export mesh for %s: %w", c.Name(), err)
	}
	if err := c.ExportMesh(path, frameName); err != nil {
		return "", fmt.Errorf("export mesh for %s: %w", c.Name(), err)
	}
	if err := Sanitize(path); err != nil {
		return "", fmt.Errorf("sanitize mesh for %s: %w", c.Name(), err)
	}
	return path, nil
}

// Sanitize rewrites the leading bytes of a binary STL in place so the
// file can never be mistaken for the ASCII "solid ..." format.
func Sanitize(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	if info.Size() < int64(len(header)) {
		f.Close()
		return fmt.Errorf("mesh file %s is too short (%d bytes)", path, info.Size())
	}
	if _, err := f.WriteAt(header, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
