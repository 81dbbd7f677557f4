// Package report renders diagnostic artifacts for a converted model:
// an interactive HTML view of the kinematic tree and a PNG scatter of
// the link origins in the root frame.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/msglog"
)

// treeOf builds the echarts node hierarchy rooted at baseLink. Joints
// define the link topology; auxiliary frames hang off their link as
// leaf nodes.
func treeOf(m *model.Model, baseLink string) *opts.TreeData {
	children := make(map[string][]string)
	labels := make(map[string]string)
	for _, j := range m.Joints() {
		children[j.Parent] = append(children[j.Parent], j.Child)
		labels[j.Child] = fmt.Sprintf("%s (%s)", j.Child, j.Kind)
	}

	var build func(name string) *opts.TreeData
	build = func(name string) *opts.TreeData {
		node := &opts.TreeData{Name: name}
		if lbl, ok := labels[name]; ok {
			node.Name = lbl
		}
		for _, child := range children[name] {
			node.Children = append(node.Children, build(child))
		}
		for _, f := range m.FramesOfLink(name) {
			node.Children = append(node.Children, &opts.TreeData{Name: f.Name + " [frame]"})
		}
		return node
	}
	return build(baseLink)
}

// RenderTree writes an HTML page showing the kinematic tree.
func RenderTree(w io.Writer, m *model.Model, robotName, baseLink string) error {
	if _, ok := m.Link(baseLink); !ok {
		return fmt.Errorf("report: base link %q not in model", baseLink)
	}

	tree := charts.NewTree()
	tree.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: robotName + " kinematic tree",
			Width:     "1200px",
			Height:    "800px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    robotName,
			Subtitle: fmt.Sprintf("%d links, %d joints, %d frames", len(m.Links()), len(m.Joints()), len(m.Frames())),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	tree.AddSeries("kinematics", []opts.TreeData{*treeOf(m, baseLink)},
		charts.WithTreeOpts(opts.TreeChart{
			Layout:           "orthogonal",
			Orient:           "LR",
			InitialTreeDepth: -1,
		}),
	)

	if err := tree.Render(w); err != nil {
		return fmt.Errorf("report: render tree: %w", err)
	}
	return nil
}

// SaveOriginsPlot writes a PNG scatter of every link origin, projected
// on the root frame's XZ plane. Useful as a quick sanity check that
// placements landed where the assembly says they should.
func SaveOriginsPlot(path string, m *model.Model) error {
	p := plot.New()
	p.Title.Text = "Link origins (root frame, XZ)"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Z (m)"

	pts := make(plotter.XYs, 0, len(m.Links()))
	for _, l := range m.Links() {
		pos := l.RootPose.Position()
		pts = append(pts, plotter.XY{X: pos[0], Y: pos[2]})
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("report: build scatter: %w", err)
	}
	sc.Radius = vg.Points(3)
	p.Add(sc)
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// WriteAll renders both artifacts into dir.
func WriteAll(dir string, m *model.Model, robotName, baseLink string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report: create output dir %s: %w", dir, err)
	}

	htmlPath := filepath.Join(dir, "tree.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", htmlPath, err)
	}
	if err := RenderTree(f, m, robotName, baseLink); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", htmlPath, err)
	}

	pngPath := filepath.Join(dir, "origins.png")
	if err := SaveOriginsPlot(pngPath, m); err != nil {
		return err
	}
	msglog.Infof("wrote report artifacts to %s", dir)
	return nil
}
