// Command cad2urdf converts a CAD assembly into a URDF robot
// description. The assembly source, joint limits, and output artifacts
// are all selected on the command line; everything about the produced
// model is driven by the YAML configuration file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/cad2urdf/internal/cad"
	"github.com/banshee-data/cad2urdf/internal/config"
	"github.com/banshee-data/cad2urdf/internal/convert"
	"github.com/banshee-data/cad2urdf/internal/fsutil"
	"github.com/banshee-data/cad2urdf/internal/limits"
	"github.com/banshee-data/cad2urdf/internal/mesh"
	"github.com/banshee-data/cad2urdf/internal/msglog"
	"github.com/banshee-data/cad2urdf/internal/report"
	"github.com/banshee-data/cad2urdf/internal/store"
	"github.com/banshee-data/cad2urdf/internal/urdf"
	"github.com/banshee-data/cad2urdf/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to the YAML conversion config (required)")
	limitsPath = flag.String("limits", "", "Joint limits source: a .csv file or a SQLite database")
	outDir     = flag.String("out", "out", "Output directory for the URDF and meshes")
	demo       = flag.Bool("demo", false, "Convert the built-in demo assembly instead of a live CAD session")
	reportOut  = flag.Bool("report", false, "Also write tree.html and origins.png diagnostics")
	runsDB     = flag.String("runs-db", "", "Optional SQLite database to record this run in")
	showVer    = flag.Bool("version", false, "Print version information and exit")
)

func openLimits(path string) (limits.Source, func(), error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		src, err := limits.LoadCSV(path)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}
	src, err := limits.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	return src, func() { src.Close() }, nil
}

// gazeboPoseBlob renders the model origin extension fragment.
func gazeboPoseBlob(opts *config.Options) string {
	xyz := opts.OriginXYZ()
	rpy := opts.OriginRPY()
	return fmt.Sprintf("<gazebo><pose>%g %g %g %g %g %g</pose></gazebo>",
		xyz[0], xyz[1], xyz[2], rpy[0], rpy[1], rpy[2])
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("cad2urdf %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *configPath == "" {
		log.Fatal("missing required flag: -config")
	}
	opts, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if !*demo {
		log.Fatal("no live CAD session support on this platform; use -demo")
	}
	host := cad.DemoSession()

	if *limitsPath == "" {
		log.Fatal("missing required flag: -limits")
	}
	limitsSource, closeLimits, err := openLimits(*limitsPath)
	if err != nil {
		log.Fatalf("open joint limits: %v", err)
	}
	defer closeLimits()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	// Warnings are mirrored to errors.log next to the export so a run
	// can be audited after the terminal scrollback is gone.
	errLog, err := os.Create(filepath.Join(*outDir, "errors.log"))
	if err != nil {
		log.Fatalf("create errors.log: %v", err)
	}
	defer errLog.Close()
	msglog.SetMirror(errLog)

	meshDir := filepath.Join(*outDir, "meshes")
	if err := os.MkdirAll(meshDir, 0o755); err != nil {
		log.Fatalf("create mesh dir: %v", err)
	}

	sess := convert.NewSession(opts, host, limitsSource, mesh.NewExporter(opts, meshDir))
	if err := sess.Run(); err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
	m := sess.Model()

	blobs := append([]string{}, opts.XMLBlobs()...)
	if opts.HasOrigin() {
		blobs = append(blobs, gazeboPoseBlob(opts))
	}
	blobs = append(blobs, sess.Sensorizer().BuildFTXMLBlobs()...)
	blobs = append(blobs, sess.Sensorizer().BuildSensorsXMLBlobs()...)

	// BaseLink is already a canonical link name; it must not be pushed
	// through the rename table again.
	baseLink := opts.BaseLink()
	exportOpts := urdf.Options{
		RobotName: opts.RobotName(),
		BaseLink:  baseLink,
		XMLBlobs:  blobs,
	}
	if err := urdf.Export(fsutil.OS{}, *outDir, m, exportOpts); err != nil {
		log.Fatalf("export failed: %v", err)
	}

	if *reportOut {
		if err := report.WriteAll(filepath.Join(*outDir, "report"), m, opts.RobotName(), baseLink); err != nil {
			log.Fatalf("write report: %v", err)
		}
	}

	if *runsDB != "" {
		s, err := store.Open(*runsDB)
		if err != nil {
			log.Fatalf("open runs db: %v", err)
		}
		defer s.Close()
		run := &store.ConversionRun{
			RobotName:  opts.RobotName(),
			BaseLink:   baseLink,
			ConfigPath: *configPath,
			OutputDir:  *outDir,
		}
		if err := s.RecordRun(run, m); err != nil {
			log.Fatalf("record run: %v", err)
		}
		msglog.Infof("recorded run %s", run.RunID)
	}
}
