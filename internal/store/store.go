// Package store records conversion runs in a SQLite database so
// successive exports of the same assembly can be compared over time.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/cad2urdf/internal/model"
	"github.com/banshee-data/cad2urdf/internal/timeutil"
)

// ConversionRun is one recorded invocation of the converter.
type ConversionRun struct {
	RunID       string `json:"run_id"`
	RobotName   string `json:"robot_name"`
	BaseLink    string `json:"base_link"`
	ConfigPath  string `json:"config_path,omitempty"`
	OutputDir   string `json:"output_dir,omitempty"`
	LinkCount   int    `json:"link_count"`
	JointCount  int    `json:"joint_count"`
	FrameCount  int    `json:"frame_count"`
	CreatedAtNs int64  `json:"created_at_ns"`
}

// RunLink is a link snapshot belonging to a recorded run.
type RunLink struct {
	RunID string  `json:"run_id"`
	Name  string  `json:"name"`
	Mass  float64 `json:"mass"`
}

// RunJoint is a joint snapshot belonging to a recorded run.
type RunJoint struct {
	RunID  string `json:"run_id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// RunStore provides persistence for conversion runs.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the run database at path and brings
// its schema up to date.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &RunStore{db: db, clock: timeutil.RealClock{}}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) Close() error { return s.db.Close() }

// SetClock replaces the time source used for run timestamps.
func (s *RunStore) SetClock(c timeutil.Clock) { s.clock = c }

// RecordRun writes the run header and a snapshot of every link and
// joint in one transaction. If run.RunID is empty a new UUID is
// generated.
func (s *RunStore) RecordRun(run *ConversionRun, m *model.Model) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = s.clock.Now().UnixNano()
	}
	run.LinkCount = len(m.Links())
	run.JointCount = len(m.Joints())
	run.FrameCount = len(m.Frames())

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversion_runs (
			run_id, robot_name, base_link, config_path, output_dir,
			link_count, joint_count, frame_count, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID,
		run.RobotName,
		run.BaseLink,
		run.ConfigPath,
		run.OutputDir,
		run.LinkCount,
		run.JointCount,
		run.FrameCount,
		run.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	for _, l := range m.Links() {
		_, err = tx.Exec(`INSERT INTO run_links (run_id, name, mass) VALUES (?, ?, ?)`,
			run.RunID, l.Name, l.Inertia.Mass)
		if err != nil {
			return fmt.Errorf("store: insert link %s: %w", l.Name, err)
		}
	}
	for _, j := range m.Joints() {
		_, err = tx.Exec(`
			INSERT INTO run_joints (run_id, name, kind, parent, child)
			VALUES (?, ?, ?, ?, ?)
		`, run.RunID, j.Name, j.Kind.String(), j.Parent, j.Child)
		if err != nil {
			return fmt.Errorf("store: insert joint %s: %w", j.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// GetRun retrieves a run header by ID.
func (s *RunStore) GetRun(runID string) (*ConversionRun, error) {
	var run ConversionRun
	var configPath, outputDir sql.NullString

	err := s.db.QueryRow(`
		SELECT run_id, robot_name, base_link, config_path, output_dir,
		       link_count, joint_count, frame_count, created_at_ns
		FROM conversion_runs
		WHERE run_id = ?
	`, runID).Scan(
		&run.RunID,
		&run.RobotName,
		&run.BaseLink,
		&configPath,
		&outputDir,
		&run.LinkCount,
		&run.JointCount,
		&run.FrameCount,
		&run.CreatedAtNs,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	run.ConfigPath = configPath.String
	run.OutputDir = outputDir.String
	return &run, nil
}

// ListRuns returns all recorded runs, newest first.
func (s *RunStore) ListRuns() ([]ConversionRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, robot_name, base_link, config_path, output_dir,
		       link_count, joint_count, frame_count, created_at_ns
		FROM conversion_runs
		ORDER BY created_at_ns DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []ConversionRun
	for rows.Next() {
		var run ConversionRun
		var configPath, outputDir sql.NullString
		if err := rows.Scan(
			&run.RunID,
			&run.RobotName,
			&run.BaseLink,
			&configPath,
			&outputDir,
			&run.LinkCount,
			&run.JointCount,
			&run.FrameCount,
			&run.CreatedAtNs,
		); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		run.ConfigPath = configPath.String
		run.OutputDir = outputDir.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunLinks returns the link snapshots of a run, ordered by name.
func (s *RunStore) RunLinks(runID string) ([]RunLink, error) {
	rows, err := s.db.Query(`
		SELECT run_id, name, mass FROM run_links
		WHERE run_id = ? ORDER BY name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: list run links: %w", err)
	}
	defer rows.Close()

	var links []RunLink
	for rows.Next() {
		var l RunLink
		if err := rows.Scan(&l.RunID, &l.Name, &l.Mass); err != nil {
			return nil, fmt.Errorf("store: scan run link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// RunJoints returns the joint snapshots of a run, ordered by name.
func (s *RunStore) RunJoints(runID string) ([]RunJoint, error) {
	rows, err := s.db.Query(`
		SELECT run_id, name, kind, parent, child FROM run_joints
		WHERE run_id = ? ORDER BY name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: list run joints: %w", err)
	}
	defer rows.Close()

	var joints []RunJoint
	for rows.Next() {
		var j RunJoint
		if err := rows.Scan(&j.RunID, &j.Name, &j.Kind, &j.Parent, &j.Child); err != nil {
			return nil, fmt.Errorf("store: scan run joint: %w", err)
		}
		joints = append(joints, j)
	}
	return joints, rows.Err()
}
