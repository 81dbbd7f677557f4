// Package limits provides the joint-limits tabular data source. Rows
// are keyed by final joint name with columns lower_limit, upper_limit
// (degrees), damping and friction. Limits are safety-relevant, so a
// missing row is an error the caller must treat as fatal.
package limits

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrJointNotFound is returned when the table has no row for the
// requested joint.
var ErrJointNotFound = errors.New("limits: joint not found")

// JointLimits is one row of the table. Lower and Upper are in degrees.
type JointLimits struct {
	Lower    float64
	Upper    float64
	Damping  float64
	Friction float64
}

// Source looks up limit rows by final joint name.
type Source interface {
	Limits(jointName string) (JointLimits, error)
}

// CSVSource serves limits from an in-memory CSV table. The first
// column holds the joint name; the header row names the remaining
// columns.
type CSVSource struct {
	rows map[string]JointLimits
}

// LoadCSV reads a limits table from a CSV file.
func LoadCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open limits table: %w", err)
	}
	defer f.Close()
	src, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// ParseCSV reads a limits table from r.
func ParseCSV(r io.Reader) (*CSVSource, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse limits table: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("limits table is empty")
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"lower_limit", "upper_limit", "damping", "friction"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("limits table is missing column %q", required)
		}
	}

	src := &CSVSource{rows: make(map[string]JointLimits, len(records)-1)}
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("limits table row %d has %d fields, want %d", i+2, len(rec), len(header))
		}
		row := JointLimits{}
		for name, dst := range map[string]*float64{
			"lower_limit": &row.Lower,
			"upper_limit": &row.Upper,
			"damping":     &row.Damping,
			"friction":    &row.Friction,
		} {
			v, err := strconv.ParseFloat(rec[col[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("limits table row %d column %s: %w", i+2, name, err)
			}
			*dst = v
		}
		src.rows[rec[0]] = row
	}
	return src, nil
}

// Limits returns the row for jointName.
func (s *CSVSource) Limits(jointName string) (JointLimits, error) {
	row, ok := s.rows[jointName]
	if !ok {
		return JointLimits{}, fmt.Errorf("%w: %s", ErrJointNotFound, jointName)
	}
	return row, nil
}
