// Package mapper holds generic helpers used by persistence mappers.
package mapper

import "fmt"

// Rows converts loaded rows into entities. Nil rows and nil results are
// dropped; a conversion error names the row that failed.
func Rows[M any, E any, ID any](rows []*M, convert func(*M) (*E, error), idOf func(*M) ID) ([]*E, error) {
	if rows == nil {
		return nil, nil
	}

	out := make([]*E, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		e, err := convert(row)
		if err != nil {
			return nil, fmt.Errorf("failed to map row %v: %w", idOf(row), err)
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}
