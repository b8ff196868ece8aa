package engine

import (
	"github.com/rotisserie/eris"
)

// ============================================================================
// MATRIX BUILDER — Row × column heatmaps
// ============================================================================
// Columns (and optionally rows) are the top-N entities by listing count with
// pinned entities forced in and placed first. Cells are per-row shares or
// counts.
// ============================================================================

// ValueMode selects what a matrix cell holds.
type ValueMode string

const (
	// ValueShare is count(row, col) / listings in row × 100.
	ValueShare ValueMode = "share"
	// ValueVenues is the unique-venue count of (row, col).
	ValueVenues ValueMode = "venues"
	// ValueListings is the raw listing count of (row, col).
	ValueListings ValueMode = "listings"
)

// MatrixSpec describes a heatmap.
type MatrixSpec struct {
	Rows       Dimension `json:"rows"`
	Cols       Dimension `json:"cols"`
	Mode       ValueMode `json:"mode"`
	TopRows    int       `json:"topRows,omitempty"` // 0 = every row
	TopCols    int       `json:"topCols,omitempty"` // 0 = every column
	PinnedRows []string  `json:"pinnedRows,omitempty"`
	PinnedCols []string  `json:"pinnedCols,omitempty"`
}

// Validate rejects unknown dimensions or modes.
func (s MatrixSpec) Validate() error {
	if _, ok := ParseDimension(string(s.Rows)); !ok {
		return eris.Errorf("matrix: unknown row dimension %q", s.Rows)
	}
	if _, ok := ParseDimension(string(s.Cols)); !ok {
		return eris.Errorf("matrix: unknown column dimension %q", s.Cols)
	}
	if s.Rows == s.Cols {
		return eris.Errorf("matrix: row and column dimension are both %q", s.Rows)
	}
	switch s.Mode {
	case ValueShare, ValueVenues, ValueListings:
	default:
		return eris.Errorf("matrix: unknown value mode %q", s.Mode)
	}
	return nil
}

// Matrix is a computed heatmap. Cells[i][j] belongs to Rows[i] × Cols[j].
type Matrix struct {
	RowDimension Dimension   `json:"rowDimension"`
	ColDimension Dimension   `json:"colDimension"`
	Mode         ValueMode   `json:"mode"`
	Rows         []string    `json:"rows"`
	Cols         []string    `json:"cols"`
	Cells        [][]float64 `json:"cells"`
	RowTotals    []int       `json:"rowTotals"`
}

// BuildMatrix computes a heatmap over records. A row without listings yields
// all-zero cells.
func BuildMatrix(records []ListingRecord, spec MatrixSpec) (*Matrix, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	rowDim, _ := ParseDimension(string(spec.Rows))
	colDim, _ := ParseDimension(string(spec.Cols))

	cols := rankNames(records, colDim, spec.TopCols, spec.PinnedCols)
	rows := rankNames(records, rowDim, spec.TopRows, spec.PinnedRows)

	m := &Matrix{
		RowDimension: rowDim,
		ColDimension: colDim,
		Mode:         spec.Mode,
		Rows:         rows,
		Cols:         cols,
		Cells:        make([][]float64, len(rows)),
		RowTotals:    make([]int, len(rows)),
	}

	rowIndex := indexOf(rows)
	colIndex := indexOf(cols)
	counts := make([][]int, len(rows))
	venues := make([][]map[string]struct{}, len(rows))
	for i := range rows {
		counts[i] = make([]int, len(cols))
		venues[i] = make([]map[string]struct{}, len(cols))
	}

	for _, r := range records {
		i, ok := rowIndex[r.Value(rowDim)]
		if !ok {
			continue
		}
		m.RowTotals[i]++
		j, ok := colIndex[r.Value(colDim)]
		if !ok {
			continue
		}
		counts[i][j]++
		if venues[i][j] == nil {
			venues[i][j] = make(map[string]struct{})
		}
		if k := r.VenueKey(); !IsSentinel(k) {
			venues[i][j][k] = struct{}{}
		}
	}

	for i := range rows {
		m.Cells[i] = make([]float64, len(cols))
		for j := range cols {
			switch spec.Mode {
			case ValueShare:
				m.Cells[i][j] = Percent(float64(counts[i][j]), float64(m.RowTotals[i]))
			case ValueVenues:
				m.Cells[i][j] = float64(len(venues[i][j]))
			case ValueListings:
				m.Cells[i][j] = float64(counts[i][j])
			}
		}
	}
	return m, nil
}

// rankNames picks the top n values of d by listing count, pinned first.
func rankNames(records []ListingRecord, d Dimension, n int, pinned []string) []string {
	ranked := RankBy(records, d, RankByListings, n, pinned...)
	names := make([]string, len(ranked))
	for i, e := range ranked {
		names[i] = e.Name
	}
	return names
}

func indexOf(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx
}

// ============================================================================
// STANDARD HEATMAPS
// ============================================================================

// VenueOwnerShare is the venue × brand-owner menu-share heatmap with the
// primary owners first.
func VenueOwnerShare(records []ListingRecord, primaryOwners []string, topVenues, topOwners int) *Matrix {
	m, _ := BuildMatrix(records, MatrixSpec{
		Rows:       DimVenue,
		Cols:       DimBrandOwner,
		Mode:       ValueShare,
		TopRows:    topVenues,
		TopCols:    topOwners,
		PinnedCols: primaryOwners,
	})
	return m
}

// RegionCompetitorPresence is the region × brand unique-venue heatmap with
// the primary brand in column 0.
func RegionCompetitorPresence(records []ListingRecord, primaryBrand string, topBrands int) *Matrix {
	var pins []string
	if primaryBrand != "" {
		pins = []string{primaryBrand}
	}
	m, _ := BuildMatrix(records, MatrixSpec{
		Rows:       DimRegion,
		Cols:       DimBrand,
		Mode:       ValueVenues,
		TopCols:    topBrands,
		PinnedCols: pins,
	})
	return m
}
