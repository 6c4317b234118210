package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryGrid is an in-process Grid that stands in for a worksheet in tests.
type MemoryGrid struct {
	mu     sync.Mutex
	values [][]string
	Writes int
}

func NewMemoryGrid(values [][]string) *MemoryGrid {
	g := &MemoryGrid{}
	for _, row := range values {
		g.values = append(g.values, append([]string(nil), row...))
	}
	return g
}

func (g *MemoryGrid) GetAllValues(ctx context.Context) ([][]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.copyRows(0, len(g.values)), nil
}

// GetRange supports whole-row ranges such as "A1:B16".
func (g *MemoryGrid) GetRange(ctx context.Context, a1 string) ([][]string, error) {
	var startCol, endCol string
	var startRow, endRow int
	parts := strings.Split(a1, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("unsupported range %q", a1)
	}
	if _, err := fmt.Sscanf(parts[0], "%1s%d", &startCol, &startRow); err != nil {
		return nil, fmt.Errorf("unsupported range %q: %w", a1, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%1s%d", &endCol, &endRow); err != nil {
		return nil, fmt.Errorf("unsupported range %q: %w", a1, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	from := startRow - 1
	to := endRow
	if to > len(g.values) {
		to = len(g.values)
	}
	if from >= to {
		return nil, nil
	}
	rows := g.copyRows(from, to)
	width := int(endCol[0]-startCol[0]) + 1
	first := int(startCol[0] - 'A')
	for i, row := range rows {
		if first >= len(row) {
			rows[i] = nil
			continue
		}
		last := first + width
		if last > len(row) {
			last = len(row)
		}
		rows[i] = row[first:last]
	}
	return rows, nil
}

func (g *MemoryGrid) UpdateCell(ctx context.Context, row, col int, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensure(row, col)
	g.values[row-1][col-1] = value
	g.Writes++
	return nil
}

func (g *MemoryGrid) UpdateRow(ctx context.Context, row int, values []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensure(row, len(values))
	copy(g.values[row-1], values)
	g.Writes++
	return nil
}

func (g *MemoryGrid) AppendRow(ctx context.Context, values []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values = append(g.values, append([]string(nil), values...))
	g.Writes++
	return nil
}

// Cell returns the value at a 1-based position, or "" when out of range.
func (g *MemoryGrid) Cell(row, col int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if row < 1 || row > len(g.values) || col < 1 || col > len(g.values[row-1]) {
		return ""
	}
	return g.values[row-1][col-1]
}

func (g *MemoryGrid) ensure(row, col int) {
	for len(g.values) < row {
		g.values = append(g.values, nil)
	}
	for len(g.values[row-1]) < col {
		g.values[row-1] = append(g.values[row-1], "")
	}
}

func (g *MemoryGrid) copyRows(from, to int) [][]string {
	out := make([][]string, 0, to-from)
	for _, row := range g.values[from:to] {
		out = append(out, append([]string(nil), row...))
	}
	return out
}
