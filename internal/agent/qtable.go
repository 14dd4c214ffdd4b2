package agent

import "canteenopt/internal/quantize"

// QTable is the sparse learned mapping from quantized state to one value
// per action. Unseen keys read as all-zero value vectors; a key is only
// inserted when it is written. There is no capacity limit and no
// eviction: table size equals the number of distinct states visited.
type QTable struct {
	values     map[quantize.Key][]float64
	actionSize int
}

// NewQTable creates an empty table with the given action-space size
func NewQTable(actionSize int) *QTable {
	return &QTable{
		values:     make(map[quantize.Key][]float64),
		actionSize: actionSize,
	}
}

// ActionSize returns the length of every value vector
func (t *QTable) ActionSize() int {
	return t.actionSize
}

// Len returns the number of states the table has actually visited
func (t *QTable) Len() int {
	return len(t.values)
}

// Contains reports whether a state was visited during training
func (t *QTable) Contains(key quantize.Key) bool {
	_, ok := t.values[key]
	return ok
}

// Lookup returns the value vector for a key without inserting. Unseen
// keys yield a fresh zero vector.
func (t *QTable) Lookup(key quantize.Key) []float64 {
	if row, ok := t.values[key]; ok {
		out := make([]float64, len(row))
		copy(out, row)
		return out
	}
	return make([]float64, t.actionSize)
}

// Max returns the highest action value for a key; zero for unseen keys
func (t *QTable) Max(key quantize.Key) float64 {
	row, ok := t.values[key]
	if !ok {
		return 0
	}
	max := row[0]
	for _, v := range row[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Argmax returns the index of the highest action value. Ties resolve to
// the lowest action index; unseen keys therefore resolve to action 0.
func (t *QTable) Argmax(key quantize.Key) int {
	row, ok := t.values[key]
	if !ok {
		return 0
	}
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}

// Update writes one state/action value, lazily inserting the row. This
// is the only mutation point during training.
func (t *QTable) Update(key quantize.Key, action int, value float64) {
	row, ok := t.values[key]
	if !ok {
		row = make([]float64, t.actionSize)
		t.values[key] = row
	}
	row[action] = value
}

// Get reads one state/action value without inserting
func (t *QTable) Get(key quantize.Key, action int) float64 {
	if row, ok := t.values[key]; ok {
		return row[action]
	}
	return 0
}

// Snapshot copies the table into a plain map for persistence
func (t *QTable) Snapshot() map[string][]float64 {
	out := make(map[string][]float64, len(t.values))
	for k, row := range t.values {
		cp := make([]float64, len(row))
		copy(cp, row)
		out[string(k)] = cp
	}
	return out
}

// Restore replaces the table contents from a persisted snapshot
func (t *QTable) Restore(values map[string][]float64) {
	t.values = make(map[quantize.Key][]float64, len(values))
	for k, row := range values {
		cp := make([]float64, len(row))
		copy(cp, row)
		t.values[quantize.Key(k)] = cp
	}
}
