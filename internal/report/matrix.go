package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Matrix is a square correlation matrix over the named numeric columns.
// NaN entries mark undefined (zero-variance) pairs; they marshal as JSON
// null so callers can tell them apart from a true zero correlation.
type Matrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// At returns the correlation of the (i, j) pair.
func (m Matrix) At(i, j int) float64 { return m.Values[i][j] }

// MarshalJSON emits NaN entries as null. encoding/json rejects NaN outright,
// so the matrix serializes itself.
func (m Matrix) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`{"columns":`)
	cols, err := json.Marshal(m.Columns)
	if err != nil {
		return nil, err
	}
	b.Write(cols)
	b.WriteString(`,"values":[`)
	for i, row := range m.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			if math.IsNaN(v) {
				b.WriteString("null")
			} else {
				b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		b.WriteByte(']')
	}
	b.WriteString("]}")
	return b.Bytes(), nil
}

// UnmarshalJSON accepts null entries as NaN.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Columns = raw.Columns
	m.Values = make([][]float64, len(raw.Values))
	for i, row := range raw.Values {
		m.Values[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				m.Values[i][j] = math.NaN()
			} else {
				m.Values[i][j] = *v
			}
		}
	}
	return nil
}
