package quantize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRanges() []Range {
	return []Range{
		{Min: 0, Max: 500},
		{Min: 0, Max: 7},
		{Min: 1, Max: 13},
		{Min: 0, Max: 2},
		{Min: 0, Max: 2},
		{Min: 0, Max: 100},
	}
}

func TestBinCountDependsOnDimensions(t *testing.T) {
	assert.Equal(t, 10, New(testRanges()).Bins())

	wide := make([]Range, 30)
	for i := range wide {
		wide[i] = Range{Min: 0, Max: 1}
	}
	assert.Equal(t, 5, New(wide).Bins())

	boundary := make([]Range, 20)
	for i := range boundary {
		boundary[i] = Range{Min: 0, Max: 1}
	}
	assert.Equal(t, 10, New(boundary).Bins())
}

func TestQuantizeIsDeterministic(t *testing.T) {
	q := New(testRanges())
	v := []float64{123.4, 2, 7, 1, 0, 55.5}

	first := q.Quantize(v)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, q.Quantize(v))
	}
}

func TestQuantizeKeyFormat(t *testing.T) {
	q := New(testRanges())

	// 250/50=5, 2/0.7≈2.9, 6.5/1.2≈5.4, 0.5/0.2≈2.5, 0, 55/10=5.5
	key := q.Quantize([]float64{250, 2, 7.5, 0.5, 0, 55})
	assert.Equal(t, Key("5|2|5|2|0|5"), key)
}

func TestQuantizeClampsOutOfRange(t *testing.T) {
	q := New(testRanges())

	below := q.Quantize([]float64{-50, -1, 0, -3, -3, -10})
	assert.Equal(t, Key("0|0|0|0|0|0"), below)

	above := q.Quantize([]float64{9999, 100, 99, 9, 9, 500})
	assert.Equal(t, Key("9|9|9|9|9|9"), above)

	// Max itself lands in the top bin, not one past it
	edge := q.Quantize([]float64{500, 7, 13, 2, 2, 100})
	assert.Equal(t, Key("9|9|9|9|9|9"), edge)
}

func TestQuantizeNaNClampsToLowestBin(t *testing.T) {
	q := New(testRanges())
	key := q.Quantize([]float64{math.NaN(), 0, 1, 0, 0, 0})
	assert.Equal(t, Key("0|0|0|0|0|0"), key)
}

func TestQuantizeDegenerateRange(t *testing.T) {
	q := New([]Range{{Min: 5, Max: 5}})
	assert.Equal(t, Key("0"), q.Quantize([]float64{3}))
	assert.Equal(t, Key("0"), q.Quantize([]float64{100}))
}

func TestNearbyValuesShareBins(t *testing.T) {
	q := New(testRanges())

	a := q.Quantize([]float64{100, 2, 6, 0, 0, 10})
	b := q.Quantize([]float64{101, 2, 6, 0, 0, 11})
	assert.Equal(t, a, b)

	far := q.Quantize([]float64{400, 2, 6, 0, 0, 10})
	assert.NotEqual(t, a, far)
}

func TestDimensions(t *testing.T) {
	q := New(testRanges())
	assert.Equal(t, 6, q.Dimensions())
}
