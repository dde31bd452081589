package weave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareValuesNumericCrossType(t *testing.T) {
	assert.True(t, CompareValues(int64(5), float64(5)))
	assert.True(t, CompareValues(5, int32(5)))
	assert.False(t, CompareValues(5, 6))
}

func TestCompareValuesTime(t *testing.T) {
	now := time.Now()
	assert.True(t, CompareValues(now, now.UTC()))
	assert.False(t, CompareValues(now, "not a time"))
}

func TestCompareValuesNil(t *testing.T) {
	assert.True(t, CompareValues(nil, nil))
	assert.False(t, CompareValues(nil, 1))
	assert.False(t, CompareValues(1, nil))
}

func TestRecordCloneIsShallow(t *testing.T) {
	inner := Record{"n": 1}
	r := Record{"a": inner}
	clone := r.Clone()
	clone["b"] = 2

	_, hasB := r["b"]
	assert.False(t, hasB)

	inner["n"] = 99
	assert.Equal(t, 99, clone["a"].(Record)["n"])
}
