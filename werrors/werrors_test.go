package werrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextQueryCompileErrorUnwrapAndAs(t *testing.T) {
	cause := errors.New("boom")
	err := NewTextQueryCompileError("bad token", 4, cause)

	var target *TextQueryCompileError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, 4, target.Column)
	assert.ErrorIs(t, err, cause)
}

func TestTextQueryCompileErrorNoColumn(t *testing.T) {
	err := NewTextQueryCompileError("bad token", -1, nil)
	assert.NotContains(t, err.Error(), "column")
}

func TestErrKindsWrapCause(t *testing.T) {
	cause := errors.New("disk full")
	err := DataSourceError("reading source", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DataSourceError")
}

func TestRelationMalformedHasNoCause(t *testing.T) {
	err := RelationMalformed("bad operand")
	assert.Nil(t, err.Unwrap())
	assert.Contains(t, err.Error(), "bad operand")
}
