package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsComparesCodes(t *testing.T) {
	cause := errors.New("boom")
	err := ErrKeyResolution.WithMsg("type %s is not a struct", "int").WithCause(cause)

	assert.ErrorIs(t, err, ErrKeyResolution)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConfiguration)

	wrapped := fmt.Errorf("build operation: %w", err)
	assert.ErrorIs(t, wrapped, ErrKeyResolution)
	assert.Equal(t, CodeKeyResolution, CodeOf(wrapped))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "configuration: invalid configuration", ErrConfiguration.Error())
	assert.Equal(t, "dispatch: boom", New(CodeDispatch, "").WithCause(errors.New("boom")).Error())
	assert.Equal(t, "condition: bad: x", ErrCondition.WithMsg("bad").WithCause(errors.New("x")).Error())
	assert.Equal(t, "property", New(CodeProperty, "").Error())
}

func TestError_WithDataIsCopyOnWrite(t *testing.T) {
	base := ErrDispatch.WithData("namespace", "users")
	next := base.WithData("operation", "op-1")

	require.Len(t, base.Data(), 1)
	require.Len(t, next.Data(), 2)
	assert.Equal(t, "users", next.Data()["namespace"])

	data := next.Data()
	data["namespace"] = "changed"
	assert.Equal(t, "users", next.Data()["namespace"])
	assert.Nil(t, ErrDispatch.Data())
}

func TestCodeOf_NonClassified(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}
