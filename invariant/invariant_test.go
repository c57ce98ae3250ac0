package invariant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catch(fn func()) (v interface{}) {
	defer func() { v = recover() }()
	fn()
	return nil
}

func TestPassingChecksDoNotPanic(t *testing.T) {
	assert.Nil(t, catch(func() {
		Precondition(true, "never")
		Invariant(true, "never")
		ExpectNoError(nil, "never")
	}))
}

func TestViolationCarriesKindAndMessage(t *testing.T) {
	v := catch(func() { Invariant(false, "slot %d missing", 3) })
	require.IsType(t, Violation{}, v)

	violation := v.(Violation)
	assert.Equal(t, "INVARIANT", violation.Kind)
	assert.Equal(t, "slot 3 missing", violation.Message)
	assert.Contains(t, violation.String(), "INVARIANT VIOLATION")
}

func TestViolationIsNotAnError(t *testing.T) {
	v := catch(func() { ExpectNoError(errors.New("boom"), "grow") })
	_, isErr := v.(error)
	assert.False(t, isErr)
	assert.Contains(t, v.(Violation).Message, "boom")
}

func TestUnreachable(t *testing.T) {
	v := catch(func() { Unreachable("token %q", "?") })
	assert.Equal(t, "UNREACHABLE", v.(Violation).Kind)
}
