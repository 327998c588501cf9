package fixtures

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	assert.NoError(t, Compare(PathMode, "a.pyi:1: E001 x\n", "a.pyi:1: E001 x\n"))
	assert.NoError(t, Compare(StdinMode, "", ""))

	err := Compare(StdinMode, "a.pyi:1: E001 x\n", "a.pyi:1: E001 y\n")
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, StdinMode, mismatch.Mode)
	assert.Contains(t, err.Error(), "stdin mode")
	assert.Contains(t, err.Error(), "E001 x")
	assert.Contains(t, err.Error(), "E001 y")
}

func TestCompareIsExact(t *testing.T) {
	assert.Error(t, Compare(PathMode, "a.pyi:1: E001 x\n", "a.pyi:1: E001 x"))
	assert.Error(t, Compare(PathMode, "", "\n"))
}

func TestMismatchDiff(t *testing.T) {
	m := &MismatchError{
		Mode:     PathMode,
		Expected: "a.pyi:1: E001 x\na.pyi:2: E002 y\n",
		Actual:   "a.pyi:1: E001 x\na.pyi:3: E003 z\n",
	}
	assert.Equal(t, " a.pyi:1: E001 x\n-a.pyi:2: E002 y\n+a.pyi:3: E003 z", m.Diff())
}
