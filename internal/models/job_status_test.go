package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobType(t *testing.T) {
	for _, jt := range AllJobTypes {
		parsed, err := ParseJobType(string(jt))
		require.NoError(t, err)
		assert.Equal(t, jt, parsed)
	}

	_, err := ParseJobType("transmogrify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job type")

	assert.False(t, JobType("").Valid())
}
