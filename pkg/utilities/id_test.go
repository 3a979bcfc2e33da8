package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeIDs(t *testing.T) {
	require.NoError(t, SetSnowflakeNode(3))

	a := NewSnowflakeID()
	b := NewSnowflakeID()
	assert.NotEqual(t, a, b)
	assert.True(t, IsSnowflakeID(a))
	assert.False(t, IsSnowflakeID("not-a-number"))
	assert.False(t, IsSnowflakeID(""))
	assert.False(t, IsSnowflakeID("-5"))
}

func TestSetSnowflakeNodeRejectsOutOfRange(t *testing.T) {
	assert.Error(t, SetSnowflakeNode(5000))
}

func TestKSUIDs(t *testing.T) {
	id := NewKSUID()
	assert.True(t, IsKSUID(id))
	assert.False(t, IsKSUID("abc"))
	assert.False(t, IsKSUID(""))
}
