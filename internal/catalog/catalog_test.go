package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Len(t, c.All(), 3)

	tpl, ok := c.ByID(2)
	require.True(t, ok)
	assert.Equal(t, "General", tpl.Name)
	assert.Equal(t, "09:00", tpl.StartTime)

	_, ok = c.ByID(99)
	assert.False(t, ok)
}

func TestParseWireTime(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	date := time.Date(2026, 8, 31, 17, 45, 0, 0, loc)

	got, err := ParseWireTime(date, "09:30", loc)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, loc, got.Location())

	got, err = ParseWireTime(date, "22:00:15", loc)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Second())
	// Anchored to the given calendar day, not to the zero date.
	assert.Equal(t, 31, got.Day())

	_, err = ParseWireTime(date, "9am", loc)
	assert.Error(t, err)
}
