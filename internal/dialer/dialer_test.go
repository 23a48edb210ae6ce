package dialer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutInterface(t *testing.T) {
	t.Parallel()

	d, err := New(500*time.Millisecond, "")
	require.NoError(t, err)
	assert.Nil(t, d.Control)
	assert.Equal(t, 500*time.Millisecond, d.Timeout)
}
