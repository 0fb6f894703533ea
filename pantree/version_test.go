package pantree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-panw/pantree"
)

func TestParseVersion(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		v, err := pantree.ParseVersion("10.2.3")
		require.NoError(t, err)
		assert.Equal(t, pantree.Version{Major: 10, Minor: 2, Patch: 3}, v)
	})

	t.Run("hotfix suffix ignored", func(t *testing.T) {
		v, err := pantree.ParseVersion("11.1.0-h2")
		require.NoError(t, err)
		assert.Equal(t, pantree.Version{Major: 11, Minor: 1}, v)
	})

	t.Run("two components", func(t *testing.T) {
		v, err := pantree.ParseVersion("9.1")
		require.NoError(t, err)
		assert.Equal(t, pantree.Version{Major: 9, Minor: 1}, v)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, s := range []string{"", "10", "10.x.3", "a.b.c", "1.2.3.4"} {
			_, err := pantree.ParseVersion(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestVersionAtLeast(t *testing.T) {
	v10_2_3 := pantree.Version{Major: 10, Minor: 2, Patch: 3}

	assert.True(t, v10_2_3.AtLeast(pantree.Version{Major: 10, Minor: 2, Patch: 3}))
	assert.True(t, v10_2_3.AtLeast(pantree.Version{Major: 10, Minor: 2}))
	assert.True(t, v10_2_3.AtLeast(pantree.Version{Major: 9, Minor: 9, Patch: 9}))
	assert.False(t, v10_2_3.AtLeast(pantree.Version{Major: 10, Minor: 3}))
	assert.False(t, v10_2_3.AtLeast(pantree.Version{Major: 11}))
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "10.2.3", pantree.Version{Major: 10, Minor: 2, Patch: 3}.String())
	assert.True(t, pantree.Version{}.IsZero())
	assert.False(t, pantree.Version{Major: 1}.IsZero())
}
