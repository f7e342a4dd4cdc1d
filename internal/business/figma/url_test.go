package figma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

func TestParseDesignURL(t *testing.T) {
	t.Run("file path form", func(t *testing.T) {
		ref, err := ParseDesignURL("https://www.figma.com/file/aBcDeFgHiJ123/demo?node-id=1-23")
		require.NoError(t, err)
		assert.Equal(t, "aBcDeFgHiJ123", ref.FileKey)
		assert.Equal(t, "1-23", ref.NodeID)
	})

	t.Run("design path form", func(t *testing.T) {
		ref, err := ParseDesignURL("https://www.figma.com/design/xYz098765432/page")
		require.NoError(t, err)
		assert.Equal(t, "xYz098765432", ref.FileKey)
		assert.Empty(t, ref.NodeID)
	})

	t.Run("node id variants", func(t *testing.T) {
		ref, err := ParseDesignURL("https://www.figma.com/file/aBcDeFgHiJ123/x?node_id=4%3A7")
		require.NoError(t, err)
		assert.Equal(t, "4:7", ref.NodeID)

		ref, err = ParseDesignURL("https://www.figma.com/file/aBcDeFgHiJ123/x?nodeId=9-9")
		require.NoError(t, err)
		assert.Equal(t, "9-9", ref.NodeID)
	})

	t.Run("short file key rejected", func(t *testing.T) {
		_, err := ParseDesignURL("https://www.figma.com/file/short/x")
		require.Error(t, err)
		assert.True(t, errorutil.IsKind(err, errorutil.KindValidation))
	})

	t.Run("empty url rejected", func(t *testing.T) {
		_, err := ParseDesignURL("  ")
		require.Error(t, err)
	})
}

func TestNodeIDForms(t *testing.T) {
	assert.Equal(t, "1:23", CanonicalNodeID("1-23"))
	assert.Equal(t, "1-23", URLNodeID("1:23"))
}
