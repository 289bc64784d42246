package supervision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryCachedEmptyBeforeAnyDiscover(t *testing.T) {
	d := NewDiscovery(nil)
	assert.Empty(t, d.Cached("storage-service"))
}

func TestDiscoveryCachedReturnsCopyNotSharedSlice(t *testing.T) {
	d := NewDiscovery(nil)
	d.cache["storage-service"] = []ServiceInfo{{ID: "a"}}

	got := d.Cached("storage-service")
	got[0].ID = "mutated"

	assert.Equal(t, "a", d.cache["storage-service"][0].ID)
}
