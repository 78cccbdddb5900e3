package dendrite

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryProbe struct{}

func TestMarkerRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewMarkerRegistry()

	err := reg.RegisterMarkers(&registryProbe{},
		Marker{Member: "Database"},
		Marker{Member: "Mailer", Key: "app.mailer"},
	)
	require.NoError(t, err)

	probeType := reflect.TypeOf(registryProbe{})
	assert.True(t, reg.IsRegistered(probeType))

	markers, found := reg.MarkersFor(probeType)
	require.True(t, found)
	require.Len(t, markers, 2)
	assert.Equal(t, "Database", markers[0].Member)
	assert.Equal(t, "app.mailer", markers[1].Key)
}

func TestMarkerRegistry_PointerAndValuePrototypesMatch(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(registryProbe{}, Marker{Member: "Database"}))

	_, found := reg.MarkersFor(reflect.TypeOf(&registryProbe{}).Elem())
	assert.True(t, found)
}

func TestMarkerRegistry_DuplicateTypeRejected(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&registryProbe{}, Marker{Member: "Database"}))

	err := reg.RegisterMarkers(&registryProbe{}, Marker{Member: "Mailer"})
	assert.ErrorContains(t, err, "already registered")
}

func TestMarkerRegistry_DuplicateMemberRejected(t *testing.T) {
	reg := NewMarkerRegistry()
	err := reg.RegisterMarkers(&registryProbe{},
		Marker{Member: "Database"},
		Marker{Member: "Database", Key: "other"},
	)
	assert.ErrorContains(t, err, "duplicate marker")
}

func TestMarkerRegistry_InvalidPrototypes(t *testing.T) {
	reg := NewMarkerRegistry()

	assert.Error(t, reg.RegisterMarkers(nil))
	assert.Error(t, reg.RegisterMarkers(42, Marker{Member: "Database"}))
	assert.Error(t, reg.RegisterMarkers(&registryProbe{}, Marker{}))
}

func TestMarkerRegistry_Clear(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&registryProbe{}, Marker{Member: "Database"}))

	reg.Clear()
	assert.False(t, reg.IsRegistered(reflect.TypeOf(registryProbe{})))
}
