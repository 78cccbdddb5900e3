package dendrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Types used across the collector tests. Each invalid-marker case gets its
// own type because discovery aborts on the first violation.

type testDB struct{}
type testCache struct{}
type testConfig struct{ debug bool }

type plainService struct{}

func (s *plainService) Database() *testDB        { return nil }
func (s *plainService) Settings() testConfig     { return testConfig{} }
func (s *plainService) Flush()                   {}
func (s *plainService) Lookup(id string) *testDB { return nil }

type taggedService struct {
	Cache func() *testCache `service:"app.cache"`
	Debug func() testConfig `service:",nullable"`
	label string
}

type noAccessorService struct {
	Cache *testCache `service:"app.cache"`
}

type badAccessorArgsService struct {
	Cache func(region string) *testCache `service:"app.cache"`
}

type badAccessorResultsService struct {
	Cache func() (*testCache, error) `service:"app.cache"`
}

type badTagService struct {
	Cache func() *testCache `service:"app.cache,optional"`
}

type attributeService struct {
	Metrics func() *testCache `service:"app.metrics,attr:interval=30s"`
}

func TestCollect_NoMarkersYieldsEmptyMap(t *testing.T) {
	reg := NewMarkerRegistry()

	services, err := CollectFrom(reg, &plainService{})
	require.NoError(t, err)
	assert.Equal(t, 0, services.Len())
}

func TestCollect_MethodMarkerDefaults(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&plainService{}, Marker{Member: "Settings"}))

	services, err := CollectFrom(reg, &plainService{})
	require.NoError(t, err)

	decl, found := services.Get("plainService::Settings")
	require.True(t, found)
	assert.Equal(t, "testConfig", decl.Type)
	assert.False(t, decl.Nullable)
	assert.Equal(t, "testConfig", decl.String())
}

func TestCollect_PointerResultIsNullable(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&plainService{}, Marker{Member: "Database"}))

	services, err := CollectFrom(reg, &plainService{})
	require.NoError(t, err)

	decl, found := services.Get("plainService::Database")
	require.True(t, found)
	assert.Equal(t, "testDB", decl.Type)
	assert.True(t, decl.Nullable)
	assert.Equal(t, "?testDB", decl.String())
}

func TestCollect_ExplicitKeyAndTypeOverride(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&plainService{},
		Marker{Member: "Database", Key: "app.db", Type: "Connection"},
	))

	services, err := CollectFrom(reg, &plainService{})
	require.NoError(t, err)

	assert.False(t, services.Has("plainService::Database"))
	decl, found := services.Get("app.db")
	require.True(t, found)
	assert.Equal(t, "Connection", decl.Type)
}

func TestCollect_ExplicitNullableFalseDoesNotSuppressInference(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&plainService{},
		Marker{Member: "Database", Nullable: false},
	))

	services, err := CollectFrom(reg, &plainService{})
	require.NoError(t, err)

	decl, _ := services.Get("plainService::Database")
	assert.True(t, decl.Nullable, "pointer results stay nullable regardless of the marker flag")
}

func TestCollect_TaggedFields(t *testing.T) {
	reg := NewMarkerRegistry()

	services, err := CollectFrom(reg, &taggedService{})
	require.NoError(t, err)
	assert.Equal(t, 2, services.Len())

	cache, found := services.Get("app.cache")
	require.True(t, found)
	assert.Equal(t, "testCache", cache.Type)
	assert.True(t, cache.Nullable)

	debug, found := services.Get("taggedService::$Debug::get")
	require.True(t, found)
	assert.Equal(t, "testConfig", debug.Type)
	assert.True(t, debug.Nullable, "explicit nullable flag on a value type")
}

func TestCollect_MethodMarkerDoesNotMatchFields(t *testing.T) {
	type mixedService struct {
		Cache func() *testCache `service:"app.cache"`
	}
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&mixedService{}, Marker{Member: "Cache", Key: "accessor.cache"}))

	// mixedService has a Cache field but no Cache method; the method marker
	// channel must not silently fall back to the field.
	_, err := CollectFrom(reg, &mixedService{})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Cache", cfgErr.Member)
}

func TestCollect_AttributesAppendFullRecord(t *testing.T) {
	reg := NewMarkerRegistry()

	services, err := CollectFrom(reg, &attributeService{})
	require.NoError(t, err)
	require.Equal(t, 1, services.Len())

	// Attribute-carrying declarations are list entries, not keyed ones.
	assert.False(t, services.Has("app.metrics"))

	entries := services.Entries()
	assert.Equal(t, "app.metrics", entries[0].Key)
	assert.Equal(t, "testCache", entries[0].Type)
	assert.Equal(t, map[string]string{"interval": "30s"}, entries[0].Attributes)
}

func TestCollect_Idempotent(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&plainService{},
		Marker{Member: "Database"},
		Marker{Member: "Settings"},
	))

	first, err := CollectFrom(reg, &plainService{})
	require.NoError(t, err)
	second, err := CollectFrom(reg, &plainService{})
	require.NoError(t, err)

	assert.Equal(t, first.Entries(), second.Entries())
	assert.Equal(t, first.Keys(), second.Keys())
}

func TestCollect_ConfigErrors(t *testing.T) {
	tests := []struct {
		name      string
		prototype interface{}
		markers   []Marker
		member    string
	}{
		{
			name:      "method with parameters",
			prototype: &plainService{},
			markers:   []Marker{{Member: "Lookup"}},
			member:    "Lookup",
		},
		{
			name:      "method without return value",
			prototype: &plainService{},
			markers:   []Marker{{Member: "Flush"}},
			member:    "Flush",
		},
		{
			name:      "unknown method",
			prototype: &plainService{},
			markers:   []Marker{{Member: "Missing"}},
			member:    "Missing",
		},
		{
			name:      "field without accessor",
			prototype: &noAccessorService{},
			member:    "Cache",
		},
		{
			name:      "accessor with parameters",
			prototype: &badAccessorArgsService{},
			member:    "Cache",
		},
		{
			name:      "accessor with two results",
			prototype: &badAccessorResultsService{},
			member:    "Cache",
		},
		{
			name:      "malformed tag",
			prototype: &badTagService{},
			member:    "Cache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewMarkerRegistry()
			if len(tt.markers) > 0 {
				require.NoError(t, reg.RegisterMarkers(tt.prototype, tt.markers...))
			}

			services, err := CollectFrom(reg, tt.prototype)
			assert.Nil(t, services, "no partial map on configuration errors")

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.member, cfgErr.Member)
		})
	}
}

// Embedding / inheritance behavior

type baseReports struct{}

func (b *baseReports) Store() *testDB { return nil }

type extendedReports struct {
	baseReports
}

func (e *extendedReports) Store() *testDB { return nil }

func TestCollect_EmbeddedDeclarationsPassThrough(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&baseReports{}, Marker{Member: "Store", Key: "reports.store"}))

	services, err := CollectFrom(reg, &extendedReports{})
	require.NoError(t, err)

	decl, found := services.Get("reports.store")
	require.True(t, found)
	assert.Equal(t, "testDB", decl.Type)
}

func TestCollect_RedeclaredMemberOverwrites(t *testing.T) {
	reg := NewMarkerRegistry()
	require.NoError(t, reg.RegisterMarkers(&baseReports{}, Marker{Member: "Store", Key: "reports.store"}))
	require.NoError(t, reg.RegisterMarkers(&extendedReports{},
		Marker{Member: "Store", Key: "reports.store", Type: "ReplicatedStore"},
	))

	services, err := CollectFrom(reg, &extendedReports{})
	require.NoError(t, err)

	// One entry, the subclass's own; not duplicated.
	assert.Equal(t, 1, services.Len())
	decl, _ := services.Get("reports.store")
	assert.Equal(t, "ReplicatedStore", decl.Type)
}

func TestCollect_EmbeddedErrorAborts(t *testing.T) {
	type brokenBase struct {
		Cache *testCache `service:"app.cache"`
	}
	type outerService struct {
		brokenBase
	}

	reg := NewMarkerRegistry()
	_, err := CollectFrom(reg, &outerService{})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "brokenBase", cfgErr.Type)
}

// legacyBase implements ServiceSubscriber by hand; its custom map must win
// over structural discovery of the embedded type.
type legacyBase struct{}

func (legacyBase) SubscribedServices() (*ServiceMap, error) {
	m := NewServiceMap()
	m.Set("legacy.db", Declaration{Type: "LegacyDB", Nullable: true})
	return m, nil
}

type modernService struct {
	legacyBase
	Cache func() *testCache `service:"app.cache"`
}

func TestCollect_EmbeddedSubscriberInterfaceSeedsMap(t *testing.T) {
	reg := NewMarkerRegistry()

	services, err := CollectFrom(reg, &modernService{})
	require.NoError(t, err)

	assert.Equal(t, []string{"legacy.db", "app.cache"}, services.Keys())
}

// Pointer embedding permits cyclic types; discovery must reject them instead
// of recursing forever.

type loopService struct {
	*loopService
	Cache func() *testCache `service:"app.cache"`
}

type pingService struct {
	*pongService
	Cache func() *testCache `service:"app.cache"`
}

type pongService struct {
	*pingService
}

func TestCollect_SelfEmbeddingRejected(t *testing.T) {
	reg := NewMarkerRegistry()

	services, err := CollectFrom(reg, &loopService{})
	assert.Nil(t, services)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "loopService", cfgErr.Type)
	assert.Contains(t, cfgErr.Reason, "cyclic embedding")
}

func TestCollect_MutualEmbeddingRejected(t *testing.T) {
	reg := NewMarkerRegistry()

	services, err := CollectFrom(reg, &pingService{})
	assert.Nil(t, services)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "pongService", cfgErr.Type)
	assert.Contains(t, cfgErr.Reason, "cyclic embedding")
}

func TestCollect_TagOnEmbeddedFieldIsIgnored(t *testing.T) {
	type auditBase struct {
		Log func() *testCache `service:"audit.log"`
	}
	type outerService struct {
		auditBase `service:"ignored"`
	}

	reg := NewMarkerRegistry()
	services, err := CollectFrom(reg, &outerService{})
	require.NoError(t, err)

	// The embedded type contributes through seeding; the tag on the anonymous
	// field itself declares nothing.
	assert.Equal(t, 1, services.Len())
	assert.True(t, services.Has("audit.log"))
	assert.False(t, services.Has("ignored"))
}

func TestCollect_RejectsNonStructPrototypes(t *testing.T) {
	_, err := Collect(nil)
	assert.Error(t, err)

	_, err = Collect("not a struct")
	assert.Error(t, err)
}
