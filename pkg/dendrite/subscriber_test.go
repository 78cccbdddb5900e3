package dendrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailer struct{ from string }

type newsletterService struct {
	ContainerAware
}

// composedService embeds a subscriber; SetContainer reaches the shared
// ContainerAware through promotion.
type composedService struct {
	newsletterService
}

func TestContainerAware_SetContainerReturnsPrevious(t *testing.T) {
	svc := &newsletterService{}

	first := NewMapContainer()
	second := NewMapContainer()

	assert.Nil(t, svc.SetContainer(first))
	assert.Same(t, Container(first), svc.SetContainer(second))
	assert.Same(t, Container(second), svc.Container())
}

func TestContainerAware_SetterReachesEmbeddedBase(t *testing.T) {
	svc := &composedService{}
	c := NewMapContainer()

	svc.SetContainer(c)

	// The embedded base and the outer type share one container reference.
	assert.Same(t, Container(c), svc.newsletterService.Container())
}

func TestContainerAware_ServiceWithoutContainer(t *testing.T) {
	svc := &newsletterService{}

	_, err := svc.Service("app.mailer")
	assert.ErrorIs(t, err, ErrNoContainer)
}

func TestContainerAware_ServiceResolution(t *testing.T) {
	svc := &newsletterService{}
	svc.SetContainer(NewMapContainer().Provide("app.mailer", &mailer{from: "noreply"}))

	raw, err := svc.Service("app.mailer")
	require.NoError(t, err)
	assert.Equal(t, "noreply", raw.(*mailer).from)
}

func TestServiceAs(t *testing.T) {
	svc := &newsletterService{}
	svc.SetContainer(NewMapContainer().
		Provide("app.mailer", &mailer{from: "noreply"}).
		Provide("app.flag", true))

	m, err := ServiceAs[*mailer](&svc.ContainerAware, "app.mailer")
	require.NoError(t, err)
	assert.Equal(t, "noreply", m.from)

	_, err = ServiceAs[*mailer](&svc.ContainerAware, "app.flag")
	var wrongType *WrongTypeServiceError
	require.ErrorAs(t, err, &wrongType)
	assert.Equal(t, "app.flag", wrongType.Key)

	_, err = ServiceAs[*mailer](&svc.ContainerAware, "app.absent")
	var missing *MissingServiceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "app.absent", missing.Key)
}

func TestMapContainer(t *testing.T) {
	c := NewMapContainer().Provide("app.db", &testDB{})

	assert.True(t, c.Has("app.db"))
	assert.False(t, c.Has("app.cache"))

	service, err := c.Get("app.db")
	require.NoError(t, err)
	assert.IsType(t, &testDB{}, service)

	_, err = c.Get("app.cache")
	var missing *MissingServiceError
	require.ErrorAs(t, err, &missing)
}
