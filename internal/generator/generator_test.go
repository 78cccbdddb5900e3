package generator

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dendrite/internal/annotations"
	"github.com/toyz/dendrite/internal/errors"
	"github.com/toyz/dendrite/internal/models"
)

func sampleMetadata() *models.PackageMetadata {
	return &models.PackageMetadata{
		PackageName: "services",
		PackageDir:  "internal/services",
		Subscribers: []models.SubscriberMetadata{
			{
				StructName: "ReportService",
				Members: []models.MemberMetadata{
					{Name: "Database", Key: "app.db"},
					{Name: "Archive", Nullable: true},
					{
						Name: "Metrics",
						Attributes: []annotations.Attribute{
							{Name: "interval", Value: "30s"},
						},
					},
				},
			},
			{
				StructName: "MailerService",
				Members: []models.MemberMetadata{
					{Name: "Mailer", Type: "Transport"},
				},
			},
		},
	}
}

func TestGenerator_RendersRegistration(t *testing.T) {
	source, err := New().Generate(sampleMetadata())
	require.NoError(t, err)

	code := string(source)
	assert.Contains(t, code, "// Code generated by dendrite. DO NOT EDIT.")
	assert.Contains(t, code, "package services")
	assert.Contains(t, code, `"github.com/toyz/dendrite/pkg/dendrite"`)

	assert.Contains(t, code, "dendrite.MustRegisterMarkers(&ReportService{},")
	assert.Contains(t, code, `dendrite.Marker{Member: "Database", Key: "app.db"}`)
	assert.Contains(t, code, `dendrite.Marker{Member: "Archive", Nullable: true}`)
	assert.Contains(t, code, `dendrite.Marker{Member: "Metrics", Attributes: map[string]string{"interval": "30s"}}`)

	assert.Contains(t, code, "dendrite.MustRegisterMarkers(&MailerService{},")
	assert.Contains(t, code, `dendrite.Marker{Member: "Mailer", Type: "Transport"}`)

	assert.Contains(t, code, "func (s *ReportService) SubscribedServices() (*dendrite.ServiceMap, error)")
	assert.Contains(t, code, "func (s *MailerService) SubscribedServices() (*dendrite.ServiceMap, error)")
}

func TestGenerator_OutputParses(t *testing.T) {
	source, err := New().Generate(sampleMetadata())
	require.NoError(t, err)

	fset := token.NewFileSet()
	_, err = parser.ParseFile(fset, "dendrite_gen.go", source, 0)
	require.NoError(t, err, "generated code must be valid Go")
}

func TestGenerator_Deterministic(t *testing.T) {
	first, err := New().Generate(sampleMetadata())
	require.NoError(t, err)
	second, err := New().Generate(sampleMetadata())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerator_SubscriberWithoutMembersGetsNoRegistration(t *testing.T) {
	metadata := &models.PackageMetadata{
		PackageName: "services",
		Subscribers: []models.SubscriberMetadata{
			{StructName: "EmptyService"},
		},
	}

	source, err := New().Generate(metadata)
	require.NoError(t, err)

	code := string(source)
	assert.NotContains(t, code, "MustRegisterMarkers")
	assert.Contains(t, code, "func (s *EmptyService) SubscribedServices()")
}

func TestGenerator_NothingToGenerate(t *testing.T) {
	_, err := New().Generate(&models.PackageMetadata{PackageName: "services"})

	var toolErr *errors.Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, errors.GenerationErrorCode, toolErr.Code)
}
