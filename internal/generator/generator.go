// Package generator renders the per-package registration file that wires
// scanned subscriber metadata into the runtime marker registry.
package generator

import (
	"bytes"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/toyz/dendrite/internal/errors"
	"github.com/toyz/dendrite/internal/models"
)

// runtimePackage is the import path of the runtime the generated file wires
// markers into.
const runtimePackage = "github.com/toyz/dendrite/pkg/dendrite"

// fileTemplate renders the whole registration file. Formatting roughness is
// fine here; the output is run through imports.Process afterwards.
const fileTemplate = `// Code generated by dendrite. DO NOT EDIT.

package {{.PackageName}}

import (
	"{{.RuntimePackage}}"
)

func init() {
{{- range .Subscribers}}
{{- if .HasMembers}}
	dendrite.MustRegisterMarkers(&{{.StructName}}{},
{{- range .Members}}
		dendrite.Marker{Member: {{printf "%q" .Name}}{{if .Key}}, Key: {{printf "%q" .Key}}{{end}}{{if .Type}}, Type: {{printf "%q" .Type}}{{end}}{{if .Nullable}}, Nullable: true{{end}}{{if .Attributes}}, Attributes: map[string]string{ {{range .Attributes}}{{printf "%q" .Name}}: {{printf "%q" .Value}}, {{end}}}{{end}}},
{{- end}}
	)
{{- end}}
{{- end}}
}
{{range .Subscribers}}
// SubscribedServices reports the services {{.StructName}} needs from the
// container.
func (s *{{.StructName}}) SubscribedServices() (*dendrite.ServiceMap, error) {
	return dendrite.Collect(s)
}
{{end}}`

// Generator renders registration files from scan metadata
type Generator struct {
	template *template.Template
}

// New creates a Generator
func New() *Generator {
	return &Generator{
		template: template.Must(template.New("registration").Parse(fileTemplate)),
	}
}

// templateData is the root object handed to the file template
type templateData struct {
	PackageName    string
	RuntimePackage string
	Subscribers    []models.SubscriberMetadata
}

// Generate renders the registration file for a package and returns the
// formatted source. The caller decides where to write it (see internal/cli).
// Output is deterministic: subscribers and members keep scan order.
func (g *Generator) Generate(metadata *models.PackageMetadata) ([]byte, error) {
	if !metadata.HasSubscribers() {
		return nil, errors.Newf(errors.GenerationErrorCode,
			"package %s has no subscribers to generate for", metadata.PackageName)
	}

	var buf bytes.Buffer
	err := g.template.Execute(&buf, templateData{
		PackageName:    metadata.PackageName,
		RuntimePackage: runtimePackage,
		Subscribers:    metadata.Subscribers,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.GenerationErrorCode, err,
			"failed to render registration code for package %s", metadata.PackageName)
	}

	formatted, err := imports.Process("dendrite_gen.go", buf.Bytes(), nil)
	if err != nil {
		return nil, errors.Wrapf(errors.GenerationErrorCode, err,
			"generated code for package %s does not compile", metadata.PackageName)
	}
	return formatted, nil
}
