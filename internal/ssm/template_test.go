package ssm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemantobora/pubsys/internal/models"
)

const templateDoc = `
parameters:
  - name: "{{.variant}}/{{.arch}}/{{.image_version}}/image_id"
  - name: "{{.variant}}/{{.arch}}/{{.image_version}}/image_version"
  - name: "{{.variant}}/{{.arch}}/latest/image_id"
    variants: ["aws-k8s-1.30"]
  - name: "{{.variant | upper}}/arm-only"
    arches: ["arm64"]
`

var buildCtx = BuildContext{Variant: "aws-k8s-1.30", Arch: "x86_64", ImageVersion: "1.20.0"}

func TestParseTemplatesAndFilter(t *testing.T) {
	file, err := ParseTemplates([]byte(templateDoc))
	require.NoError(t, err)
	require.Len(t, file.Parameters, 4)

	selected := file.TemplatesFor(buildCtx)
	assert.Len(t, selected, 3)

	other := file.TemplatesFor(BuildContext{Variant: "aws-dev", Arch: "arm64", ImageVersion: "1"})
	require.Len(t, other, 3)
	assert.Equal(t, "{{.variant | upper}}/arm-only", other[2].Name)
}

func TestParseTemplatesRequiresName(t *testing.T) {
	_, err := ParseTemplates([]byte("parameters:\n  - variants: [a]\n"))
	var tmplErr *models.TemplateError
	assert.ErrorAs(t, err, &tmplErr)
}

func TestRenderNames(t *testing.T) {
	templates := []TemplateParameter{
		{Name: "{{.variant}}/{{.arch}}/{{.image_version}}/image_id"},
		{Name: "{{.variant | upper}}/{{.arch}}"},
	}

	rendered, err := RenderNames(templates, "/test-prefix/", buildCtx)
	require.NoError(t, err)
	assert.Equal(t, RenderedNames{
		"{{.variant}}/{{.arch}}/{{.image_version}}/image_id": "/test-prefix/aws-k8s-1.30/x86_64/1.20.0/image_id",
		"{{.variant | upper}}/{{.arch}}":                     "/test-prefix/AWS-K8S-1.30/x86_64",
	}, rendered)
}

func TestRenderNamesDeterministic(t *testing.T) {
	file, err := ParseTemplates([]byte(templateDoc))
	require.NoError(t, err)
	templates := file.TemplatesFor(buildCtx)

	first, err := RenderNames(templates, "/p", buildCtx)
	require.NoError(t, err)
	second, err := RenderNames(templates, "/p", buildCtx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderNamesUnknownField(t *testing.T) {
	_, err := RenderNames([]TemplateParameter{{Name: "{{.region}}/x"}}, "", buildCtx)
	var tmplErr *models.TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, "{{.region}}/x", tmplErr.Template)
}

func TestRenderNamesEmptyResult(t *testing.T) {
	ctx := BuildContext{Variant: "", Arch: "x86_64", ImageVersion: "1"}
	_, err := RenderNames([]TemplateParameter{{Name: "{{.variant}}"}}, "/prefix", ctx)
	var tmplErr *models.TemplateError
	assert.ErrorAs(t, err, &tmplErr)
}

func TestRenderNamesDuplicateName(t *testing.T) {
	templates := []TemplateParameter{
		{Name: "{{.variant}}/x"},
		{Name: "aws-k8s-1.30/x"},
	}
	_, err := RenderNames(templates, "", buildCtx)
	var tmplErr *models.TemplateError
	assert.ErrorAs(t, err, &tmplErr)
}

func TestJoinName(t *testing.T) {
	assert.Equal(t, "name", JoinName("", "name"))
	assert.Equal(t, "/a/b", JoinName("/a", "b"))
	assert.Equal(t, "/a/b", JoinName("/a/", "/b"))
}

func TestAssociate(t *testing.T) {
	templates := []TemplateParameter{{Name: "{{.image_version}}/image_id"}}
	source, err := RenderNames(templates, "/p", buildCtx)
	require.NoError(t, err)
	targetCtx := buildCtx
	targetCtx.ImageVersion = "1.21.0"
	target, err := RenderNames(templates, "/p", targetCtx)
	require.NoError(t, err)

	association, err := source.Associate(target)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"/p/1.20.0/image_id": "/p/1.21.0/image_id"}, association)
}
