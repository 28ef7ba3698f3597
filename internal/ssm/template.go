package ssm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/hemantobora/pubsys/internal/models"
	"gopkg.in/yaml.v3"
)

// BuildContext holds the values substituted into parameter name templates
type BuildContext struct {
	Variant      string
	Arch         string
	ImageVersion string
}

func (c BuildContext) data() map[string]string {
	return map[string]string{
		"variant":       c.Variant,
		"arch":          c.Arch,
		"image_version": c.ImageVersion,
	}
}

// TemplateParameter is one entry of the parameter template file. Variants and
// Arches restrict which builds the entry applies to; empty means all.
type TemplateParameter struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants,omitempty"`
	Arches   []string `yaml:"arches,omitempty"`
}

// TemplateFile is the parsed parameter template document
type TemplateFile struct {
	Parameters []TemplateParameter `yaml:"parameters"`
}

// RenderedNames maps a template string to the name it rendered to
type RenderedNames map[string]string

// ParseTemplates decodes a YAML template document
func ParseTemplates(data []byte) (*TemplateFile, error) {
	var file TemplateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse parameter templates: %w", err)
	}
	for i, p := range file.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			return nil, &models.TemplateError{
				Template: fmt.Sprintf("parameters[%d]", i),
				Message:  "name is required",
			}
		}
	}
	return &file, nil
}

// TemplatesFor returns the templates applying to the build's variant and arch
func (f *TemplateFile) TemplatesFor(ctx BuildContext) []TemplateParameter {
	var out []TemplateParameter
	for _, p := range f.Parameters {
		if matches(p.Variants, ctx.Variant) && matches(p.Arches, ctx.Arch) {
			out = append(out, p)
		}
	}
	return out
}

func matches(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// RenderNames renders every template name with the build context and joins it
// to prefix. The result is keyed by template string so that names rendered
// for two different contexts can be matched back to the same template.
func RenderNames(templates []TemplateParameter, prefix string, ctx BuildContext) (RenderedNames, error) {
	rendered := make(RenderedNames, len(templates))
	owners := make(map[string]string, len(templates))
	for _, p := range templates {
		if _, done := rendered[p.Name]; done {
			continue
		}
		name, err := renderName(p.Name, ctx)
		if err != nil {
			return nil, err
		}
		full := JoinName(prefix, name)
		if other, dup := owners[full]; dup {
			return nil, &models.TemplateError{
				Template: p.Name,
				Message:  fmt.Sprintf("renders to '%s', same as template '%s'", full, other),
			}
		}
		owners[full] = p.Name
		rendered[p.Name] = full
	}
	return rendered, nil
}

func renderName(tmpl string, ctx BuildContext) (string, error) {
	t, err := template.New("parameter").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(tmpl)
	if err != nil {
		return "", &models.TemplateError{Template: tmpl, Message: "invalid template", Cause: err}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx.data()); err != nil {
		return "", &models.TemplateError{Template: tmpl, Message: "unknown field", Cause: err}
	}
	name := strings.TrimSpace(buf.String())
	if name == "" {
		return "", &models.TemplateError{Template: tmpl, Message: "rendered an empty name"}
	}
	return name, nil
}

// JoinName joins a prefix and a parameter name with exactly one slash
func JoinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(name, "/")
}

// Names returns the rendered names
func (r RenderedNames) Names() []string {
	names := make([]string, 0, len(r))
	for _, name := range r {
		names = append(names, name)
	}
	return names
}

// Associate maps each name rendered in r to the name other rendered from the
// same template
func (r RenderedNames) Associate(other RenderedNames) (map[string]string, error) {
	out := make(map[string]string, len(r))
	for tmpl, name := range r {
		target, ok := other[tmpl]
		if !ok {
			return nil, &models.TemplateError{Template: tmpl, Message: "has no counterpart rendering"}
		}
		out[name] = target
	}
	return out, nil
}
