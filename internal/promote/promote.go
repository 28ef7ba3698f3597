// Package promote copies SSM parameters from one image version to another
// in every configured region.
package promote

import (
	"context"
	"fmt"
	"strings"

	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/output"
	"github.com/hemantobora/pubsys/internal/ssm"
)

// ParameterStore fetches and writes parameters across regions
type ParameterStore interface {
	GetMany(ctx context.Context, keys []ssm.Key) (ssm.Parameters, error)
	SetMany(ctx context.Context, writeSet ssm.Parameters) error
	ValidateMany(ctx context.Context, writeSet ssm.Parameters) error
}

// DocumentStore reads and writes documents by location
type DocumentStore interface {
	Read(ctx context.Context, location string) ([]byte, error)
	Write(ctx context.Context, location string, data []byte) error
}

// ConfirmFunc is asked before any parameter is written. Returning false
// stops the promotion without writing.
type ConfirmFunc func(writeSet ssm.Parameters) (bool, error)

// Options describes one promotion
type Options struct {
	Variant string
	Arch    string
	Source  string
	Target  string
	Regions []string
	Prefix  string

	// TemplatePath locates the YAML parameter template file
	TemplatePath string

	// ParameterOutput, when set, locates a parameter document that is
	// merged with the promoted values and written back
	ParameterOutput string
}

// Report describes what a promotion did
type Report struct {
	WriteSet  ssm.Parameters
	Persisted bool
	Declined  bool
}

// Changed reports whether any parameter was written
func (r *Report) Changed() bool {
	return len(r.WriteSet) > 0 && !r.Declined
}

// Promoter runs promotions
type Promoter struct {
	store   ParameterStore
	docs    DocumentStore
	confirm ConfirmFunc
}

// NewPromoter creates a Promoter. confirm may be nil to write without asking.
func NewPromoter(store ParameterStore, docs DocumentStore, confirm ConfirmFunc) *Promoter {
	return &Promoter{store: store, docs: docs, confirm: confirm}
}

// Promote copies the source version's parameters to the target version.
// Only parameters that are missing or different in the target are written,
// and every write is read back before returning.
func (p *Promoter) Promote(ctx context.Context, opts Options) (*Report, error) {
	output.Info("Promoting SSM parameters", "source", opts.Source, "target", opts.Target)
	report := &Report{WriteSet: ssm.Parameters{}}

	if len(opts.Regions) == 0 {
		return nil, &models.ConfigError{Setting: "aws.regions", Message: "at least one region is required"}
	}

	sourceCtx := ssm.BuildContext{Variant: opts.Variant, Arch: opts.Arch, ImageVersion: opts.Source}
	targetCtx := ssm.BuildContext{Variant: opts.Variant, Arch: opts.Arch, ImageVersion: opts.Target}

	output.Info("Parsing SSM parameter templates", "path", opts.TemplatePath)
	data, err := p.docs.Read(ctx, opts.TemplatePath)
	if err != nil {
		return nil, err
	}
	file, err := ssm.ParseTemplates(data)
	if err != nil {
		return nil, err
	}
	templates := file.TemplatesFor(sourceCtx)
	if len(templates) == 0 {
		output.Info("No parameters for this arch/variant", "path", opts.TemplatePath, "variant", opts.Variant, "arch", opts.Arch)
		return report, nil
	}

	sourceNames, err := ssm.RenderNames(templates, opts.Prefix, sourceCtx)
	if err != nil {
		return nil, err
	}
	targetNames, err := ssm.RenderNames(templates, opts.Prefix, targetCtx)
	if err != nil {
		return nil, err
	}
	association, err := sourceNames.Associate(targetNames)
	if err != nil {
		return nil, err
	}

	output.Info("Getting current SSM parameters for source and target names")
	source, err := p.store.GetMany(ctx, ssm.KeysFor(opts.Regions, sourceNames.Names()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source parameters: %w", err)
	}
	output.Debug("Current source parameters", "count", len(source))
	if len(source) == 0 {
		return nil, &models.EmptySourceError{Version: opts.Source}
	}

	target, err := p.store.GetMany(ctx, ssm.KeysFor(opts.Regions, targetNames.Names()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch target parameters: %w", err)
	}
	output.Debug("Current target parameters", "count", len(target))

	retargeted, err := ssm.Retarget(source, association)
	if err != nil {
		return nil, err
	}
	writeSet := ssm.KeyDifference(retargeted, target)
	if len(writeSet) == 0 {
		output.Info("No changes necessary")
		return report, nil
	}
	report.WriteSet = writeSet

	// merged up front, written only after the writes are verified
	var merged []byte
	if opts.ParameterOutput != "" {
		merged, err = p.mergeParameterOutput(ctx, opts.ParameterOutput, writeSet, association)
		if err != nil {
			return nil, err
		}
	}

	if p.confirm != nil {
		ok, err := p.confirm(writeSet)
		if err != nil {
			return nil, err
		}
		if !ok {
			output.Warn("Promotion declined, no parameters were written")
			report.Declined = true
			return report, nil
		}
	}

	output.Info("Setting updated SSM parameters", "count", len(writeSet))
	if err := p.store.SetMany(ctx, writeSet); err != nil {
		return nil, fmt.Errorf("failed to set parameters: %w", err)
	}

	output.Info("Validating whether live parameters in SSM reflect changes")
	if err := p.store.ValidateMany(ctx, writeSet); err != nil {
		return nil, fmt.Errorf("failed to validate parameters: %w", err)
	}

	output.Info("All parameters match requested values")

	if merged != nil {
		output.Info("Writing promoted SSM parameters", "location", opts.ParameterOutput)
		if err := p.docs.Write(ctx, opts.ParameterOutput, merged); err != nil {
			return nil, err
		}
		report.Persisted = true
		output.Info("Wrote promoted SSM parameters", "location", opts.ParameterOutput)
	}
	return report, nil
}

// mergeParameterOutput reads the document at location and returns it merged
// with writeSet, serialized
func (p *Promoter) mergeParameterOutput(ctx context.Context, location string, writeSet ssm.Parameters, association map[string]string) ([]byte, error) {
	data, err := p.docs.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	persisted, err := ssm.ParseRegionalParameters(data)
	if err != nil {
		return nil, &models.DocumentError{Location: location, Operation: "parse", Cause: err}
	}

	merged, err := Merge(persisted, writeSet, association)
	if err != nil {
		return nil, err
	}
	out, err := ssm.MarshalRegionalParameters(merged)
	if err != nil {
		return nil, &models.DocumentError{Location: location, Operation: "serialize", Cause: err}
	}
	return out, nil
}

// DescribeWriteSet renders the pending writes as a table
func DescribeWriteSet(writeSet ssm.Parameters) string {
	t := output.NewTable("REGION", "PARAMETER", "VALUE")
	for _, key := range writeSet.Keys() {
		t.Row(key.Region, key.Name, truncate(writeSet[key], 60))
	}
	return t.String()
}

func truncate(s string, n int) string {
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-3]) + "..."
}
