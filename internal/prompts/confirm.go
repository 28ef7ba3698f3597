// Package prompts asks the operator before pubsys changes live state.
package prompts

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/hemantobora/pubsys/internal/output"
	"github.com/hemantobora/pubsys/internal/promote"
	"github.com/hemantobora/pubsys/internal/ssm"
)

// ConfirmWrites shows the pending parameter writes and asks whether to apply
// them. An interrupted prompt counts as a refusal.
func ConfirmWrites(writeSet ssm.Parameters) (bool, error) {
	output.Println(promote.DescribeWriteSet(writeSet))

	regions := len(writeSet.ByRegion())
	var proceed bool
	err := survey.AskOne(&survey.Confirm{
		Message: fmt.Sprintf("Set %d parameter(s) in %d region(s)?", len(writeSet), regions),
		Default: false,
	}, &proceed)
	if err == terminal.InterruptErr {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return proceed, nil
}
