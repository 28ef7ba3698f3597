// Package naming validates and normalizes user-supplied AWS names.
package naming

import (
	"regexp"
	"strings"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/samber/lo"

	"github.com/hemantobora/pubsys/internal/models"
)

var regionPattern = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]*)?-[a-z]+-\d+$`)

// archAliases maps common architecture spellings to EC2's names
var archAliases = map[string]string{
	"amd64":   string(ec2types.ArchitectureValuesX8664),
	"x86-64":  string(ec2types.ArchitectureValuesX8664),
	"aarch64": string(ec2types.ArchitectureValuesArm64),
}

// ParseArch normalizes an architecture name and checks it against the
// architectures EC2 knows
func ParseArch(input string) (string, error) {
	arch := strings.ToLower(strings.TrimSpace(input))
	if alias, ok := archAliases[arch]; ok {
		arch = alias
	}
	known := lo.Map(ec2types.ArchitectureValuesX8664.Values(), func(v ec2types.ArchitectureValues, _ int) string {
		return string(v)
	})
	if !lo.Contains(known, arch) {
		return "", &models.InputValidationError{
			InputType: "architecture",
			Value:     input,
			Expected:  strings.Join(known, ", "),
		}
	}
	return arch, nil
}

// ValidateRegions checks that every name looks like an AWS region and that
// none is repeated
func ValidateRegions(regions []string) error {
	seen := make(map[string]bool, len(regions))
	for _, region := range regions {
		if !regionPattern.MatchString(region) {
			return &models.InputValidationError{
				InputType: "region",
				Value:     region,
				Expected:  "an AWS region name such as us-west-2",
			}
		}
		if seen[region] {
			return &models.InputValidationError{
				InputType: "region",
				Value:     region,
				Expected:  "each region listed once",
			}
		}
		seen[region] = true
	}
	return nil
}
