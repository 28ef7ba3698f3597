// Package ami describes EC2 images across regions and validates them against
// expected definitions.
package ami

import (
	"encoding/json"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

const (
	defaultEnaSupport      = true
	defaultSriovNetSupport = "simple"
)

// ImageDef holds the image fields that are validated
type ImageDef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Public images ignore LaunchPermissions; they are only fetched for
	// images expected to be private.
	Public            bool               `json:"public"`
	LaunchPermissions []LaunchPermission `json:"launch_permissions"`
	EnaSupport        bool               `json:"ena_support"`
	SriovNetSupport   string             `json:"sriov_net_support"`
}

// LaunchPermission grants launch access to a group, account or organization
type LaunchPermission struct {
	Group                 *string `json:"group,omitempty"`
	UserID                *string `json:"user_id,omitempty"`
	OrganizationARN       *string `json:"organization_arn,omitempty"`
	OrganizationalUnitARN *string `json:"organizational_unit_arn,omitempty"`
}

// UnmarshalJSON applies the defaults used by expected image documents
func (d *ImageDef) UnmarshalJSON(data []byte) error {
	type plain ImageDef
	out := plain{
		EnaSupport:      defaultEnaSupport,
		SriovNetSupport: defaultSriovNetSupport,
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*d = ImageDef(out)
	return nil
}

// FromEC2Image converts an EC2 image. Launch permissions are left empty and
// filled in separately for images expected to be private.
func FromEC2Image(image ec2types.Image) ImageDef {
	return ImageDef{
		ID:              aws.ToString(image.ImageId),
		Name:            aws.ToString(image.Name),
		Public:          aws.ToBool(image.Public),
		EnaSupport:      aws.ToBool(image.EnaSupport),
		SriovNetSupport: aws.ToString(image.SriovNetSupport),
	}
}

// FromEC2LaunchPermission converts an EC2 launch permission
func FromEC2LaunchPermission(p ec2types.LaunchPermission) LaunchPermission {
	lp := LaunchPermission{
		UserID:                p.UserId,
		OrganizationARN:       p.OrganizationArn,
		OrganizationalUnitARN: p.OrganizationalUnitArn,
	}
	if p.Group != "" {
		lp.Group = aws.String(string(p.Group))
	}
	return lp
}

// Canonical returns a copy normalized for comparison: public images carry no
// launch permissions and permission lists are sorted.
func (d ImageDef) Canonical() ImageDef {
	out := d
	if out.Public {
		out.LaunchPermissions = nil
		return out
	}
	if out.LaunchPermissions != nil {
		perms := make([]LaunchPermission, len(out.LaunchPermissions))
		copy(perms, out.LaunchPermissions)
		sort.Slice(perms, func(i, j int) bool {
			return perms[i].sortKey() < perms[j].sortKey()
		})
		out.LaunchPermissions = perms
	}
	return out
}

// Equal compares two definitions field by field. A nil permission list and
// an empty one are different: nil means the list was never retrieved.
func (d ImageDef) Equal(other ImageDef) bool {
	return len(d.Differences(other)) == 0
}

func (p LaunchPermission) sortKey() string {
	return aws.ToString(p.Group) + "\x00" + aws.ToString(p.UserID) + "\x00" +
		aws.ToString(p.OrganizationARN) + "\x00" + aws.ToString(p.OrganizationalUnitARN)
}

func (p LaunchPermission) equal(other LaunchPermission) bool {
	return ptrEqual(p.Group, other.Group) &&
		ptrEqual(p.UserID, other.UserID) &&
		ptrEqual(p.OrganizationARN, other.OrganizationARN) &&
		ptrEqual(p.OrganizationalUnitARN, other.OrganizationalUnitARN)
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func permissionsEqual(a, b []LaunchPermission) bool {
	if (a == nil) != (b == nil) || len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}
