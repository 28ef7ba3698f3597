package ami

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// fakeEC2 serves images one per page so paging is exercised
type fakeEC2 struct {
	mu             sync.Mutex
	images         map[string]ec2types.Image
	permissions    map[string][]ec2types.LaunchPermission
	describeErr    error
	attributeErr   error
	describeCalls  int
	attributeCalls []string
}

func newFakeEC2(images ...ec2types.Image) *fakeEC2 {
	f := &fakeEC2{
		images:      map[string]ec2types.Image{},
		permissions: map[string][]ec2types.LaunchPermission{},
	}
	for _, image := range images {
		f.images[aws.ToString(image.ImageId)] = image
	}
	return f
}

func (f *fakeEC2) DescribeImages(_ context.Context, params *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeCalls++
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	if !aws.ToBool(params.IncludeDeprecated) {
		return nil, fmt.Errorf("deprecated images must be included")
	}

	var matched []ec2types.Image
	for _, id := range params.ImageIds {
		if image, ok := f.images[id]; ok {
			matched = append(matched, image)
		}
	}

	start := 0
	if params.NextToken != nil {
		fmt.Sscanf(*params.NextToken, "%d", &start)
	}
	out := &ec2.DescribeImagesOutput{}
	if start < len(matched) {
		out.Images = matched[start : start+1]
	}
	if start+1 < len(matched) {
		out.NextToken = aws.String(fmt.Sprintf("%d", start+1))
	}
	return out, nil
}

func (f *fakeEC2) DescribeImageAttribute(_ context.Context, params *ec2.DescribeImageAttributeInput, _ ...func(*ec2.Options)) (*ec2.DescribeImageAttributeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attributeCalls = append(f.attributeCalls, aws.ToString(params.ImageId))
	if f.attributeErr != nil {
		return nil, f.attributeErr
	}
	return &ec2.DescribeImageAttributeOutput{
		ImageId:           params.ImageId,
		LaunchPermissions: f.permissions[aws.ToString(params.ImageId)],
	}, nil
}

func ec2Image(id, name string, public bool) ec2types.Image {
	return ec2types.Image{
		ImageId:         aws.String(id),
		Name:            aws.String(name),
		Public:          aws.Bool(public),
		EnaSupport:      aws.Bool(true),
		SriovNetSupport: aws.String("simple"),
	}
}
