package ami

import (
	"context"
	"errors"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/output"
	"github.com/hemantobora/pubsys/internal/regional"
)

// API is the subset of the EC2 client used to describe images
type API interface {
	ec2.DescribeImagesAPIClient
	DescribeImageAttribute(ctx context.Context, params *ec2.DescribeImageAttributeInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImageAttributeOutput, error)
}

// RegionImages is the outcome of describing images in one region
type RegionImages struct {
	Images map[string]ImageDef
	Err    error
}

// Describe fetches the requested images in every region that has a client.
// Regions are independent: an error in one is kept in its RegionImages and
// never stops the others. expectedPublic must contain every requested id.
func Describe(ctx context.Context, clients map[string]API, idsByRegion map[string][]string, expectedPublic map[string]bool) map[string]RegionImages {
	regions := make([]string, 0, len(clients))
	for region := range clients {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	results := regional.Run(ctx, regions, regional.DefaultLimit, func(ctx context.Context, region string) (map[string]ImageDef, error) {
		return DescribeInRegion(ctx, region, clients[region], idsByRegion[region], expectedPublic)
	})

	out := make(map[string]RegionImages, len(results))
	for region, result := range results {
		out[region] = RegionImages{Images: result.Value, Err: result.Err}
	}
	return out
}

// DescribeInRegion pages through the requested images of one region,
// including deprecated ones, and attaches launch permissions to images
// expected to be private.
func DescribeInRegion(ctx context.Context, region string, client API, ids []string, expectedPublic map[string]bool) (map[string]ImageDef, error) {
	log := output.RegionLogger(region)
	images := make(map[string]ImageDef)
	if len(ids) == 0 {
		log.Debug("No images requested")
		return images, nil
	}

	log.Info("Retrieving images", "count", len(ids))
	paginator := ec2.NewDescribeImagesPaginator(client, &ec2.DescribeImagesInput{
		ImageIds:          ids,
		IncludeDeprecated: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logAPIError(region, "DescribeImages", err)
			return nil, &models.DescribeImagesError{Region: region, Cause: err}
		}
		for _, image := range page.Images {
			id := aws.ToString(image.ImageId)
			if id == "" {
				return nil, &models.MissingFieldError{Region: region, Field: "image_id"}
			}
			public, ok := expectedPublic[id]
			if !ok {
				return nil, &models.MissingExpectedPublicError{Region: region, ImageID: id}
			}

			def := FromEC2Image(image)
			if !public {
				log.Debug("Retrieving launch permissions", "image", id)
				perms, err := launchPermissions(ctx, client, id)
				if err != nil {
					logAPIError(region, "DescribeImageAttribute", err)
					return nil, &models.LaunchPermissionsError{Region: region, ImageID: id, Cause: err}
				}
				def.LaunchPermissions = perms
			}
			images[id] = def
		}
	}
	log.Info("Images retrieved", "count", len(images))
	return images, nil
}

func launchPermissions(ctx context.Context, client API, imageID string) ([]LaunchPermission, error) {
	resp, err := client.DescribeImageAttribute(ctx, &ec2.DescribeImageAttributeInput{
		ImageId:   aws.String(imageID),
		Attribute: ec2types.ImageAttributeNameLaunchPermission,
	})
	if err != nil {
		return nil, err
	}
	perms := make([]LaunchPermission, 0, len(resp.LaunchPermissions))
	for _, p := range resp.LaunchPermissions {
		perms = append(perms, FromEC2LaunchPermission(p))
	}
	return perms, nil
}

func logAPIError(region, operation string, err error) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		output.RegionLogger(region).Debug("API call failed",
			"operation", operation,
			"code", apiErr.ErrorCode(),
			"message", apiErr.ErrorMessage())
	}
}
