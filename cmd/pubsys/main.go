package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hemantobora/pubsys/internal/config"
	"github.com/hemantobora/pubsys/internal/output"
)

func main() {
	app := &cli.App{
		Name:  "pubsys",
		Usage: "Promote and validate image metadata across AWS regions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "infra-config",
				Usage:   "Path to the infrastructure config file",
				Value:   config.DefaultPath,
				EnvVars: []string{"PUBSYS_INFRA_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "AWS credential profile name (overrides aws.profile)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			output.SetupLogging(c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "promote-ssm",
				Usage: "Copy SSM parameters from one image version to another",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "arch",
						Usage:    "Architecture of the image (x86_64, arm64)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "variant",
						Usage:    "Variant of the image",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Usage:    "Version whose parameters are copied",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "target",
						Usage:    "Version the parameters are copied to",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "regions",
						Usage: "Regions to promote in (overrides aws.regions)",
					},
					&cli.StringFlag{
						Name:     "template-path",
						Usage:    "Path or s3:// URI of the parameter template file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "ssm-parameter-output",
						Usage: "Path or s3:// URI of a parameter document to merge the promoted values into",
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Write parameters without asking for confirmation",
					},
				},
				Action: promoteSSMCommand,
			},
			{
				Name:  "validate-ami",
				Usage: "Validate live EC2 images against expected definitions",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "expected-amis-path",
						Usage:    "Path or s3:// URI of the expected images document",
						Required: true,
					},
				}, resultFlags()...),
				Action: validateAMICommand,
			},
			{
				Name:  "validate-ssm",
				Usage: "Validate live SSM parameters against expected values",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "expected-parameters-path",
						Usage:    "Path or s3:// URI of the expected parameters document",
						Required: true,
					},
				}, resultFlags()...),
				Action: validateSSMCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		output.Fatal(err.Error())
	}
}

func resultFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "write-results-path",
			Usage: "Path or s3:// URI to write validation results to",
		},
		&cli.StringSliceFlag{
			Name:  "write-results-filter",
			Usage: "Only write results with these statuses (Correct, Incorrect, Missing)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the per-region summary as JSON",
		},
	}
}
