// Package state reads and writes the JSON documents pubsys consumes and
// produces, on local disk or in S3.
package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/output"
)

const s3Scheme = "s3://"

// Store reads and writes documents by location
type Store interface {
	// Read returns the contents of a document
	Read(ctx context.Context, location string) ([]byte, error)

	// Write replaces the contents of a document
	Write(ctx context.Context, location string, data []byte) error
}

// Documents routes s3:// locations to S3 and everything else to local disk
type Documents struct {
	local Store
	s3    Store
}

// NewDocuments creates a Documents. s3 may be nil, in which case s3://
// locations are rejected.
func NewDocuments(s3 Store) *Documents {
	return &Documents{local: FileStore{}, s3: s3}
}

func (d *Documents) storeFor(location string) (Store, error) {
	if !IsS3Location(location) {
		return d.local, nil
	}
	if d.s3 == nil {
		return nil, fmt.Errorf("no S3 client configured")
	}
	return d.s3, nil
}

// Read returns the document at location
func (d *Documents) Read(ctx context.Context, location string) ([]byte, error) {
	store, err := d.storeFor(location)
	if err != nil {
		return nil, &models.DocumentError{Location: location, Operation: "read", Cause: err}
	}
	output.Debug("Reading document", "location", location)
	data, err := store.Read(ctx, location)
	if err != nil {
		return nil, &models.DocumentError{Location: location, Operation: "read", Cause: err}
	}
	return data, nil
}

// Write stores data at location
func (d *Documents) Write(ctx context.Context, location string, data []byte) error {
	store, err := d.storeFor(location)
	if err != nil {
		return &models.DocumentError{Location: location, Operation: "write", Cause: err}
	}
	output.Debug("Writing document", "location", location, "bytes", len(data))
	if err := store.Write(ctx, location, data); err != nil {
		return &models.DocumentError{Location: location, Operation: "write", Cause: err}
	}
	return nil
}

// IsS3Location reports whether location is an s3:// URI
func IsS3Location(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// ParseS3Location splits an s3://bucket/key URI
func ParseS3Location(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !IsS3Location(location) || !ok || bucket == "" || key == "" {
		return "", "", &models.InputValidationError{
			InputType: "S3 location",
			Value:     location,
			Expected:  "s3://bucket/key",
		}
	}
	return bucket, key, nil
}
