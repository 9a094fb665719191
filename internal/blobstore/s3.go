// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// NotFoundError wraps an S3 "no such key" failure. It implements
// NotFound() bool so internal/usecase.classifyBlobError can route it to
// KindPermanentUpstream without importing this package.
type NotFoundError struct {
	Bucket, Key string
	Err         error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blobstore: object %s/%s not found: %v", e.Bucket, e.Key, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }
func (e *NotFoundError) NotFound() bool { return true }

// Config is the subset of S3 connection settings the blob store needs.
// Field names mirror the teacher's backend config shape.
type Config struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Store is the blob-store collaborator adapter: a thin wrapper around
// the AWS S3 SDK exposing exactly the Get/Put surface the Extraction
// use-case and the ingest CLI need.
type Store struct {
	client *s3.Client
	bucket string
}

// New builds a Store from cfg. Mirrors the teacher-adjacent S3 client
// construction (static credentials, optional non-AWS endpoint override
// for S3-compatible backends like MinIO).
func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("blobstore: loading aws config: %w", err)
	}

	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &Store{client: s3.NewFromConfig(awsCfg, opts...), bucket: cfg.Bucket}, nil
}

// Get implements usecase.BlobStore: fetches the full object body at
// path. A missing key is surfaced as a *NotFoundError.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var apiErr smithy.APIError
		if errors.As(err, &noSuchKey) || (errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound") {
			return nil, &NotFoundError{Bucket: s.bucket, Key: path, Err: err}
		}
		return nil, fmt.Errorf("blobstore: getting %s/%s: %w", s.bucket, path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("blobstore: reading body of %s/%s: %w", s.bucket, path, err)
	}
	return data, nil
}

// Put uploads data at path, used by the ingest CLI to stage a document
// before publishing its ExtractJob.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("blobstore: putting %s/%s: %w", s.bucket, path, err)
	}
	return nil
}
