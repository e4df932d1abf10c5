package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/citizendesk/grievance-server/internal/common"
	sc "github.com/citizendesk/grievance-server/internal/server/config"
)

// Package-level seams so tests can stub the AWS SDK without a live endpoint.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// S3Gateway implements Gateway on top of the AWS SDK. It also works against
// MinIO and other S3-compatible stores via the base endpoint setting.
type S3Gateway struct {
	bucket       string
	region       string
	baseEndpoint string
	user         string
	password     string
}

func NewS3Gateway(cfg *sc.Config) *S3Gateway {
	return &S3Gateway{
		bucket:       cfg.S3Bucket,
		region:       cfg.S3Region,
		baseEndpoint: cfg.S3BaseEndpoint,
		user:         cfg.S3RootUser,
		password:     cfg.S3RootPassword,
	}
}

func (g *S3Gateway) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(g.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			g.user,
			g.password,
			"",
		)))
	if err != nil {
		return nil, storageErr("load aws config", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if g.baseEndpoint != "" {
			o.BaseEndpoint = aws.String(g.baseEndpoint)
			o.UsePathStyle = true
		}
	})

	return client, nil
}

func (g *S3Gateway) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	client, err := g.client(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket:      &g.bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", storageErr("presign put", err)
	}

	return req.URL, nil
}

func (g *S3Gateway) Probe(ctx context.Context, key string) (ObjectInfo, error) {
	client, err := g.client(ctx)
	if err != nil {
		return ObjectInfo{}, err
	}

	out, err := headObject(client, ctx, &s3.HeadObjectInput{
		Bucket: &g.bucket,
		Key:    &key,
	})
	if err != nil {
		if isNotFound(err) {
			return ObjectInfo{Exists: false}, nil
		}
		return ObjectInfo{}, storageErr("head object", err)
	}

	return ObjectInfo{Exists: true, Size: aws.ToInt64(out.ContentLength)}, nil
}

// PublicURL is a pure derivation; it does not contact the store and is not
// authoritative for access control.
func (g *S3Gateway) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", g.bucket, g.region, key)
}

func (g *S3Gateway) Delete(ctx context.Context, key string) error {
	client, err := g.client(ctx)
	if err != nil {
		return err
	}

	// S3 DeleteObject already succeeds on absent keys.
	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: &g.bucket,
		Key:    &key,
	})
	if err != nil {
		return storageErr("delete object", err)
	}
	return nil
}

func (g *S3Gateway) PutBytes(ctx context.Context, key, contentType string, data []byte) (string, error) {
	client, err := g.client(ctx)
	if err != nil {
		return "", err
	}

	size := int64(len(data))
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &g.bucket,
		Key:           &key,
		ContentType:   &contentType,
		ContentLength: &size,
		Body:          bytes.NewReader(data),
	})
	if err != nil {
		return "", storageErr("put object", err)
	}

	return g.PublicURL(key), nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageUnavailable, err)
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && (ae.ErrorCode() == "NotFound" || ae.ErrorCode() == "NoSuchKey")
}
