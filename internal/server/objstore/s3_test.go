package objstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/citizendesk/grievance-server/internal/common"
	sc "github.com/citizendesk/grievance-server/internal/server/config"
)

func newTestGateway() *S3Gateway {
	return NewS3Gateway(&sc.Config{
		S3Bucket:       "grievance-files",
		S3Region:       "us-east-1",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
	})
}

func stubSeams(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPre := newS3PresignClient
	origPresignPut := presignPutObject
	origHead := headObject
	origPut := putObject
	origDelete := deleteObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		newS3PresignClient = origPre
		presignPutObject = origPresignPut
		headObject = origHead
		putObject = origPut
		deleteObject = origDelete
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestPublicURL(t *testing.T) {
	g := newTestGateway()
	got := g.PublicURL("grievances/7/abc_photo.jpg")
	want := "https://grievance-files.s3.us-east-1.amazonaws.com/grievances/7/abc_photo.jpg"
	if got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}
}

func TestClient_AppliesBaseEndpoint(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	var captured s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&captured)
		}
		return &s3.Client{}
	}

	if _, err := g.client(context.Background()); err != nil {
		t.Fatalf("client err: %v", err)
	}
	if captured.BaseEndpoint == nil || *captured.BaseEndpoint != "http://127.0.0.1:9000/" {
		t.Fatalf("BaseEndpoint not applied: %v", captured.BaseEndpoint)
	}
	if !captured.UsePathStyle {
		t.Fatal("UsePathStyle must be set for custom endpoints")
	}
}

func TestPresignPut_Success(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	var gotKey, gotContentType string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotKey = aws.ToString(in.Key)
		gotContentType = aws.ToString(in.ContentType)
		return &v4.PresignedHTTPRequest{URL: "https://signed.example/put"}, nil
	}

	url, err := g.PresignPut(context.Background(), "grievances/1/k", "image/png", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignPut err: %v", err)
	}
	if url != "https://signed.example/put" {
		t.Fatalf("unexpected url %q", url)
	}
	if gotKey != "grievances/1/k" || gotContentType != "image/png" {
		t.Fatalf("wrong input: key=%q ct=%q", gotKey, gotContentType)
	}
}

func TestPresignPut_Error(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("boom")
	}

	_, err := g.PresignPut(context.Background(), "k", "image/png", time.Minute)
	if !errors.Is(err, common.ErrStorageUnavailable) {
		t.Fatalf("want ErrStorageUnavailable, got %v", err)
	}
}

func TestProbe_Exists(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return &s3.HeadObjectOutput{ContentLength: aws.Int64(1234)}, nil
	}

	info, err := g.Probe(context.Background(), "k")
	if err != nil {
		t.Fatalf("Probe err: %v", err)
	}
	if !info.Exists || info.Size != 1234 {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestProbe_Absent(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return nil, &types.NotFound{}
	}

	info, err := g.Probe(context.Background(), "k")
	if err != nil {
		t.Fatalf("absent object must not be an error, got %v", err)
	}
	if info.Exists {
		t.Fatal("expected Exists=false")
	}
}

func TestProbe_StoreError(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return nil, errors.New("network down")
	}

	_, err := g.Probe(context.Background(), "k")
	if !errors.Is(err, common.ErrStorageUnavailable) {
		t.Fatalf("want ErrStorageUnavailable, got %v", err)
	}
}

func TestPutBytes_ReturnsPublicURL(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	var gotLen int64
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotLen = aws.ToInt64(in.ContentLength)
		return &s3.PutObjectOutput{}, nil
	}

	url, err := g.PutBytes(context.Background(), "grievances/2/k_a.png", "image/png", []byte("imagedata"))
	if err != nil {
		t.Fatalf("PutBytes err: %v", err)
	}
	if url != g.PublicURL("grievances/2/k_a.png") {
		t.Fatalf("unexpected url %q", url)
	}
	if gotLen != int64(len("imagedata")) {
		t.Fatalf("content length not propagated: %d", gotLen)
	}
}

func TestDelete_Error(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return nil, errors.New("boom")
	}

	if err := g.Delete(context.Background(), "k"); !errors.Is(err, common.ErrStorageUnavailable) {
		t.Fatalf("want ErrStorageUnavailable, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	stubSeams(t)
	g := newTestGateway()

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return &s3.DeleteObjectOutput{}, nil
	}

	if err := g.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
}
