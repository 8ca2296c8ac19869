package sync

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// objectPutter is the part of *s3.Client the destination uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination uploads the catalog export to an S3-compatible bucket,
// skipping uploads whose catalog content matches the previous one.
type S3Destination struct {
	client objectPutter
	bucket string
	key    string

	mu   sync.Mutex
	last [sha256.Size]byte
}

// NewS3Destination creates an S3 destination. A non-empty endpoint selects
// path-style addressing for MinIO and similar servers.
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Destination{client: client, bucket: bucket, key: key}, nil
}

func (d *S3Destination) String() string {
	return "s3://" + d.bucket + "/" + d.key
}

func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	sum := sha256.Sum256(catalogBody(data))

	d.mu.Lock()
	defer d.mu.Unlock()
	if sum == d.last {
		return nil
	}

	in := &s3.PutObjectInput{
		Bucket:            aws.String(d.bucket),
		Key:               aws.String(d.key),
		Body:              bytes.NewReader(data),
		ContentType:       aws.String("application/x-ndjson"),
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
		Metadata:          map[string]string{"exported-by": "appdeck"},
	}
	if h, ok := parseHeader(data); ok {
		in.Metadata["application-count"] = strconv.Itoa(h.ApplicationCount)
		in.Metadata["entry-count"] = strconv.Itoa(h.EntryCount)
	}
	if _, err := d.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put object %s: %w", d, err)
	}
	d.last = sum
	return nil
}

// catalogBody strips the header line, whose timestamp changes on every
// export.
func catalogBody(data []byte) []byte {
	if _, ok := parseHeader(data); !ok {
		return data
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[i+1:]
	}
	return nil
}
