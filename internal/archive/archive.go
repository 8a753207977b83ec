// Package archive exports execution snapshots to S3-compatible object
// storage.
package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/roach88/qtrace/internal/config"
	"github.com/roach88/qtrace/internal/ir"
)

// Prefix is the key prefix under which snapshots are written.
const Prefix = "executions"

// Client is the subset of *minio.Client the exporter uses.
type Client interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Dial creates a MinIO client for cfg.
func Dial(cfg config.Archive) (*minio.Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("archive endpoint is not configured")
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
}

// Exporter writes execution snapshots into one bucket.
type Exporter struct {
	client Client
	bucket string
	region string
}

// NewExporter creates an exporter for bucket.
func NewExporter(client Client, bucket, region string) *Exporter {
	return &Exporter{client: client, bucket: bucket, region: region}
}

// Object describes a written snapshot.
type Object struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Key returns the object key of an execution's snapshot.
func Key(executionID string) string {
	return path.Join(Prefix, executionID+".json")
}

// EnsureBucket creates the bucket if it does not exist.
func (e *Exporter) EnsureBucket(ctx context.Context) error {
	exists, err := e.client.BucketExists(ctx, e.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", e.bucket, err)
	}
	if exists {
		return nil
	}
	if err := e.client.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{Region: e.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", e.bucket, err)
	}
	return nil
}

// Export writes exec as JSON to executions/<id>.json. The log and graph
// digests travel as object metadata so a snapshot can be checked against
// the store without downloading it.
func (e *Exporter) Export(ctx context.Context, exec *ir.Execution) (Object, error) {
	data, err := json.Marshal(exec)
	if err != nil {
		return Object{}, fmt.Errorf("marshal execution %s: %w", exec.ID, err)
	}
	sum := sha256.Sum256(data)
	obj := Object{
		Bucket: e.bucket,
		Key:    Key(exec.ID),
		Size:   int64(len(data)),
		SHA256: hex.EncodeToString(sum[:]),
	}

	_, err = e.client.PutObject(ctx, e.bucket, obj.Key, bytes.NewReader(data), obj.Size, minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"execution-id":   exec.ID,
			"log-digest":     exec.LogDigest,
			"graph-digest":   exec.GraphDigest,
			"content-sha256": obj.SHA256,
			"schema-version": ir.SchemaVersion,
		},
	})
	if err != nil {
		return Object{}, fmt.Errorf("put %s: %w", obj.Key, err)
	}
	return obj, nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
