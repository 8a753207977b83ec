package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qtrace/internal/config"
	"github.com/roach88/qtrace/internal/graph"
	"github.com/roach88/qtrace/internal/ir"
)

type put struct {
	bucket, key string
	body        []byte
	opts        minio.PutObjectOptions
}

type fakeClient struct {
	buckets map[string]bool
	made    []string
	puts    []put
	putErr  error
}

func (f *fakeClient) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeClient) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	return nil
}

func (f *fakeClient) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if int64(len(body)) != size {
		return minio.UploadInfo{}, errors.New("size mismatch")
	}
	f.puts = append(f.puts, put{bucket: bucket, key: object, body: body, opts: opts})
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func bellExecution(t *testing.T) *ir.Execution {
	t.Helper()
	log := ir.EventLog{
		ir.NewStart(0),
		ir.NewGate(1, "H", 0),
		ir.NewGate(2, "CX", 0, 1),
		ir.NewMeasurement(3, []int{0}, []int{0}),
		ir.NewMeasurement(4, []int{1}, []int{1}),
		ir.NewEnd(5),
	}
	g := graph.MustBuild(log)
	digest, err := ir.EventLogDigest(log)
	require.NoError(t, err)
	return &ir.Execution{
		ExecutionMeta: ir.ExecutionMeta{
			ID:          "exec-1",
			CircuitName: "bell",
			NumEvents:   6,
			NumGates:    2,
			LogDigest:   digest,
			GraphDigest: ir.MustGraphDigest(g),
			CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Events: log,
		Graph:  g,
	}
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	fc := &fakeClient{buckets: map[string]bool{}}
	require.NoError(t, NewExporter(fc, "snapshots", "").EnsureBucket(ctx))
	assert.Equal(t, []string{"snapshots"}, fc.made)

	fc = &fakeClient{buckets: map[string]bool{"snapshots": true}}
	require.NoError(t, NewExporter(fc, "snapshots", "").EnsureBucket(ctx))
	assert.Empty(t, fc.made)
}

func TestExport(t *testing.T) {
	fc := &fakeClient{}
	exec := bellExecution(t)

	obj, err := NewExporter(fc, "snapshots", "").Export(context.Background(), exec)
	require.NoError(t, err)

	assert.Equal(t, "executions/exec-1.json", obj.Key)
	require.Len(t, fc.puts, 1)
	p := fc.puts[0]
	assert.Equal(t, "snapshots", p.bucket)
	assert.Equal(t, obj.Key, p.key)
	assert.Equal(t, obj.Size, int64(len(p.body)))
	assert.Equal(t, "application/json", p.opts.ContentType)
	assert.Equal(t, exec.GraphDigest, p.opts.UserMetadata["graph-digest"])
	assert.Equal(t, exec.LogDigest, p.opts.UserMetadata["log-digest"])
	assert.Equal(t, obj.SHA256, p.opts.UserMetadata["content-sha256"])

	var back ir.Execution
	require.NoError(t, json.Unmarshal(p.body, &back))
	assert.Equal(t, exec.Events, back.Events)
	assert.Equal(t, exec.Graph, back.Graph)
	assert.Equal(t, ir.MustGraphDigest(back.Graph), exec.GraphDigest)
}

func TestExportIsDeterministic(t *testing.T) {
	fc := &fakeClient{}
	ex := NewExporter(fc, "b", "")
	exec := bellExecution(t)

	a, err := ex.Export(context.Background(), exec)
	require.NoError(t, err)
	b, err := ex.Export(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, a.SHA256, b.SHA256)
	assert.Equal(t, fc.puts[0].body, fc.puts[1].body)
}

func TestExportPutFailure(t *testing.T) {
	fc := &fakeClient{putErr: errors.New("connection refused")}
	_, err := NewExporter(fc, "b", "").Export(context.Background(), bellExecution(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executions/exec-1.json")
}

func TestDialRequiresEndpoint(t *testing.T) {
	_, err := Dial(config.Archive{})
	assert.Error(t, err)

	client, err := Dial(config.Archive{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
