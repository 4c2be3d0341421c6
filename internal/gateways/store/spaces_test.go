package store

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string][]byte
	puts    int
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func TestSpacesBackend(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}}
	backend := NewSpacesBackend(bucket, "slots", "/bot/database.json")
	s := New(backend)
	ctx := context.Background()

	_, err := backend.Read(ctx)
	require.ErrorIs(t, err, ErrNotExist)
	require.Empty(t, s.Load(ctx).Slots)

	bucket.objects["bot/database.json"] = []byte(wellFormed)
	doc := s.Load(ctx)
	require.Len(t, doc.Slots, 1)

	require.NoError(t, s.Save(ctx, doc))
	require.Equal(t, 1, bucket.puts)
	require.Equal(t, wellFormed, string(bucket.objects["bot/database.json"]))
}
