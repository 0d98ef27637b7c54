package utils

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeGetter struct {
	body string
	err  error
	got  *s3.GetObjectInput
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestCatalogBucketOpen(t *testing.T) {
	fake := &fakeGetter{body: `{"badges":[]}`}
	b := NewCatalogBucketWithClient(fake, "catalogs", "catalog/catalog.json")

	rc, err := b.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `{"badges":[]}` {
		t.Errorf("body = %q", data)
	}
	if aws.ToString(fake.got.Bucket) != "catalogs" || aws.ToString(fake.got.Key) != "catalog/catalog.json" {
		t.Errorf("request = %s/%s", aws.ToString(fake.got.Bucket), aws.ToString(fake.got.Key))
	}
}

func TestCatalogBucketOpenError(t *testing.T) {
	b := NewCatalogBucketWithClient(&fakeGetter{err: errors.New("no such key")}, "catalogs", "missing.json")
	if _, err := b.Open(context.Background()); err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("Open error = %v", err)
	}
}
