package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/menulens/menulens/internal/storage"
)

func TestPutAppliesPrefixAndReturnsLogicalKey(t *testing.T) {
	fake := &fakeClient{}
	store, err := NewWithClient("menulens", "/menulens/prod/", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}

	info, err := store.Put(context.Background(), "/exports/date=2026-10-17/a.parquet", bytes.NewBufferString("abc"), 3, storage.PutOptions{ContentType: "application/vnd.apache.parquet"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if fake.lastBucket != "menulens" {
		t.Fatalf("bucket = %q", fake.lastBucket)
	}
	if fake.lastKey != "menulens/prod/exports/date=2026-10-17/a.parquet" {
		t.Fatalf("key = %q", fake.lastKey)
	}
	if info.Key != "/exports/date=2026-10-17/a.parquet" || info.Size != 3 {
		t.Fatalf("Put() info = %+v", info)
	}
	if fake.lastContentType != "application/vnd.apache.parquet" {
		t.Fatalf("content type = %q", fake.lastContentType)
	}
}

func TestObjectKeyRejectsTraversal(t *testing.T) {
	store, err := NewWithClient("menulens", "", &fakeClient{})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	for _, key := range []string{"", "  ", "../secrets.txt", "a/../../b", ".."} {
		if _, err := store.Put(context.Background(), key, bytes.NewBufferString("x"), 1, storage.PutOptions{}); err == nil {
			t.Fatalf("Put(%q) expected validation error", key)
		}
	}
}

func TestGetAndStatMapNotFound(t *testing.T) {
	store, err := NewWithClient("menulens", "", &fakeClient{missing: true})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if _, err := store.Get(context.Background(), "exports/x.parquet"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := store.Stat(context.Background(), "exports/x.parquet"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Stat() error = %v", err)
	}
}

func TestGetReturnsBody(t *testing.T) {
	store, err := NewWithClient("menulens", "root", &fakeClient{})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	reader, err := store.Get(context.Background(), "exports/x.parquet")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = reader.Close() }()
	body, _ := io.ReadAll(reader)
	if string(body) != "root/exports/x.parquet" {
		t.Fatalf("body = %q", body)
	}
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	fake := &fakeClient{}
	store, err := NewWithClient("menulens", "", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if err := store.ensureBucket(context.Background(), "us-east-1"); err != nil {
		t.Fatalf("ensureBucket() error = %v", err)
	}
	if !fake.bucketCreated || fake.createdRegion != "us-east-1" {
		t.Fatalf("bucket created = %v region = %q", fake.bucketCreated, fake.createdRegion)
	}
}

func TestPingRequiresExistingBucket(t *testing.T) {
	store, err := NewWithClient("menulens", "", &fakeClient{})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Fatal("Ping() expected error for missing bucket")
	}

	store, err = NewWithClient("menulens", "", &fakeClient{bucketExists: true})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestNewWithClientValidates(t *testing.T) {
	if _, err := NewWithClient("menulens", "", nil); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewWithClient(" ", "", &fakeClient{}); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}

func TestParseEndpoint(t *testing.T) {
	cases := []struct {
		raw      string
		useSSL   bool
		endpoint string
		secure   bool
	}{
		{raw: "https://minio.example.com", endpoint: "minio.example.com", secure: true},
		{raw: "http://localhost:9000", endpoint: "localhost:9000"},
		{raw: "localhost:9000", useSSL: true, endpoint: "localhost:9000", secure: true},
	}
	for _, tc := range cases {
		endpoint, secure, err := parseEndpoint(tc.raw, tc.useSSL)
		if err != nil {
			t.Fatalf("parseEndpoint(%q) error = %v", tc.raw, err)
		}
		if endpoint != tc.endpoint || secure != tc.secure {
			t.Fatalf("parseEndpoint(%q) = %q/%v", tc.raw, endpoint, secure)
		}
	}
	if _, _, err := parseEndpoint("ftp://host", false); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

type fakeClient struct {
	lastBucket      string
	lastKey         string
	lastContentType string
	bucketExists    bool
	bucketCreated   bool
	createdRegion   string
	missing         bool
}

func (f *fakeClient) PutObject(_ context.Context, bucket, key string, reader io.Reader, size int64, contentType string) (storage.ObjectInfo, error) {
	f.lastBucket = bucket
	f.lastKey = key
	f.lastContentType = contentType
	_, _ = io.Copy(io.Discard, reader)
	return storage.ObjectInfo{Key: key, Size: size, ETag: "etag-1"}, nil
}

func (f *fakeClient) GetObject(_ context.Context, _, key string) (io.ReadCloser, error) {
	if f.missing {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(key)), nil
}

func (f *fakeClient) StatObject(_ context.Context, _, key string) (storage.ObjectInfo, error) {
	if f.missing {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: key, Size: 10, LastModified: time.Now().UTC()}, nil
}

func (f *fakeClient) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeClient) MakeBucket(_ context.Context, _, region string) error {
	f.bucketCreated = true
	f.createdRegion = region
	return nil
}
