package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket answers the path-style S3 calls the adapter makes, keeping
// objects in memory. ListObjectsV2 returns one key per page so the
// paginator is exercised.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	deletes int
}

type fakeObject struct {
	body        []byte
	contentType string
}

func xmlResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

func errorResponse(status int, code string) *http.Response {
	return xmlResponse(status, "<Error><Code>"+code+"</Code><Message>"+code+"</Message></Error>")
}

func (b *fakeBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// /bucket/key
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return b.list(req.URL.Query().Get("prefix"), req.URL.Query().Get("continuation-token")), nil
	}

	switch req.Method {
	case http.MethodHead:
		obj, ok := b.objects[key]
		if !ok {
			return errorResponse(http.StatusNotFound, "NotFound"), nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
		}}, nil
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		b.objects[key] = fakeObject{body: body, contentType: req.Header.Get("Content-Type")}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {`"etag"`}}}, nil
	case http.MethodGet:
		obj, ok := b.objects[key]
		if !ok {
			return errorResponse(http.StatusNotFound, "NoSuchKey"), nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(obj.body)), Header: http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
		}}, nil
	case http.MethodDelete:
		b.deletes++
		delete(b.objects, key)
		return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	return errorResponse(http.StatusNotImplemented, "NotImplemented"), nil
}

func (b *fakeBucket) list(prefix, after string) *http.Response {
	var keys []string
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) && k > after {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult>`)
	if len(keys) > 1 {
		fmt.Fprintf(&sb, "<IsTruncated>true</IsTruncated><NextContinuationToken>%s</NextContinuationToken>", keys[0])
	} else {
		sb.WriteString("<IsTruncated>false</IsTruncated>")
	}
	if len(keys) > 0 {
		fmt.Fprintf(&sb, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", keys[0], len(b.objects[keys[0]].body))
	}
	sb.WriteString("</ListBucketResult>")
	return xmlResponse(http.StatusOK, sb.String())
}

// decodeChunked unwraps a single-chunk aws-chunked body.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	n, err := strconv.ParseInt(strings.SplitN(parts[0], ";", 2)[0], 16, 64)
	if err != nil || n <= 0 || int64(len(parts[1])) != n || !strings.HasPrefix(parts[2], "0") {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newFakeS3(t *testing.T) (*S3, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{objects: make(map[string]fakeObject)}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://media.s3.test")
		o.HTTPClient = &http.Client{Transport: bucket}
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return &S3{client: client, bucket: "plan-media"}, bucket
}

func TestS3DeleteMissingSkipsDeleteCall(t *testing.T) {
	ctx := context.Background()
	st, bucket := newFakeS3(t)

	found, err := st.Delete(ctx, "logos/missing.png")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, bucket.deletes)

	require.NoError(t, st.Put(ctx, "logos/a.png", []byte("png"), "image/png"))
	found, err = st.Delete(ctx, "logos/a.png")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, bucket.deletes)
}

func TestS3ListPaginates(t *testing.T) {
	ctx := context.Background()
	st, _ := newFakeS3(t)

	for _, key := range []string{"logos/c", "logos/a", "other/x", "logos/b"} {
		require.NoError(t, st.Put(ctx, key, []byte(key), ""))
	}
	keys, err := st.List(ctx, "logos/")
	require.NoError(t, err)
	assert.Equal(t, []string{"logos/a", "logos/b", "logos/c"}, keys)

	keys, err = st.List(ctx, "none/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestS3GetMissingIsNotFound(t *testing.T) {
	st, _ := newFakeS3(t)
	_, err := st.Get(context.Background(), "logos/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapS3Error(t *testing.T) {
	assert.ErrorIs(t, mapS3Error(&types.NoSuchKey{}), ErrNotFound)
	assert.ErrorIs(t, mapS3Error(&types.NotFound{}), ErrNotFound)
	assert.ErrorIs(t, mapS3Error(fmt.Errorf("get: %w", &types.NoSuchKey{})), ErrNotFound)

	denied := errors.New("access denied")
	assert.Equal(t, denied, mapS3Error(denied))
	assert.NotErrorIs(t, mapS3Error(&types.NoSuchBucket{}), ErrNotFound)
}
