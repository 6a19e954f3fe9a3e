package planstore

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/plan"
	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/resource"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPlan() *plan.Plan {
	return &plan.Plan{
		Region:      "eu-west-1",
		AlarmSuffix: "-cloudwatch-alarm",
		Creates: []plan.CreateAction{{
			ResourceType: resource.TypeQueue,
			ResourceName: "orders",
			AlarmName:    "orders-cloudwatch-alarm",
			Threshold:    5,
			MetricName:   "ApproximateNumberOfMessagesVisible",
		}},
		Deletes: []plan.DeleteAction{{AlarmName: "stale-cloudwatch-alarm"}},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.txt")
	store := NewFileStore(path, discardLogger())

	require.NoError(t, store.Save(context.Background(), testPlan()))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testPlan(), loaded)
}

func TestFileStore_SaveReplacesExistingPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.txt")
	require.NoError(t, os.WriteFile(path, []byte("REGION=us-east-1\n---CREATE---\n"), 0o644))

	store := NewFileStore(path, discardLogger())
	require.NoError(t, store.Save(context.Background(), testPlan()))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testPlan(), loaded)

	// The swap leaves no temp files behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "plan.txt", entries[0].Name())
}

func TestFileStore_MissingPlan(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.txt"), discardLogger())

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_Load(t *testing.T) {
	mockS3 := new(S3APIMock)
	store := NewS3Store(mockS3, "artifacts", "plans/latest.txt", discardLogger())

	var buf bytes.Buffer
	require.NoError(t, plan.Encode(&buf, testPlan()))

	mockS3.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Bucket == "artifacts" && *input.Key == "plans/latest.txt"
	}), mock.Anything).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(&buf),
	}, nil).Once()

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testPlan(), loaded)
	mockS3.AssertExpectations(t)
}

func TestS3Store_MissingObject(t *testing.T) {
	mockS3 := new(S3APIMock)
	store := NewS3Store(mockS3, "artifacts", "plans/latest.txt", discardLogger())

	mockS3.On("GetObject", mock.Anything, mock.Anything, mock.Anything).
		Return((*s3.GetObjectOutput)(nil), &s3types.NoSuchKey{}).Once()

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_Save(t *testing.T) {
	mockS3 := new(S3APIMock)
	store := NewS3Store(mockS3, "artifacts", "plans/latest.txt", discardLogger())

	var body []byte
	mockS3.On("PutObject", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			input := args.Get(1).(*s3.PutObjectInput)
			var err error
			body, err = io.ReadAll(input.Body)
			require.NoError(t, err)
		}).
		Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Save(context.Background(), testPlan()))

	loaded, err := plan.Decode(bytes.NewReader(body), discardLogger())
	require.NoError(t, err)
	assert.Equal(t, testPlan(), loaded)
	mockS3.AssertExpectations(t)
}
