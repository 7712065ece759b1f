package checks

import (
	"context"
	"errors"
	"testing"

	"calendar-mirror/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestCheckStorage(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "calendar-mirror").Return(false, nil)

		report, err := CheckStorage(context.Background(), mockClient, "calendar-mirror", "reports")
		require.NoError(t, err)
		assert.False(t, report.Exists)
		mockClient.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Counts Reports", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "calendar-mirror").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "calendar-mirror", minio.ListObjectsOptions{Prefix: "reports/", Recursive: true}).
			Return(objects("reports/2030/05/01/a.json", "reports/2030/05/01/b.json", "reports/README"))

		report, err := CheckStorage(context.Background(), mockClient, "calendar-mirror", "reports")
		require.NoError(t, err)
		assert.True(t, report.Exists)
		assert.Equal(t, 2, report.Reports)
	})

	t.Run("Bucket Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "calendar-mirror").Return(false, errors.New("connection refused"))

		_, err := CheckStorage(context.Background(), mockClient, "calendar-mirror", "reports")
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestFixStorage(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "calendar-mirror").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "calendar-mirror", minio.MakeBucketOptions{Region: "eu-west-3"}).Return(nil)

	err := FixStorage(context.Background(), mockClient, "calendar-mirror", "eu-west-3", zap.NewNop())
	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}
