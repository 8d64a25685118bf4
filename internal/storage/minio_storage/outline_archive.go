package minio_storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"LearnScope/internal/app_errors"
	"LearnScope/internal/models"

	"github.com/minio/minio-go/v7"
)

// OutlineArchive keeps a JSON snapshot of every published outline version.
// The relational store only holds the latest version; the archive is the
// historical record publishers can diff against.
type OutlineArchive struct {
	storage *MinioStorage
	bucket  string
}

func NewOutlineArchive(storage *MinioStorage, bucketName string) (*OutlineArchive, error) {
	if err := storage.ensureBucket(context.Background(), bucketName); err != nil {
		return nil, err
	}
	return &OutlineArchive{storage: storage, bucket: bucketName}, nil
}

func archiveObjectKey(courseKey models.CourseKey, publishedVersion string) string {
	return fmt.Sprintf("outlines/%s/%s.json", courseKey, publishedVersion)
}

func (a *OutlineArchive) StoreSnapshot(ctx context.Context, outline models.CourseOutlineData) error {
	data, err := json.Marshal(outline)
	if err != nil {
		return fmt.Errorf("marshal outline snapshot: %w", err)
	}

	objectKey := archiveObjectKey(outline.CourseKey, outline.PublishedVersion)
	_, err = a.storage.client.PutObject(
		ctx,
		a.bucket,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("store outline snapshot %s: %w", objectKey, err)
	}
	return nil
}

func (a *OutlineArchive) Snapshot(ctx context.Context, courseKey models.CourseKey, publishedVersion string) (models.CourseOutlineData, error) {
	objectKey := archiveObjectKey(courseKey, publishedVersion)
	obj, err := a.storage.client.GetObject(ctx, a.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return models.CourseOutlineData{}, fmt.Errorf("get outline snapshot %s: %w", objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// Object access is lazy; a missing snapshot surfaces here.
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return models.CourseOutlineData{}, app_errors.ErrOutlineNotFound
		}
		return models.CourseOutlineData{}, fmt.Errorf("read outline snapshot %s: %w", objectKey, err)
	}
	var outline models.CourseOutlineData
	if err := json.Unmarshal(data, &outline); err != nil {
		return models.CourseOutlineData{}, fmt.Errorf("decode outline snapshot %s: %w", objectKey, err)
	}
	return outline, nil
}
