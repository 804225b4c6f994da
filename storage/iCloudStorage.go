package storage

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CloudStorageProxy browses the photo container of a signed-in account.
type CloudStorageProxy interface {
	ListFiles(ctx context.Context, containerName string, maxNumber int, prefix string) ([]string, error)
	ListFolders(ctx context.Context, containerName string, maxNumber int, prefix string) ([]string, error)
	GetFile(ctx context.Context, containerName string, fileName string) (CloudFile, error)
	GetMetadata(ctx context.Context, containerName string, fileName string) (map[string]string, error)
	GetFileContentAsInputStream(ctx context.Context, containerName string, fileName string) (io.ReadCloser, error)
}

type CloudFile struct {
	Container string
	FileName  string
	Metadata  map[string]string
	Content   []byte
}

type CloudStorageError struct {
	message       string
	internalError error
}

func (err *CloudStorageError) Error() string {
	if err.internalError != nil {
		return fmt.Sprintf("CloudStorage Error: %s: %s", err.message, err.internalError.Error())
	}
	return fmt.Sprintf("CloudStorage Error: %s", err.message)
}

func (err *CloudStorageError) Unwrap() error {
	return err.internalError
}

func wrapError(msg string, err error) *CloudStorageError {
	return &CloudStorageError{message: msg, internalError: err}
}

type blobListType int

const (
	listTypeFile blobListType = iota
	listTypeFolder
)

const (
	max_RESULT     = 5000
	time_FORMAT    = time.RFC3339
	size_5MiB      = 5 * 1024 * 1024
	max_PARTS      = 10000
	max_CONCURRENT = 5

	MetadataLastModified  = "last_modified"
	MetadataContentLength = "content_length"
	MetadataContentType   = "content_type"
)

func getStringAsInt64(s string) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return i
}
