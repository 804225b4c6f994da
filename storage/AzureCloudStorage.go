package storage

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

type AzureCloudStorageProxy struct {
	blobServiceClient *azblob.Client
}

func (handler ProxyAuthHandlerAzureToken) createProxy() (CloudStorageProxy, error) {
	if handler.Credential == nil {
		return nil, wrapError("no signed-in credential for "+handler.AccountURL, nil)
	}
	client, err := azblob.NewClient(handler.AccountURL, handler.Credential, nil)
	if err != nil {
		return nil, wrapError("unable to create Azure blob service client", err)
	}
	return &AzureCloudStorageProxy{blobServiceClient: client}, nil
}

func (handler ProxyAuthHandlerAzureConnectionString) createProxy() (CloudStorageProxy, error) {
	client, err := azblob.NewClientFromConnectionString(handler.ConnectionString, nil)
	if err != nil {
		return nil, wrapError("unable to create Azure blob service client from connection string", err)
	}
	return &AzureCloudStorageProxy{blobServiceClient: client}, nil
}

func (az *AzureCloudStorageProxy) listFilesOrFolders(ctx context.Context, containerName string, maxNumber int,
	prefix string, listType blobListType) ([]string, error) {
	if maxNumber <= 0 {
		maxNumber = max_RESULT
	}
	maxResults := int32(maxNumber)
	options := &container.ListBlobsHierarchyOptions{MaxResults: &maxResults}
	if prefix != "" {
		options.Prefix = &prefix
	}
	pager := az.blobServiceClient.ServiceClient().NewContainerClient(containerName).
		NewListBlobsHierarchyPager("/", options)

	itemList := make([]string, 0)
	for pager.More() && len(itemList) < maxNumber {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return itemList, wrapError(fmt.Sprintf("unable to list contents of container %s", containerName), err)
		}
		if resp.Segment == nil {
			break
		}
		if listType == listTypeFile {
			for _, blob := range resp.Segment.BlobItems {
				if len(itemList) >= maxNumber {
					break
				}
				itemList = append(itemList, *blob.Name)
			}
		} else {
			for _, p := range resp.Segment.BlobPrefixes {
				if len(itemList) >= maxNumber {
					break
				}
				itemList = append(itemList, *p.Name)
			}
		}
	}
	return itemList, nil
}

func (az *AzureCloudStorageProxy) ListFiles(ctx context.Context, containerName string, maxNumber int,
	prefix string) ([]string, error) {
	return az.listFilesOrFolders(ctx, containerName, maxNumber, prefix, listTypeFile)
}

func (az *AzureCloudStorageProxy) ListFolders(ctx context.Context, containerName string, maxNumber int,
	prefix string) ([]string, error) {
	return az.listFilesOrFolders(ctx, containerName, maxNumber, prefix, listTypeFolder)
}

func (az *AzureCloudStorageProxy) GetMetadata(ctx context.Context, containerName string,
	fileName string) (map[string]string, error) {
	blobClient := az.blobServiceClient.ServiceClient().NewContainerClient(containerName).NewBlobClient(fileName)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return nil, wrapError("unable to get metadata for blob "+fileName, err)
	}
	metadata := make(map[string]string, len(props.Metadata)+3)
	for k, v := range props.Metadata {
		if v != nil {
			metadata[k] = *v
		}
	}
	if props.LastModified != nil {
		metadata[MetadataLastModified] = props.LastModified.Format(time_FORMAT)
	}
	if props.ContentLength != nil {
		metadata[MetadataContentLength] = strconv.FormatInt(*props.ContentLength, 10)
	}
	if props.ContentType != nil {
		metadata[MetadataContentType] = *props.ContentType
	}
	return metadata, nil
}

func (az *AzureCloudStorageProxy) GetFileContentAsInputStream(ctx context.Context, containerName string,
	fileName string) (io.ReadCloser, error) {
	resp, err := az.blobServiceClient.DownloadStream(ctx, containerName, fileName, nil)
	if err != nil {
		return nil, wrapError("unable to get stream reader for blob "+fileName, err)
	}
	return resp.Body, nil
}

func (az *AzureCloudStorageProxy) GetFile(ctx context.Context, containerName string, fileName string) (CloudFile, error) {
	cloudFile := CloudFile{Container: containerName, FileName: fileName}
	metadata, err := az.GetMetadata(ctx, containerName, fileName)
	if err != nil {
		return cloudFile, err
	}
	cloudFile.Metadata = metadata
	body, err := az.GetFileContentAsInputStream(ctx, containerName, fileName)
	if err != nil {
		return cloudFile, err
	}
	defer body.Close()
	content, err := io.ReadAll(body)
	if err != nil {
		return cloudFile, wrapError("unable to read content of blob "+fileName, err)
	}
	cloudFile.Content = content
	return cloudFile, nil
}
