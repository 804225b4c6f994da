package storage

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const (
	defaultWebIdentityScope = "api://AzureADTokenExchange/.default"
	webIdentitySessionName  = "photobrowser"
	identityTokenTimeout    = 30 * time.Second
)

type AWSCloudStorageProxy struct {
	s3ServicesClient *s3.Client
}

// identityTokenRetriever hands the signed-in user's access token to STS as
// a web identity token.
type identityTokenRetriever struct {
	credential azcore.TokenCredential
	scope      string
}

func (r identityTokenRetriever) GetIdentityToken() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), identityTokenTimeout)
	defer cancel()
	token, err := r.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{r.scope}})
	if err != nil {
		return nil, wrapError("unable to obtain web identity token", err)
	}
	return []byte(token.Token), nil
}

func (handler ProxyAuthHandlerAWSWebIdentity) tokenRetriever() identityTokenRetriever {
	scope := handler.TokenScope
	if scope == "" {
		scope = defaultWebIdentityScope
	}
	return identityTokenRetriever{credential: handler.Credential, scope: scope}
}

func (handler ProxyAuthHandlerAWSWebIdentity) createProxy() (CloudStorageProxy, error) {
	if handler.Credential == nil {
		return nil, wrapError("no signed-in credential for role "+handler.RoleARN, nil)
	}
	if handler.RoleARN == "" {
		return nil, wrapError("a role ARN is required for web identity access to S3", nil)
	}
	var optFns []func(*config.LoadOptions) error
	if handler.Region != "" {
		optFns = append(optFns, config.WithRegion(handler.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(context.TODO(), optFns...)
	if err != nil {
		return nil, wrapError("unable to create S3 service client", err)
	}
	roleProvider := stscreds.NewWebIdentityRoleProvider(sts.NewFromConfig(awsConfig), handler.RoleARN,
		handler.tokenRetriever(),
		func(o *stscreds.WebIdentityRoleOptions) {
			o.RoleSessionName = webIdentitySessionName
		})
	awsConfig.Credentials = aws.NewCredentialsCache(roleProvider)
	return createProxyFromConfig(handler.AccountURL, handler.Region, &awsConfig)
}

func (handler ProxyAuthHandlerAWSConfiguredIdentity) createProxy() (CloudStorageProxy, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(handler.AccessID, handler.AccessKey, "")),
	}
	if handler.Region != "" {
		optFns = append(optFns, config.WithRegion(handler.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(context.TODO(), optFns...)
	if err != nil {
		return nil, wrapError("unable to create S3 service client", err)
	}
	return createProxyFromConfig(handler.AccountURL, handler.Region, &awsConfig)
}

func createProxyFromConfig(accountURL string, accountRegion string, awsConfig *aws.Config) (CloudStorageProxy, error) {
	client := s3.NewFromConfig(*awsConfig, func(o *s3.Options) {
		if accountURL != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(accountURL)
		}
		if accountRegion != "" {
			o.Region = accountRegion
		}
	})
	return &AWSCloudStorageProxy{s3ServicesClient: client}, nil
}

func (aw *AWSCloudStorageProxy) listFilesOrFolders(ctx context.Context, containerName string, maxNumber int,
	prefix string, listType blobListType) ([]string, error) {
	if maxNumber <= 0 {
		maxNumber = max_RESULT
	}

	itemList := make([]string, 0)
	var continuationToken *string
	for {
		result, err := aw.s3ServicesClient.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(containerName),
			MaxKeys:           aws.Int32(int32(maxNumber)),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return itemList, wrapError("unable to list contents of bucket "+containerName, err)
		}
		if listType == listTypeFile {
			for _, obj := range result.Contents {
				if len(itemList) >= maxNumber {
					break
				}
				itemList = append(itemList, aws.ToString(obj.Key))
			}
		} else {
			for _, obj := range result.CommonPrefixes {
				if len(itemList) >= maxNumber {
					break
				}
				itemList = append(itemList, aws.ToString(obj.Prefix))
			}
		}
		if !aws.ToBool(result.IsTruncated) || len(itemList) >= maxNumber {
			break
		}
		continuationToken = result.NextContinuationToken
	}
	return itemList, nil
}

func (aw *AWSCloudStorageProxy) ListFiles(ctx context.Context, containerName string, maxNumber int,
	prefix string) ([]string, error) {
	return aw.listFilesOrFolders(ctx, containerName, maxNumber, prefix, listTypeFile)
}

func (aw *AWSCloudStorageProxy) ListFolders(ctx context.Context, containerName string, maxNumber int,
	prefix string) ([]string, error) {
	return aw.listFilesOrFolders(ctx, containerName, maxNumber, prefix, listTypeFolder)
}

func (aw *AWSCloudStorageProxy) GetMetadata(ctx context.Context, containerName string,
	fileName string) (map[string]string, error) {
	resp, err := aw.s3ServicesClient.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(containerName),
		Key:    aws.String(fileName),
	})
	if err != nil {
		return nil, wrapError("unable to get metadata for object "+fileName, err)
	}
	metadata := make(map[string]string, len(resp.Metadata)+3)
	for k, v := range resp.Metadata {
		metadata[k] = v
	}
	if resp.LastModified != nil {
		metadata[MetadataLastModified] = resp.LastModified.Format(time_FORMAT)
	}
	if resp.ContentLength != nil {
		metadata[MetadataContentLength] = strconv.FormatInt(*resp.ContentLength, 10)
	}
	if resp.ContentType != nil {
		metadata[MetadataContentType] = *resp.ContentType
	}
	return metadata, nil
}

func (aw *AWSCloudStorageProxy) GetFileContentAsInputStream(ctx context.Context, containerName string,
	fileName string) (io.ReadCloser, error) {
	resp, err := aw.s3ServicesClient.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(containerName),
		Key:    aws.String(fileName),
	})
	if err != nil {
		return nil, wrapError("unable to get stream reader for file "+fileName, err)
	}
	return resp.Body, nil
}

// GetFile downloads the whole object in ranged parts.
func (aw *AWSCloudStorageProxy) GetFile(ctx context.Context, containerName string, fileName string) (CloudFile, error) {
	cloudFile := CloudFile{Container: containerName, FileName: fileName}
	metadata, err := aw.GetMetadata(ctx, containerName, fileName)
	if err != nil {
		return cloudFile, err
	}
	cloudFile.Metadata = metadata

	fileSize := getStringAsInt64(metadata[MetadataContentLength])
	var partSize int64 = size_5MiB
	if fileSize > size_5MiB*max_PARTS {
		partSize = fileSize / max_PARTS
	}
	downloader := manager.NewDownloader(aw.s3ServicesClient, func(d *manager.Downloader) {
		d.PartSize = partSize
		d.Concurrency = max_CONCURRENT
	})
	buffer := manager.NewWriteAtBuffer(make([]byte, 0, fileSize))
	if _, err := downloader.Download(ctx, buffer, &s3.GetObjectInput{
		Bucket: aws.String(containerName),
		Key:    aws.String(fileName),
	}); err != nil {
		return cloudFile, wrapError("unable to download file "+fileName, err)
	}
	cloudFile.Content = buffer.Bytes()
	return cloudFile, nil
}
