package storage

import "github.com/Azure/azure-sdk-for-go/sdk/azcore"

type ProxyAuthHandler interface {
	createProxy() (CloudStorageProxy, error)
}

func CloudStorageProxyFactory(handler ProxyAuthHandler) (CloudStorageProxy, error) {
	return handler.createProxy()
}

// ProxyAuthHandlerAzureToken reaches a blob account with the token
// credential of a signed-in user.
type ProxyAuthHandlerAzureToken struct {
	AccountURL string
	Credential azcore.TokenCredential
}

type ProxyAuthHandlerAzureConnectionString struct {
	ConnectionString string
}

// ProxyAuthHandlerAWSWebIdentity exchanges a token of the signed-in user for
// temporary AWS credentials of RoleARN. AccountURL is only set for S3
// compatible endpoints.
type ProxyAuthHandlerAWSWebIdentity struct {
	AccountURL string
	Region     string
	RoleARN    string
	TokenScope string
	Credential azcore.TokenCredential
}

type ProxyAuthHandlerAWSConfiguredIdentity struct {
	AccountURL string
	Region     string
	AccessID   string
	AccessKey  string
}
