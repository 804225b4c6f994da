package secrets

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type AWSCloudSecretsProxy struct {
	secretServicesClient secretsManagerClient
	cache                *secretCache
}

func (handler ProxyAuthHandlerAWSDefaultIdentity) createSecretsProxy(options *CloudSecretsCacheOptions) (CloudSecretsProxy, error) {
	var optFns []func(*config.LoadOptions) error
	if handler.Region != "" {
		optFns = append(optFns, config.WithRegion(handler.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(context.TODO(), optFns...)
	if err != nil {
		return nil, wrapError("unable to create Secrets Manager service client", err)
	}
	return createProxyFromConfig(&awsConfig, options), nil
}

func (handler ProxyAuthHandlerAWSConfiguredIdentity) createSecretsProxy(options *CloudSecretsCacheOptions) (CloudSecretsProxy, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(handler.AccessID, handler.AccessKey, "")),
	}
	if handler.Region != "" {
		optFns = append(optFns, config.WithRegion(handler.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(context.TODO(), optFns...)
	if err != nil {
		return nil, wrapError("unable to create Secrets Manager service client", err)
	}
	return createProxyFromConfig(&awsConfig, options), nil
}

func createProxyFromConfig(awsConfig *aws.Config, options *CloudSecretsCacheOptions) CloudSecretsProxy {
	return &AWSCloudSecretsProxy{
		secretServicesClient: secretsmanager.NewFromConfig(*awsConfig),
		cache:                newSecretCache(options),
	}
}

func (aw *AWSCloudSecretsProxy) fetch(ctx context.Context, name string) (secret, error) {
	resp, err := aw.secretServicesClient.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return secret{}, wrapError("unable to retrieve secret "+name, err)
	}
	if resp.SecretString == nil {
		return secret{}, wrapError("secret "+name+" has no string value", nil)
	}
	return secret{value: *resp.SecretString}, nil
}

func (aw *AWSCloudSecretsProxy) GetSecret(ctx context.Context, name string) (string, error) {
	s, err := aw.cache.get(ctx, name, aw.fetch)
	if err != nil {
		return "", err
	}
	return s.value, nil
}
