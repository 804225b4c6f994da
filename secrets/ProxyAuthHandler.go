package secrets

type ProxyAuthHandler interface {
	createSecretsProxy(options *CloudSecretsCacheOptions) (CloudSecretsProxy, error)
}

type ProxyAuthHandlerAzureDefaultIdentity struct {
	KeyVaultURL string
}

type ProxyAuthHandlerAzureClientSecretIdentity struct {
	KeyVaultURL  string
	TenantID     string
	ClientID     string
	ClientSecret string
}

type ProxyAuthHandlerAWSDefaultIdentity struct {
	Region string
}

type ProxyAuthHandlerAWSConfiguredIdentity struct {
	Region    string
	AccessID  string
	AccessKey string
}
