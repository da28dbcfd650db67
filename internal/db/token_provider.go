package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
)

// TokenProvider supplies a short-lived password for cloud IAM logins.
type TokenProvider interface {
	Token(ctx context.Context) (token string, expiresOn time.Time, err error)
	// String names the provider for logs; it must not include secrets.
	String() string
}

// azurePostgresScope is the OAuth scope of Azure Database for PostgreSQL.
const azurePostgresScope = "https://ossrdbms-aad.database.windows.net/.default"

// rdsTokenLifetime is how long an RDS IAM token stays valid.
const rdsTokenLifetime = 15 * time.Minute

// RDSTokenProvider builds RDS IAM tokens from the default AWS credential chain.
type RDSTokenProvider struct {
	endpoint string
	region   string
	user     string
}

func NewRDSTokenProvider(endpoint, region, user string) (*RDSTokenProvider, error) {
	switch {
	case region == "":
		return nil, fmt.Errorf("AWS IAM auth requires a region (--aws-region or $AWS_REGION)")
	case user == "":
		return nil, fmt.Errorf("AWS IAM auth requires a database user (-U)")
	}
	return &RDSTokenProvider{endpoint: endpoint, region: region, user: user}, nil
}

func (p *RDSTokenProvider) Token(ctx context.Context) (string, time.Time, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("load AWS config: %w", err)
	}
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.user, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build RDS auth token: %w", err)
	}
	return token, time.Now().Add(rdsTokenLifetime), nil
}

func (p *RDSTokenProvider) String() string {
	return fmt.Sprintf("aws-rds(%s, %s, user=%s)", p.endpoint, p.region, p.user)
}

// AzureTokenProvider gets Entra ID tokens from an azcore credential.
type AzureTokenProvider struct {
	credential azcore.TokenCredential
	name       string
}

// NewAzureTokenProvider uses a client secret credential when tenant, client
// and secret are all set and the default credential chain otherwise.
func NewAzureTokenProvider(tenantID, clientID, clientSecret string) (*AzureTokenProvider, error) {
	if tenantID != "" && clientID != "" && clientSecret != "" {
		cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("create Azure client secret credential: %w", err)
		}
		return &AzureTokenProvider{credential: cred, name: fmt.Sprintf("azure-sp(tenant=%s, client=%s)", tenantID, clientID)}, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure default credential: %w", err)
	}
	return &AzureTokenProvider{credential: cred, name: "azure-default"}, nil
}

func (p *AzureTokenProvider) Token(ctx context.Context) (string, time.Time, error) {
	tok, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{azurePostgresScope}})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("acquire Azure token: %w", err)
	}
	return tok.Token, tok.ExpiresOn, nil
}

func (p *AzureTokenProvider) String() string { return p.name }
