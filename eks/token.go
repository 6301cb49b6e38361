package eks

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

const (
	tokenPrefix   = "k8s-aws-v1."
	clusterHeader = "x-k8s-aws-id"

	// the presigner hoists X-Amz-* headers into the query string; the
	// authenticator rejects URLs without X-Amz-Expires
	expiresHeader = "X-Amz-Expires"
	tokenExpiry   = "60"
)

// Token returns a bearer token accepted by the cluster's aws-iam-authenticator
// webhook: a presigned sts:GetCallerIdentity URL bound to the cluster name.
// No caching or refresh, the token is meant for a single client.
func (c *Client) Token(ctx context.Context, clusterName string) (string, error) {
	req, err := c.presign.PresignGetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}, withClusterHeader(clusterName))
	if err != nil {
		return "", apiError("presign caller identity", err)
	}
	if req == nil || req.URL == "" {
		return "", fmt.Errorf("presign caller identity: empty URL")
	}
	return tokenPrefix + base64.RawURLEncoding.EncodeToString([]byte(req.URL)), nil
}

func withClusterHeader(clusterName string) func(*sts.PresignOptions) {
	return func(o *sts.PresignOptions) {
		o.ClientOptions = append(o.ClientOptions, func(so *sts.Options) {
			so.APIOptions = append(so.APIOptions,
				smithyhttp.AddHeaderValue(clusterHeader, clusterName),
				smithyhttp.AddHeaderValue(expiresHeader, tokenExpiry),
			)
		})
	}
}
