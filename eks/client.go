// Package eks resolves connection details and bearer tokens for EKS clusters.
package eks

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	awseks "github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

type describeAPI interface {
	DescribeCluster(ctx context.Context, params *awseks.DescribeClusterInput, optFns ...func(*awseks.Options)) (*awseks.DescribeClusterOutput, error)
}

type presignAPI interface {
	PresignGetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Cluster holds what is needed to reach a cluster's API server.
type Cluster struct {
	Name     string
	Endpoint string
	// CAData is the base64 encoded PEM bundle as returned by DescribeCluster.
	CAData string
}

// Client talks to the EKS and STS APIs of a single region.
type Client struct {
	eks     describeAPI
	presign presignAPI
}

// NewClient loads the default AWS credential chain pinned to region.
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		eks:     awseks.NewFromConfig(cfg),
		presign: sts.NewPresignClient(sts.NewFromConfig(cfg)),
	}, nil
}

// DescribeCluster returns the API endpoint and CA bundle of the named cluster.
func (c *Client) DescribeCluster(ctx context.Context, name string) (*Cluster, error) {
	out, err := c.eks.DescribeCluster(ctx, &awseks.DescribeClusterInput{
		Name: aws.String(name),
	})
	if err != nil {
		return nil, apiError("describe cluster "+name, err)
	}
	if out.Cluster == nil {
		return nil, fmt.Errorf("describe cluster %s: empty response", name)
	}

	cluster := &Cluster{
		Name:     name,
		Endpoint: aws.ToString(out.Cluster.Endpoint),
	}
	if out.Cluster.CertificateAuthority != nil {
		cluster.CAData = aws.ToString(out.Cluster.CertificateAuthority.Data)
	}

	if cluster.Endpoint == "" {
		return nil, fmt.Errorf("cluster %s has no API endpoint (status %s)", name, out.Cluster.Status)
	}
	if cluster.CAData == "" {
		return nil, fmt.Errorf("cluster %s has no certificate authority data", name)
	}
	return cluster, nil
}

// ErrorCode returns the AWS API error code carried by err, if any.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func apiError(op string, err error) error {
	if code := ErrorCode(err); code != "" {
		return fmt.Errorf("%s: %s: %w", op, code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
