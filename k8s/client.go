// Package k8s wraps client-go for the two things done against the target
// cluster: applying a manifest and reading load balancer hostnames.
package k8s

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
)

// Connection describes how to reach and authenticate to an API server.
type Connection struct {
	Endpoint string
	Token    string
	CAFile   string
}

type Client interface {
	// ApplyManifest server-side applies every document of a multi-document
	// YAML manifest and returns the number of applied objects. Namespaced
	// objects without a namespace are placed in namespace.
	ApplyManifest(ctx context.Context, manifest []byte, namespace, fieldManager string) (int, error)

	// LoadBalancerHostname lists the services of namespace once and returns
	// the last load balancer ingress hostname found, or "" if there is none.
	LoadBalancerHostname(ctx context.Context, namespace string) (string, error)
}

type client struct {
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
	mapper    meta.RESTMapper
}

// RESTConfig builds a bearer token authenticated config trusting only CAFile.
func RESTConfig(conn Connection, userAgent string) *rest.Config {
	return &rest.Config{
		Host:        conn.Endpoint,
		BearerToken: conn.Token,
		TLSClientConfig: rest.TLSClientConfig{
			CAFile: conn.CAFile,
		},
		UserAgent: userAgent,
	}
}

// NewClient does not contact the API server; discovery happens lazily on
// the first apply.
func NewClient(conn Connection, userAgent string) (Client, error) {
	if conn.Endpoint == "" {
		return nil, fmt.Errorf("cluster endpoint is required")
	}
	if conn.Token == "" {
		return nil, fmt.Errorf("bearer token is required")
	}

	cfg := RESTConfig(conn, userAgent)

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	return &client{
		clientset: clientset,
		dynamic:   dynamicClient,
		mapper:    restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient)),
	}, nil
}

// NewFromClients is used with fake clients in tests.
func NewFromClients(clientset kubernetes.Interface, dynamicClient dynamic.Interface, mapper meta.RESTMapper) Client {
	return &client{
		clientset: clientset,
		dynamic:   dynamicClient,
		mapper:    mapper,
	}
}
