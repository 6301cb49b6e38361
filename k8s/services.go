package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func (c *client) LoadBalancerHostname(ctx context.Context, namespace string) (string, error) {
	list, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to list services in %s: %w", namespace, err)
	}
	return LastIngressHostname(list.Items), nil
}

// LastIngressHostname returns the hostname of the first ingress entry of the
// last service, in listing order, that has one. Services that only got an IP
// are skipped.
func LastIngressHostname(services []corev1.Service) string {
	hostname := ""
	for _, svc := range services {
		ingress := svc.Status.LoadBalancer.Ingress
		if len(ingress) == 0 || ingress[0].Hostname == "" {
			continue
		}
		hostname = ingress[0].Hostname
	}
	return hostname
}
