package k8s

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	ktesting "k8s.io/client-go/testing"
)

func lbService(name, namespace string, ingress ...corev1.LoadBalancerIngress) corev1.Service {
	return corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       corev1.ServiceSpec{Type: corev1.ServiceTypeLoadBalancer},
		Status: corev1.ServiceStatus{
			LoadBalancer: corev1.LoadBalancerStatus{Ingress: ingress},
		},
	}
}

func TestLastIngressHostname(t *testing.T) {
	tests := []struct {
		name     string
		services []corev1.Service
		want     string
	}{
		{name: "no services", want: ""},
		{
			name:     "not provisioned yet",
			services: []corev1.Service{lbService("web", "default")},
			want:     "",
		},
		{
			name: "single",
			services: []corev1.Service{
				lbService("kubernetes", "default"),
				lbService("web", "default", corev1.LoadBalancerIngress{Hostname: "a.elb.amazonaws.com"}),
			},
			want: "a.elb.amazonaws.com",
		},
		{
			name: "last wins",
			services: []corev1.Service{
				lbService("a", "default", corev1.LoadBalancerIngress{Hostname: "A"}),
				lbService("b", "default", corev1.LoadBalancerIngress{Hostname: "B"}),
			},
			want: "B",
		},
		{
			name: "ip only ingress is skipped",
			services: []corev1.Service{
				lbService("a", "default", corev1.LoadBalancerIngress{Hostname: "A"}),
				lbService("b", "default", corev1.LoadBalancerIngress{IP: "10.0.0.1"}),
			},
			want: "A",
		},
		{
			name: "first ingress entry only",
			services: []corev1.Service{
				lbService("a", "default",
					corev1.LoadBalancerIngress{Hostname: "first"},
					corev1.LoadBalancerIngress{Hostname: "second"}),
			},
			want: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastIngressHostname(tt.services))
		})
	}
}

func TestLoadBalancerHostname(t *testing.T) {
	svc := lbService("web", "default", corev1.LoadBalancerIngress{Hostname: "web.elb.amazonaws.com"})
	other := lbService("other", "kube-system", corev1.LoadBalancerIngress{Hostname: "other.elb.amazonaws.com"})

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient here
	clientset := fake.NewSimpleClientset(&svc, &other)
	c := NewFromClients(clientset, nil, nil)

	host, err := c.LoadBalancerHostname(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "web.elb.amazonaws.com", host)

	host, err = c.LoadBalancerHostname(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, host)
}

func TestLoadBalancerHostname_ListError(t *testing.T) {
	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient here
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "services", func(ktesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("unauthorized")
	})
	c := NewFromClients(clientset, nil, nil)

	_, err := c.LoadBalancerHostname(context.Background(), "default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}
