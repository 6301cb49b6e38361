// Package handler implements the CloudFormation custom resource that deploys
// a fixed manifest to an EKS cluster and reports its load balancer hostname.
package handler

import (
	"context"
	"errors"
	"time"

	"github.com/erikmagkekse/eks-manifest-resource/eks"
	"github.com/erikmagkekse/eks-manifest-resource/k8s"
	"github.com/erikmagkekse/eks-manifest-resource/manifest"
	"github.com/erikmagkekse/eks-manifest-resource/model"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ClusterAPI is the slice of the EKS/STS APIs the handler needs.
type ClusterAPI interface {
	Token(ctx context.Context, clusterName string) (string, error)
	DescribeCluster(ctx context.Context, name string) (*eks.Cluster, error)
}

type ManifestFetcher interface {
	Download(ctx context.Context, url, dest string) ([]byte, error)
}

// Deps are the external capabilities used during provisioning. Zero fields
// are filled with the real AWS, Kubernetes and HTTP implementations.
type Deps struct {
	ClusterAPI func(ctx context.Context, region string) (ClusterAPI, error)
	Connect    func(conn k8s.Connection, userAgent string) (k8s.Client, error)
	Fetcher    ManifestFetcher
	Sleep      func(time.Duration)
}

type Handler struct {
	cfg  model.Config
	deps Deps
}

func New(cfg model.Config, deps Deps) *Handler {
	if cfg.PhysicalID == "" {
		cfg.PhysicalID = model.DefaultPhysicalID
	}
	if cfg.ManifestURL == "" {
		cfg.ManifestURL = model.DefaultManifestURL
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}
	if cfg.FieldManager == "" {
		cfg.FieldManager = model.AppName
	}

	if deps.ClusterAPI == nil {
		deps.ClusterAPI = func(ctx context.Context, region string) (ClusterAPI, error) {
			c, err := eks.NewClient(ctx, region)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	if deps.Connect == nil {
		deps.Connect = k8s.NewClient
	}
	if deps.Fetcher == nil {
		deps.Fetcher = manifest.NewFetcher(cfg.HTTPTimeout)
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	return &Handler{cfg: cfg, deps: deps}
}

// Handle has the cfn.CustomResourceFunction signature. The returned data map
// carries either "Data" (the hostname) or "Error" (the failure message); the
// error, if any, becomes the CloudFormation failure reason.
func (h *Handler) Handle(ctx context.Context, event cfn.Event) (string, map[string]any, error) {
	start := time.Now()
	logger := log.With().
		Str("request_id", event.RequestID).
		Str("request_type", string(event.RequestType)).
		Str("logical_id", event.LogicalResourceID).
		Logger()

	props, err := model.ParseResourceProperties(event.ResourceProperties)
	if err != nil {
		logger.Error().Err(err).Msg("invalid resource properties")
		observeInvocation(event.RequestType, statusFailed, start)
		return h.cfg.PhysicalID, map[string]any{model.ErrorKey: model.ErrLoadingProperties.Error()}, model.ErrLoadingProperties
	}

	// Delete does not touch the cluster: objects applied on create stay in place.
	if event.RequestType == cfn.RequestDelete {
		logger.Info().Str("cluster", props.ClusterName).Msg("delete requested, acknowledging without cleanup")
		observeInvocation(event.RequestType, statusSuccess, start)
		return h.cfg.PhysicalID, map[string]any{}, nil
	}

	logger = logger.With().Str("cluster", props.ClusterName).Str("region", props.RegionName).Logger()

	hostname, err := h.provision(ctx, &logger, props)
	if err != nil {
		ev := logger.Error().Err(err)
		var se *StepError
		if errors.As(err, &se) {
			ev = ev.Str("step", string(se.Step))
			if code := eks.ErrorCode(se.Err); code != "" {
				ev = ev.Str("aws_error_code", code)
			}
		}
		ev.Msg("provisioning failed")
		observeInvocation(event.RequestType, statusFailed, start)
		return h.cfg.PhysicalID, map[string]any{model.ErrorKey: err.Error()}, err
	}

	if hostname == "" {
		logger.Warn().Dur("settle_delay", h.cfg.SettleDelay).Msg("no load balancer hostname yet, reporting empty value")
	}
	logger.Info().Str("hostname", hostname).Dur("duration", time.Since(start)).Msg("provisioning complete")
	observeInvocation(event.RequestType, statusSuccess, start)
	return h.cfg.PhysicalID, map[string]any{model.DataKey: hostname}, nil
}

// provision runs the create/update sequence. The first failing step aborts
// it; objects already applied are not rolled back.
func (h *Handler) provision(ctx context.Context, logger *zerolog.Logger, props model.ResourceProperties) (string, error) {
	var (
		api      ClusterAPI
		token    string
		cluster  *eks.Cluster
		caFile   string
		client   k8s.Client
		body     []byte
		hostname string
	)

	steps := []struct {
		step Step
		fn   func() error
	}{
		{StepAWSConfig, func() (err error) {
			api, err = h.deps.ClusterAPI(ctx, props.RegionName)
			return err
		}},
		{StepToken, func() (err error) {
			token, err = api.Token(ctx, props.ClusterName)
			return err
		}},
		{StepDescribeCluster, func() (err error) {
			cluster, err = api.DescribeCluster(ctx, props.ClusterName)
			return err
		}},
		{StepWriteCA, func() (err error) {
			caFile, err = k8s.WriteCAFile(h.cfg.CADir, cluster.CAData)
			return err
		}},
		{StepConnect, func() (err error) {
			client, err = h.deps.Connect(k8s.Connection{
				Endpoint: cluster.Endpoint,
				Token:    token,
				CAFile:   caFile,
			}, model.AppName)
			return err
		}},
		{StepFetchManifest, func() (err error) {
			body, err = h.deps.Fetcher.Download(ctx, h.cfg.ManifestURL, h.cfg.ManifestPath)
			return err
		}},
		{StepApplyManifest, func() error {
			n, err := client.ApplyManifest(ctx, body, h.cfg.Namespace, h.cfg.FieldManager)
			if err != nil {
				return err
			}
			logger.Info().Int("objects", n).Str("namespace", h.cfg.Namespace).Msg("manifest applied")
			return nil
		}},
		{StepListServices, func() (err error) {
			// fixed wait for the cloud provider to hand out a load balancer
			h.deps.Sleep(h.cfg.SettleDelay)
			hostname, err = client.LoadBalancerHostname(ctx, h.cfg.Namespace)
			return err
		}},
	}

	for _, s := range steps {
		if err := h.run(logger, s.step, s.fn); err != nil {
			return "", err
		}
	}
	return hostname, nil
}

func (h *Handler) run(logger *zerolog.Logger, step Step, fn func() error) error {
	start := time.Now()
	logger.Debug().Str("step", string(step)).Msg("step started")

	err := fn()
	stepDuration.WithLabelValues(string(step)).Observe(time.Since(start).Seconds())
	if err != nil {
		stepFailuresTotal.WithLabelValues(string(step)).Inc()
		return &StepError{Step: step, Err: err}
	}
	return nil
}
