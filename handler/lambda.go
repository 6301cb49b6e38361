package handler

import (
	"context"

	"github.com/erikmagkekse/eks-manifest-resource/model"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/rs/zerolog/log"
)

// LambdaFunction wraps h so that exactly one status report is sent to the
// event's ResponseURL per invocation, then pushes metrics when configured.
func LambdaFunction(h *Handler, cfg model.Config) cfn.CustomResourceLambdaFunction {
	wrapped := cfn.LambdaWrap(h.Handle)
	return func(ctx context.Context, event cfn.Event) (string, error) {
		reason, err := wrapped(ctx, event)
		if err != nil {
			log.Error().Err(err).Str("request_id", event.RequestID).Msg("failed to send CloudFormation response")
		}
		if cfg.PushgatewayURL != "" {
			if perr := PushMetrics(cfg.PushgatewayURL, cfg.MetricsJob); perr != nil {
				log.Warn().Err(perr).Msg("metrics push failed")
			}
		}
		return reason, err
	}
}
