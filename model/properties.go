package model

import (
	"errors"
	"fmt"
)

// ErrLoadingProperties is reported verbatim to CloudFormation when the
// resource properties cannot be read.
var ErrLoadingProperties = errors.New("ERROR LOADING RESOURCE PROPERTIES")

type ResourceProperties struct {
	ClusterName string
	RegionName  string
}

// ParseResourceProperties extracts the cluster name and region from a custom
// resource's properties. Both must be present as non-empty strings.
func ParseResourceProperties(props map[string]any) (ResourceProperties, error) {
	cluster, err := stringProp(props, PropClusterName)
	if err != nil {
		return ResourceProperties{}, err
	}
	region, err := stringProp(props, PropRegionName)
	if err != nil {
		return ResourceProperties{}, err
	}
	return ResourceProperties{ClusterName: cluster, RegionName: region}, nil
}

func stringProp(props map[string]any, key string) (string, error) {
	raw, ok := props[key]
	if !ok {
		return "", fmt.Errorf("%w: %s missing", ErrLoadingProperties, key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrLoadingProperties, key)
	}
	return s, nil
}
