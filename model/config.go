package model

import "time"

const AppName = "eks-manifest-resource"

const (
	DefaultManifestURL = "https://gist.githubusercontent.com/lusoal/cfec2144e81ed8aeb1968752b77093f2/raw/fb6743e180074d211a153743b485a2130dfd7610/deployment-file.yaml"
	DefaultPhysicalID  = "CustomResourcePhysicalID"

	PropClusterName = "ClusterName"
	PropRegionName  = "RegionName"

	DataKey  = "Data"
	ErrorKey = "Error"
)

// Config is read once per cold start from the Lambda environment.
type Config struct {
	ManifestURL    string        `env:"MANIFEST_URL" envDefault:"https://gist.githubusercontent.com/lusoal/cfec2144e81ed8aeb1968752b77093f2/raw/fb6743e180074d211a153743b485a2130dfd7610/deployment-file.yaml"`
	ManifestPath   string        `env:"MANIFEST_PATH" envDefault:"/tmp/deployment.yaml"`
	Namespace      string        `env:"TARGET_NAMESPACE" envDefault:"default"`
	SettleDelay    time.Duration `env:"SETTLE_DELAY" envDefault:"5s"`
	PhysicalID     string        `env:"PHYSICAL_RESOURCE_ID" envDefault:"CustomResourcePhysicalID"`
	CADir          string        `env:"CA_DIR"`
	FieldManager   string        `env:"FIELD_MANAGER" envDefault:"eks-manifest-resource"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	PushgatewayURL string        `env:"METRICS_PUSHGATEWAY_URL"`
	MetricsJob     string        `env:"METRICS_JOB" envDefault:"eks-manifest-resource"`
}
