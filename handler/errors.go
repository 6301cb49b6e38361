package handler

// Step names one stage of the provisioning sequence.
type Step string

const (
	StepAWSConfig       Step = "aws-config"
	StepToken           Step = "token"
	StepDescribeCluster Step = "describe-cluster"
	StepWriteCA         Step = "write-ca"
	StepConnect         Step = "connect"
	StepFetchManifest   Step = "fetch-manifest"
	StepApplyManifest   Step = "apply-manifest"
	StepListServices    Step = "list-services"
)

// StepError tags a provisioning failure with the step it came from. Its
// message is the cause's message, unchanged, because that text is what
// CloudFormation shows to the stack operator.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}
