// Package inference invokes a deployed AWS SageMaker endpoint with
// transcribed text and returns the model's structured response.
package inference

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
	"github.com/skillsenselab/audio-ai-api/internal/util"
)

const serviceLabel = "inference service"

// PayloadLanguage is the language tag sent with every inference payload.
const PayloadLanguage = "es"

// Config holds inference client configuration.
type Config struct {
	// Region is the AWS region of the SageMaker runtime.
	Region string `yaml:"region" mapstructure:"region"`
	// EndpointName is the default endpoint to invoke when a request does not
	// name one.
	EndpointName string `yaml:"endpoint_name" mapstructure:"endpoint_name"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

// Payload is the outbound contract to the inference backend.
type Payload struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// InvokeEndpointAPI is the slice of the SageMaker runtime client this package
// uses. Tests substitute a stub.
type InvokeEndpointAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// Client calls a SageMaker inference endpoint. It is constructed once at
// startup and treated as read-only afterwards.
type Client struct {
	api             InvokeEndpointAPI
	defaultEndpoint string
	log             *logger.Logger
}

// New builds a client from AWS shared configuration. A construction failure
// is a valid, permanent condition: the caller keeps running without a handle.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("inference: load aws config: %w", err)
	}

	return NewWithAPI(sagemakerruntime.NewFromConfig(awsCfg), cfg.EndpointName, log), nil
}

// NewWithAPI builds a client around an existing runtime API. Used by tests
// and by callers that manage AWS configuration themselves.
func NewWithAPI(api InvokeEndpointAPI, defaultEndpoint string, log *logger.Logger) *Client {
	return &Client{
		api:             api,
		defaultEndpoint: defaultEndpoint,
		log:             log.WithComponent("inference"),
	}
}

// ResolveEndpoint picks the endpoint to invoke: the request-supplied name
// wins, then the configured default. An empty result is a configuration
// error raised before any network call.
func (c *Client) ResolveEndpoint(requested string) (string, error) {
	endpoint := util.Coalesce(requested, c.defaultEndpoint)
	if endpoint == "" {
		return "", apperrors.EndpointUnresolved()
	}
	return endpoint, nil
}

// Invoke sends the text to the named endpoint and returns the deserialized
// response. Application-level error payloads returned by the model are NOT
// adapter failures; they pass through as the result.
func (c *Client) Invoke(ctx context.Context, text, endpointName string) (any, error) {
	endpoint, err := c.ResolveEndpoint(endpointName)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(Payload{Text: text, Language: PayloadLanguage})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out, err := c.api.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpoint),
		ContentType:  aws.String("application/json"),
		Body:         body,
	})
	if err != nil {
		return nil, translateInvokeError(err)
	}

	var result any
	if err := json.Unmarshal(out.Body, &result); err != nil {
		// Some deployments answer with bare text rather than JSON.
		result = string(out.Body)
	}

	c.log.Debug("inference completed", logger.Fields("endpoint", endpoint))
	return result, nil
}

// --- backend failure translation ---

// translateInvokeError is the single place SageMaker SDK failures become
// domain errors. New backend cases go here, not into the call path.
func translateInvokeError(err error) *apperrors.AppError {
	var validationErr *types.ValidationError
	if stderrors.As(err, &validationErr) {
		return apperrors.InvalidInput("endpoint_name", "the inference endpoint rejected the request").WithCause(err)
	}

	var modelErr *types.ModelError
	if stderrors.As(err, &modelErr) {
		return apperrors.ExternalServiceError(serviceLabel, err)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return apperrors.ServiceUnavailable(serviceLabel).WithDetail("aws_code", apiErr.ErrorCode()).WithCause(err)
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("infer").WithCause(err)
	}
	return apperrors.ServiceUnavailable(serviceLabel).WithCause(err)
}
