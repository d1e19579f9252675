package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/rs/zerolog/log"
)

// SecretKeys are the settings that may be kept in SSM Parameter Store
// instead of the process environment.
var SecretKeys = []string{"ADMIN_PASSWORD", "SECRET_KEY", "DATABASE_URL"}

// ParameterGetter is the subset of the SSM client used to read secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// NewSSMClient builds an SSM client from the default AWS credential chain.
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(awsCfg), nil
}

// LoadSecrets fills the SecretKeys missing from env with the decrypted
// parameters stored under prefix. Values already present in env win.
func LoadSecrets(ctx context.Context, client ParameterGetter, prefix string, env map[string]string) error {
	for _, key := range SecretKeys {
		if GetString(env, key, "") != "" {
			continue
		}

		name := prefix + key
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(name),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			var notFound *types.ParameterNotFound
			if errors.As(err, &notFound) {
				log.Debug().Str("parameter", name).Msg("SSM parameter not found, skipping")
				continue
			}
			return fmt.Errorf("get ssm parameter %s: %w", name, err)
		}
		if out.Parameter == nil || out.Parameter.Value == nil {
			continue
		}

		env[key] = aws.ToString(out.Parameter.Value)
		log.Info().Str("parameter", name).Msg("Loaded setting from SSM")
	}
	return nil
}
