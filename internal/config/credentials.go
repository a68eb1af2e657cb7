package config

import "context"

// Credential sources reported by ResolveCredentials.
const (
	SourceNone   = "none"
	SourceFlag   = "flag"
	SourceEnv    = "env"
	SourceFile   = "config"
	SourceSecret = "aws-secret"
	SourceBasic  = "basic"
)

// Credentials holds what the API client authenticates with.
type Credentials struct {
	Token  string
	User   string
	Pass   string
	Source string
}

// ResolveCredentials picks a token from flags, then the environment, then
// the config file, then the configured AWS secret. Username and password
// are used only when no token is found before the secret lookup.
func ResolveCredentials(ctx context.Context, flags Credentials, file AuthConfig) (Credentials, error) {
	out := Credentials{User: flags.User, Pass: flags.Pass}
	if out.User == "" && file.User != nil {
		out.User = *file.User
	}
	if out.Pass == "" && file.Pass != nil {
		out.Pass = *file.Pass
	}

	switch {
	case flags.Token != "":
		out.Token, out.Source = flags.Token, SourceFlag
	case EnvToken() != "":
		out.Token, out.Source = EnvToken(), SourceEnv
	case file.Token != nil && *file.Token != "":
		out.Token, out.Source = *file.Token, SourceFile
	case out.User != "" && out.Pass != "":
		out.Source = SourceBasic
	case file.Secret != nil && *file.Secret != "":
		region := ""
		if file.SecretRegion != nil {
			region = *file.SecretRegion
		}
		token, err := SecretToken(ctx, *file.Secret, region)
		if err != nil {
			return Credentials{}, err
		}
		out.Token, out.Source = token, SourceSecret
	default:
		out.Source = SourceNone
	}
	if out.Token != "" {
		out.User, out.Pass = "", ""
	}
	return out, nil
}
