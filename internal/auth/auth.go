// Package auth provides Azure DevOps personal access token lookup for the CLI.
// It implements a simple interface with multiple providers following the
// "deep modules" principle - simple interface, lookup order hidden.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted for a token, in order.
const (
	// EnvAzureDevOpsPAT is the variable read by the Azure DevOps CLI extension.
	EnvAzureDevOpsPAT = "AZURE_DEVOPS_EXT_PAT"
	// EnvAzboardsPAT is the azboards-specific fallback.
	EnvAzboardsPAT = "AZBOARDS_PAT"
)

// ErrNoToken indicates a provider had nothing to offer.
var ErrNoToken = errors.New("no token available")

// TokenProvider defines the interface for obtaining an Azure DevOps personal access token.
type TokenProvider interface {
	GetToken() (string, error)
}

// StaticProvider returns a token supplied directly, e.g. from a --pat flag.
type StaticProvider struct {
	Token string
}

// GetToken returns the static token, or ErrNoToken when it is blank.
func (s *StaticProvider) GetToken() (string, error) {
	token := strings.TrimSpace(s.Token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// EnvProvider obtains a token from an environment variable.
type EnvProvider struct {
	Var string
}

// GetToken reads the configured environment variable.
// Returns an error if the variable is not set or is empty.
func (e *EnvProvider) GetToken() (string, error) {
	token := strings.TrimSpace(os.Getenv(e.Var))
	if token == "" {
		return "", fmt.Errorf("%w: %s not set or empty", ErrNoToken, e.Var)
	}
	return token, nil
}

// ChainProvider tries each provider in order and returns the first token found.
type ChainProvider []TokenProvider

// GetToken walks the chain. The returned error lists every failed source.
func (c ChainProvider) GetToken() (string, error) {
	var errs []error
	for _, p := range c {
		token, err := p.GetToken()
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	return "", errors.Join(append([]error{ErrNoToken}, errs...)...)
}

// GetToken resolves a token using the following strategy:
// 1. Use the explicit flag value when non-empty
// 2. Fall back to AZURE_DEVOPS_EXT_PAT
// 3. Fall back to AZBOARDS_PAT
// 4. Return a clear, actionable error if all fail
func GetToken(flagValue string) (string, error) {
	chain := ChainProvider{
		&StaticProvider{Token: flagValue},
		&EnvProvider{Var: EnvAzureDevOpsPAT},
		&EnvProvider{Var: EnvAzboardsPAT},
	}
	token, err := chain.GetToken()
	if err != nil {
		return "", fmt.Errorf(
			"failed to obtain Azure DevOps token.\n"+
				"Please either:\n"+
				"  1. Pass --pat with a personal access token, or\n"+
				"  2. Set the %s (or %s) environment variable\n"+
				"The token needs the Work Items (Read) scope: %w",
			EnvAzureDevOpsPAT, EnvAzboardsPAT, err,
		)
	}
	return token, nil
}
