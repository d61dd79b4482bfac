package cmdutil

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/config"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/rbac"
)

// AuthBundle holds the collaborators that talk to the identity and policy
// services on behalf of this process.
type AuthBundle struct {
	Verifier *auth.Verifier
	Tokens   *auth.ServiceTokenSource
	Caller   *auth.ServiceCaller
	Policy   *rbac.Client
}

// NewAuthBundle centralizes auth construction for the server and CLI commands.
func NewAuthBundle(cfg *config.Config, clk clock.Clock, logger logrus.FieldLogger) (*AuthBundle, error) {
	opts := []auth.Option{
		auth.WithLogger(logger),
		auth.WithClock(clk),
		auth.WithTimeout(cfg.Auth.Timeout),
	}

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		AuthBaseURL: cfg.Auth.BaseURL,
		JWKSURL:     cfg.Auth.JWKSURL,
		Issuer:      cfg.Auth.Issuer,
		Audience:    cfg.Auth.Audience,
		KeySetTTL:   cfg.Auth.JWKSCacheTTL,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure token verifier: %w", err)
	}

	tokens, err := auth.NewServiceTokenSource(auth.ServiceTokenConfig{
		AuthBaseURL:   cfg.Auth.BaseURL,
		ServiceID:     cfg.Auth.ServiceID,
		ServiceSecret: auth.Secret(cfg.Auth.ServiceSecret),
		TTL:           cfg.Auth.ServiceTokenTTL,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure service token source: %w", err)
	}

	caller := auth.NewServiceCaller(tokens, auth.StaticPeers(cfg.Peers), opts...)

	return &AuthBundle{
		Verifier: verifier,
		Tokens:   tokens,
		Caller:   caller,
		Policy:   rbac.NewClient(caller, cfg.RBAC.ServiceName, cfg.RBAC.Timeout, logger),
	}, nil
}
