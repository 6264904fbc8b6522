// Package tls builds the optional SPIFFE mTLS server configuration. When
// disabled the service listens in plain HTTP behind whatever fronts it.
package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
	"go.uber.org/zap"

	pkgconfig "github.com/nespinosaoimpa-wq/Olmoind/pkg/config"
)

type Source struct {
	x509Source *workloadapi.X509Source
	logger     *zap.Logger
}

// Load obtains certificates from the SPIRE Workload API and returns an
// mTLS server config, or (nil, nil) when TLS is disabled.
func Load(ctx context.Context, cfg *pkgconfig.Config, logger *zap.Logger) (*tls.Config, *Source, error) {
	if !cfg.TLSEnabled {
		logger.Info("TLS is disabled")
		return nil, nil, nil
	}

	source, err := workloadapi.NewX509Source(
		ctx,
		workloadapi.WithClientOptions(
			workloadapi.WithAddr(cfg.SpireSocketPath),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create X509Source: %w", err)
	}

	tlsConfig := tlsconfig.MTLSServerConfig(source, source, tlsconfig.AuthorizeAny())
	tlsConfig.MinVersion = tls.VersionTLS12

	logger.Info("SPIRE TLS configuration loaded",
		zap.String("socket_path", cfg.SpireSocketPath))

	return tlsConfig, &Source{x509Source: source, logger: logger}, nil
}

// WatchCertificates logs SVID status periodically. SPIRE rotates the
// certificates itself; this is visibility only.
func (s *Source) WatchCertificates(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svid, err := s.x509Source.GetX509SVID()
			if err != nil {
				s.logger.Error("Failed to get X509 SVID", zap.Error(err))
				continue
			}
			s.logger.Info("Certificate status",
				zap.String("spiffe_id", svid.ID.String()),
				zap.Time("expiry", svid.Certificates[0].NotAfter),
				zap.Duration("ttl", time.Until(svid.Certificates[0].NotAfter)))
		}
	}
}

func (s *Source) Close() {
	if s != nil && s.x509Source != nil {
		s.x509Source.Close()
	}
}
