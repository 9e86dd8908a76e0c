package common

import (
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/config"
	pkgHTTP "github.com/vishkar/storycrafter/pkg/http"
)

// NewBaseConnector builds the shared JSON connector for a provider API.
// Provider-specific auth (bearer tokens) is layered in via extra options.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.ClientOpt) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.BaseURL,
	}

	opts := []pkgHTTP.ClientOpt{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnTimeout(cfg.ConnTimeout),
		pkgHTTP.WithKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}
	opts = append(opts, extra...)

	return pkgHTTP.NewConnector(connCfg, opts...)
}
