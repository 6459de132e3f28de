package events

import (
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

// ServiceType is the mDNS service POS terminals browse for
const ServiceType = "_receiptprint._tcp"

// Announce advertises the print API on the local network. The returned func
// withdraws the announcement.
func Announce(name string, port int, logger *zap.Logger) (func(), error) {
	server, err := zeroconf.Register(name, ServiceType, "local.", port, []string{"version=1.0", "path=/api/v1"}, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("mDNS announcement started", zap.String("service", ServiceType), zap.Int("port", port))
	return func() {
		server.Shutdown()
		logger.Info("mDNS announcement stopped")
	}, nil
}
