package mdns

import (
	"context"
	"fmt"

	"github.com/picontrol/eversolo2hub/internal/core/port"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

// Service type streamers announce their control endpoint under.
const (
	DefaultService = "_adb._tcp"
	DefaultDomain  = "local."
)

// ZeroconfBrowser watches one mDNS service type and converts resolved
// entries into port events. IPv4 addresses come first.
type ZeroconfBrowser struct {
	service string
	domain  string
	logger  *zap.Logger
}

func CreateZeroconfBrowser(service string, domain string, logger *zap.Logger) *ZeroconfBrowser {
	return &ZeroconfBrowser{
		service: service,
		domain:  domain,
		logger:  logger.With(zap.String("service", service)),
	}
}

// Browse starts delivering announcements on events until ctx is done. It
// returns once browsing is set up.
func (b *ZeroconfBrowser) Browse(ctx context.Context, events chan<- port.ServiceEvent) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("create mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for entry := range entries {
			if entry == nil {
				continue
			}
			b.logger.Debug("service announcement", zap.String("instance", entry.Instance),
				zap.String("hostname", entry.HostName))
			event := port.ServiceEvent{
				Instance:  entry.Instance,
				Addresses: entryAddresses(entry),
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, b.service, b.domain, entries); err != nil {
		return fmt.Errorf("browse %s.%s: %w", b.service, b.domain, err)
	}
	b.logger.Info("browsing for device announcements", zap.String("domain", b.domain))
	return nil
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	var addresses []string
	for _, ip := range entry.AddrIPv4 {
		addresses = append(addresses, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addresses = append(addresses, ip.String())
	}
	return addresses
}

var _ port.ServiceBrowser = (*ZeroconfBrowser)(nil)
