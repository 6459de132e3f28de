package printer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/gousb"
	"github.com/grandcat/zeroconf"
)

// Discovered is a printer found on the host or the local network.
type Discovered struct {
	Name      string         `json:"name"`
	Kind      ConnectionKind `json:"kind"`
	Address   string         `json:"address,omitempty"`
	Port      int            `json:"port,omitempty"`
	Protocol  string         `json:"protocol,omitempty"`
	VendorID  uint16         `json:"vendor_id,omitempty"`
	ProductID uint16         `json:"product_id,omitempty"`
}

// Key identifies the physical printer independently of how it was found.
func (d Discovered) Key() string {
	if d.Kind == ConnectionUSB {
		return fmt.Sprintf("usb:%04x:%04x", d.VendorID, d.ProductID)
	}
	return fmt.Sprintf("%s:%s:%d", d.Kind, d.Address, d.Port)
}

// Discoverer lists printers it can see.
type Discoverer interface {
	Discover(ctx context.Context) ([]Discovered, error)
}

// USBDiscoverer lists attached USB devices exposing a printer-class interface.
type USBDiscoverer struct{}

func (USBDiscoverer) Discover(_ context.Context) ([]Discovered, error) {
	uctx := gousb.NewContext()
	defer uctx.Close()

	devices, err := uctx.OpenDevices(isPrinterClass)
	defer func() {
		for _, d := range devices {
			d.Close()
		}
	}()
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	out := make([]Discovered, 0, len(devices))
	for _, dev := range devices {
		desc := dev.Desc
		name := fmt.Sprintf("USB printer %04x:%04x", uint16(desc.Vendor), uint16(desc.Product))
		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()
		if label := strings.TrimSpace(manufacturer + " " + product); label != "" {
			name = label
		}
		out = append(out, Discovered{
			Name:      name,
			Kind:      ConnectionUSB,
			VendorID:  uint16(desc.Vendor),
			ProductID: uint16(desc.Product),
		})
	}
	return out, nil
}

func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

// MDNSDiscoverer browses the local network for raw-socket printers.
type MDNSDiscoverer struct {
	Service string
	Domain  string
	Timeout time.Duration
}

// NewMDNSDiscoverer browses _pdl-datastream._tcp, the service type of port 9100 printers.
func NewMDNSDiscoverer(timeout time.Duration) MDNSDiscoverer {
	return MDNSDiscoverer{Service: "_pdl-datastream._tcp", Domain: "local.", Timeout: timeout}
}

func (m MDNSDiscoverer) Discover(ctx context.Context) ([]Discovered, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mDNS: failed to create resolver: %w", err)
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, m.Service, m.Domain, entries); err != nil {
		return nil, fmt.Errorf("mDNS: failed to browse %s: %w", m.Service, err)
	}

	var out []Discovered
	for {
		select {
		case e, ok := <-entries:
			if !ok {
				return out, nil
			}
			if e == nil || len(e.AddrIPv4) == 0 {
				continue
			}
			out = append(out, Discovered{
				Name:     e.Instance,
				Kind:     ConnectionNetwork,
				Address:  e.AddrIPv4[0].String(),
				Port:     e.Port,
				Protocol: ProtocolRaw,
			})
		case <-ctx.Done():
			return out, nil
		}
	}
}

// DiscoverAll runs every discoverer and merges the results, dropping
// duplicates. A failing discoverer does not hide the others' results; its
// error is returned alongside them.
func DiscoverAll(ctx context.Context, discoverers ...Discoverer) ([]Discovered, []error) {
	seen := make(map[string]bool)
	var out []Discovered
	var errs []error
	for _, d := range discoverers {
		found, err := d.Discover(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		for _, p := range found {
			if seen[p.Key()] {
				continue
			}
			seen[p.Key()] = true
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, errs
}
