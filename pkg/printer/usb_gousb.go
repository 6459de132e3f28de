package printer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// GousbOpener opens printers through libusb.
type GousbOpener struct{}

type gousbDevice struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	out  *gousb.OutEndpoint
}

// Open claims interface 0 of the active configuration and picks its first
// bulk OUT endpoint. Everything acquired is released if a later step fails.
func (GousbOpener) Open(vendorID, productID uint16) (USBDevice, error) {
	uctx := gousb.NewContext()
	dev, err := uctx.OpenDeviceWithVIDPID(gousb.ID(vendorID), gousb.ID(productID))
	if err != nil || dev == nil {
		uctx.Close()
		if err == nil {
			err = errors.New("no matching device")
		}
		return nil, err
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("auto detach: %w", err)
	}

	cfgNum, err := dev.ActiveConfigNum()
	if err != nil || cfgNum == 0 {
		cfgNum = 1
	}
	cfg, err := dev.Config(cfgNum)
	if err != nil {
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("select configuration %d: %w", cfgNum, err)
	}

	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("claim interface: %w", err)
	}

	var out *gousb.OutEndpoint
	for _, ep := range intf.Setting.Endpoints {
		if ep.Direction == gousb.EndpointDirectionOut && ep.TransferType == gousb.TransferTypeBulk {
			out, err = intf.OutEndpoint(ep.Number)
			break
		}
	}
	if out == nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		uctx.Close()
		if err == nil {
			err = errors.New("no bulk OUT endpoint")
		}
		return nil, err
	}

	return &gousbDevice{ctx: uctx, dev: dev, cfg: cfg, intf: intf, out: out}, nil
}

func (d *gousbDevice) Write(ctx context.Context, data []byte) (int, error) {
	return d.out.WriteContext(ctx, data)
}

func (d *gousbDevice) Close() error {
	d.intf.Close()
	err := d.cfg.Close()
	if cerr := d.dev.Close(); err == nil {
		err = cerr
	}
	if cerr := d.ctx.Close(); err == nil {
		err = cerr
	}
	return err
}
