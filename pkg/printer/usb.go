package printer

import (
	"context"
	"fmt"
	"os"
	"time"
)

// USBDevice is an opened printer interface with a bulk OUT endpoint.
type USBDevice interface {
	Write(ctx context.Context, data []byte) (int, error)
	Close() error
}

// USBOpener finds and claims a printer by vendor and product id.
type USBOpener interface {
	Open(vendorID, productID uint16) (USBDevice, error)
}

// USBTransport sends ESC/POS bytes to a USB printer, either through libusb
// (vendor/product id) or by writing to a device file such as /dev/usb/lp0.
type USBTransport struct {
	opener    USBOpener
	copyDelay time.Duration
}

// NewUSBTransport creates the USB transport. A nil opener uses libusb.
func NewUSBTransport(opener USBOpener, copyDelay time.Duration) *USBTransport {
	if opener == nil {
		opener = GousbOpener{}
	}
	return &USBTransport{opener: opener, copyDelay: copyDelay}
}

func (t *USBTransport) Name() Method {
	return MethodUSB
}

func (t *USBTransport) Print(ctx context.Context, job *Job) error {
	if job.kind() != ConnectionUSB {
		return fmt.Errorf("%w: %q connection", ErrUnsupported, job.kind())
	}
	target := job.Target
	switch {
	case target.VendorID != 0 && target.ProductID != 0:
		return t.printDevice(ctx, job)
	case target.DevicePath != "":
		return t.printFile(ctx, job)
	default:
		return fmt.Errorf("%w: usb printer has no vendor/product id or device path", ErrUnsupported)
	}
}

func (t *USBTransport) printDevice(ctx context.Context, job *Job) error {
	target := job.Target
	dev, err := t.opener.Open(target.VendorID, target.ProductID)
	if err != nil {
		return fmt.Errorf("%w: %04x:%04x: %v", ErrDeviceUnavailable, target.VendorID, target.ProductID, err)
	}
	defer dev.Close()

	for i := 0; i < job.copies(); i++ {
		if i > 0 {
			if err := sleepCtx(ctx, t.copyDelay); err != nil {
				return err
			}
		}
		n, err := dev.Write(ctx, job.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		if n != len(job.Payload) {
			return fmt.Errorf("%w: short write %d of %d bytes", ErrTransfer, n, len(job.Payload))
		}
	}
	return nil
}

// printFile writes to a kernel printer device file.
func (t *USBTransport) printFile(ctx context.Context, job *Job) error {
	path := job.Target.DevicePath
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: failed to open USB printer at %s: %v", ErrDeviceUnavailable, path, err)
	}
	defer f.Close()

	for i := 0; i < job.copies(); i++ {
		if i > 0 {
			if err := sleepCtx(ctx, t.copyDelay); err != nil {
				return err
			}
		}
		if _, err := f.Write(job.Payload); err != nil {
			return fmt.Errorf("%w: failed to write to USB printer: %v", ErrTransfer, err)
		}
	}
	return nil
}

// Probe opens and releases the device without writing.
func (t *USBTransport) Probe(_ context.Context, target *Target) error {
	if target == nil || target.Kind != ConnectionUSB {
		return ErrUnsupported
	}
	if target.VendorID != 0 && target.ProductID != 0 {
		dev, err := t.opener.Open(target.VendorID, target.ProductID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
		return dev.Close()
	}
	if target.DevicePath == "" {
		return ErrUnsupported
	}
	if _, err := os.Stat(target.DevicePath); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return nil
}
