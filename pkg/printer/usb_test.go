package printer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUSBDevice struct {
	written [][]byte
	short   bool
	closed  bool
}

func (d *fakeUSBDevice) Write(_ context.Context, data []byte) (int, error) {
	d.written = append(d.written, append([]byte(nil), data...))
	if d.short {
		return len(data) - 1, nil
	}
	return len(data), nil
}

func (d *fakeUSBDevice) Close() error {
	d.closed = true
	return nil
}

type fakeUSBOpener struct {
	dev *fakeUSBDevice
	err error
	vid uint16
	pid uint16
}

func (o *fakeUSBOpener) Open(vid, pid uint16) (USBDevice, error) {
	o.vid, o.pid = vid, pid
	if o.err != nil {
		return nil, o.err
	}
	return o.dev, nil
}

func usbJob(copies int) *Job {
	return &Job{
		Target:  &Target{Kind: ConnectionUSB, VendorID: 0x04b8, ProductID: 0x0202},
		Payload: []byte{0x1B, 0x40, 'x'},
		Copies:  copies,
	}
}

func TestUSBTransport_Print(t *testing.T) {
	dev := &fakeUSBDevice{}
	opener := &fakeUSBOpener{dev: dev}

	err := NewUSBTransport(opener, 0).Print(context.Background(), usbJob(2))

	require.NoError(t, err)
	assert.Equal(t, uint16(0x04b8), opener.vid)
	assert.Equal(t, uint16(0x0202), opener.pid)
	assert.Len(t, dev.written, 2)
	assert.True(t, dev.closed)
}

func TestUSBTransport_Errors(t *testing.T) {
	t.Run("no device", func(t *testing.T) {
		err := NewUSBTransport(&fakeUSBOpener{err: errors.New("not found")}, 0).Print(context.Background(), usbJob(1))
		assert.ErrorIs(t, err, ErrDeviceUnavailable)
	})

	t.Run("short write", func(t *testing.T) {
		dev := &fakeUSBDevice{short: true}
		err := NewUSBTransport(&fakeUSBOpener{dev: dev}, 0).Print(context.Background(), usbJob(1))
		assert.ErrorIs(t, err, ErrTransfer)
		assert.True(t, dev.closed)
	})

	t.Run("not a usb printer", func(t *testing.T) {
		job := &Job{Target: &Target{Kind: ConnectionNetwork, Address: "10.0.0.1"}}
		err := NewUSBTransport(&fakeUSBOpener{}, 0).Print(context.Background(), job)
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("no descriptor", func(t *testing.T) {
		job := &Job{Target: &Target{Kind: ConnectionUSB}}
		err := NewUSBTransport(&fakeUSBOpener{}, 0).Print(context.Background(), job)
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestUSBTransport_DevicePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	job := &Job{Target: &Target{Kind: ConnectionUSB, DevicePath: path}, Payload: []byte("ab"), Copies: 2}
	require.NoError(t, NewUSBTransport(&fakeUSBOpener{}, 0).Print(context.Background(), job))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abab", string(got))

	job.Target.DevicePath = filepath.Join(t.TempDir(), "missing", "lp1")
	assert.ErrorIs(t, NewUSBTransport(&fakeUSBOpener{}, 0).Print(context.Background(), job), ErrDeviceUnavailable)
}

func TestUSBTransport_Probe(t *testing.T) {
	dev := &fakeUSBDevice{}
	tr := NewUSBTransport(&fakeUSBOpener{dev: dev}, 0)

	assert.NoError(t, tr.Probe(context.Background(), usbJob(1).Target))
	assert.True(t, dev.closed)
	assert.ErrorIs(t, tr.Probe(context.Background(), &Target{Kind: ConnectionSerial}), ErrUnsupported)
}
