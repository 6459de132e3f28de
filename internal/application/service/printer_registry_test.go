package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/receipt-print-api/internal/domain/entity"
	"github.com/sangkips/receipt-print-api/internal/domain/enum"
	"github.com/sangkips/receipt-print-api/pkg/apperror"
	"github.com/sangkips/receipt-print-api/pkg/printer"
)

type memPrinterRepo struct {
	rows    []entity.PrinterConfig
	listErr error
	saved   int
}

func (m *memPrinterRepo) List(context.Context) ([]entity.PrinterConfig, error) {
	return append([]entity.PrinterConfig(nil), m.rows...), m.listErr
}

func (m *memPrinterRepo) SaveAll(_ context.Context, printers []entity.PrinterConfig) error {
	m.saved++
	m.rows = append([]entity.PrinterConfig(nil), printers...)
	return nil
}

func networkPrinter(name string) entity.PrinterConfig {
	return entity.PrinterConfig{Name: name, ConnectionType: enum.ConnectionTypeNetwork, Address: "192.168.1.50", Port: 9100, Protocol: "raw"}
}

func defaults(r *PrinterRegistry) []string {
	var out []string
	for _, p := range r.List() {
		if p.IsDefault {
			out = append(out, p.Name)
		}
	}
	return out
}

func TestPrinterRegistry_Lifecycle(t *testing.T) {
	repo := &memPrinterRepo{}
	r := NewPrinterRegistry(repo, nil)
	require.NoError(t, r.Init(context.Background()))

	_, ok := r.Default()
	assert.False(t, ok, "empty registry has no default")

	counter, err := r.Add(networkPrinter("Counter"))
	require.NoError(t, err)
	assert.True(t, counter.IsDefault, "first printer becomes default")
	assert.Equal(t, 79.5, counter.PaperWidthMM)

	kitchen, err := r.Add(networkPrinter("Kitchen"))
	require.NoError(t, err)
	assert.False(t, kitchen.IsDefault)

	require.NoError(t, r.SetDefault(kitchen.ID.String()))
	assert.Equal(t, []string{"Kitchen"}, defaults(r))

	target, ok := r.Get(counter.ID.String())
	require.True(t, ok)
	assert.Equal(t, printer.ConnectionNetwork, target.Kind)
	assert.Equal(t, "raw", target.Protocol)

	require.NoError(t, r.Persist(context.Background()))
	assert.Len(t, repo.rows, 2)

	reloaded := NewPrinterRegistry(repo, nil)
	require.NoError(t, reloaded.Init(context.Background()))
	assert.Equal(t, []string{"Kitchen"}, defaults(reloaded))
}

func TestPrinterRegistry_RemovePromotesOldest(t *testing.T) {
	r := NewPrinterRegistry(&memPrinterRepo{}, nil)
	a, _ := r.Add(networkPrinter("A"))
	b, _ := r.Add(networkPrinter("B"))
	_, _ = r.Add(networkPrinter("C"))

	require.NoError(t, r.SetDefault(b.ID.String()))
	require.NoError(t, r.Remove(b.ID.String()))
	assert.Equal(t, []string{"A"}, defaults(r))

	require.NoError(t, r.Remove(a.ID.String()))
	assert.Equal(t, []string{"C"}, defaults(r))

	err := r.Remove(a.ID.String())
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestPrinterRegistry_AddDefaultReplacesExisting(t *testing.T) {
	r := NewPrinterRegistry(&memPrinterRepo{}, nil)
	_, _ = r.Add(networkPrinter("A"))

	p := networkPrinter("B")
	p.IsDefault = true
	_, err := r.Add(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, defaults(r))
}

func TestPrinterRegistry_InitRepairsDefaults(t *testing.T) {
	older := networkPrinter("Older")
	older.ID, older.CreatedAt = uuid.New(), time.Now().Add(-time.Hour)
	newer := networkPrinter("Newer")
	newer.ID, newer.CreatedAt = uuid.New(), time.Now()

	t.Run("none flagged", func(t *testing.T) {
		r := NewPrinterRegistry(&memPrinterRepo{rows: []entity.PrinterConfig{newer, older}}, nil)
		require.NoError(t, r.Init(context.Background()))
		assert.Equal(t, []string{"Older"}, defaults(r))
	})

	t.Run("several flagged", func(t *testing.T) {
		a, b := older, newer
		a.IsDefault, b.IsDefault = true, true
		r := NewPrinterRegistry(&memPrinterRepo{rows: []entity.PrinterConfig{a, b}}, nil)
		require.NoError(t, r.Init(context.Background()))
		assert.Equal(t, []string{"Older"}, defaults(r))
	})

	t.Run("load error", func(t *testing.T) {
		r := NewPrinterRegistry(&memPrinterRepo{listErr: errors.New("disk gone")}, nil)
		assert.Error(t, r.Init(context.Background()))
	})
}

func TestPrinterRegistry_Update(t *testing.T) {
	r := NewPrinterRegistry(&memPrinterRepo{}, nil)
	p, _ := r.Add(networkPrinter("Counter"))

	changed := networkPrinter("Front counter")
	changed.Address = "10.0.0.7"
	updated, err := r.Update(p.ID.String(), changed)
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, "10.0.0.7", updated.Address)

	_, err = r.Update(uuid.NewString(), changed)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestValidatePrinter(t *testing.T) {
	tests := []struct {
		name   string
		in     entity.PrinterConfig
		fields []string
	}{
		{"network ok", networkPrinter("A"), nil},
		{"missing name", entity.PrinterConfig{ConnectionType: enum.ConnectionTypeBrowser}, []string{"name"}},
		{"bad type", entity.PrinterConfig{Name: "A", ConnectionType: "fax"}, []string{"connection_type"}},
		{"network without address", entity.PrinterConfig{Name: "A", ConnectionType: enum.ConnectionTypeNetwork}, []string{"address"}},
		{"bad protocol", entity.PrinterConfig{Name: "A", ConnectionType: enum.ConnectionTypeNetwork, Address: "h", Protocol: "ipp"}, []string{"protocol"}},
		{"serial without port", entity.PrinterConfig{Name: "A", ConnectionType: enum.ConnectionTypeSerial}, []string{"serial_port"}},
		{"usb without descriptor", entity.PrinterConfig{Name: "A", ConnectionType: enum.ConnectionTypeUSB, VendorID: 0x04b8}, []string{"vendor_id"}},
		{"usb device path", entity.PrinterConfig{Name: "A", ConnectionType: enum.ConnectionTypeUSB, DevicePath: "/dev/usb/lp0"}, nil},
		{"port out of range", entity.PrinterConfig{Name: "A", ConnectionType: enum.ConnectionTypeSystem, Port: 70000}, []string{"port"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			err := ValidatePrinter(&p)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			appErr := apperror.GetAppError(err)
			require.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
			var got []string
			for _, f := range appErr.Errors {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}

	p := entity.PrinterConfig{Name: " A ", ConnectionType: enum.ConnectionTypeNetwork, Address: "h"}
	require.NoError(t, ValidatePrinter(&p))
	assert.Equal(t, "A", p.Name)
	assert.Equal(t, "http", p.Protocol)
}

// gatedRepo holds the first SaveAll until release is closed
type gatedRepo struct {
	mu      sync.Mutex
	rows    []entity.PrinterConfig
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRepo) List(context.Context) ([]entity.PrinterConfig, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]entity.PrinterConfig(nil), g.rows...), nil
}

func (g *gatedRepo) SaveAll(_ context.Context, printers []entity.PrinterConfig) error {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if first {
		close(g.entered)
		<-g.release
	}
	g.mu.Lock()
	g.rows = append([]entity.PrinterConfig(nil), printers...)
	g.mu.Unlock()
	return nil
}

func TestPrinterRegistry_ConcurrentPersistKeepsLatest(t *testing.T) {
	ctx := context.Background()
	repo := &gatedRepo{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewPrinterRegistry(repo, nil)
	require.NoError(t, r.Init(ctx))

	_, err := r.Add(networkPrinter("A"))
	require.NoError(t, err)
	first := make(chan error, 1)
	go func() { first <- r.Persist(ctx) }()
	<-repo.entered

	_, err = r.Add(networkPrinter("B"))
	require.NoError(t, err)
	second := make(chan error, 1)
	go func() { second <- r.Persist(ctx) }()

	time.Sleep(20 * time.Millisecond)
	close(repo.release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	stored, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "a printer acknowledged to the client is in storage")
	assert.Len(t, r.List(), 2)
}
