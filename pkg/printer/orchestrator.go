package printer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

// fallbackOrder is the fixed priority in which transports are tried.
var fallbackOrder = []Method{MethodDirectESCPOS, MethodUSB, MethodFrame, MethodSilent, MethodDialog}

// Outcome is the result of one transport attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// AttemptRecord is one transport's entry in an attempt log.
type AttemptRecord struct {
	Transport Method        `json:"transport"`
	Outcome   Outcome       `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Attempt is the ordered log of one print request.
type Attempt struct {
	JobID     string          `json:"job_id"`
	PrinterID string          `json:"printer_id,omitempty"`
	Records   []AttemptRecord `json:"records"`
	Succeeded Method          `json:"succeeded,omitempty"`
	StartedAt time.Time       `json:"started_at"`
}

// Success reports whether some transport delivered the job.
func (a *Attempt) Success() bool {
	return a != nil && a.Succeeded != ""
}

// Registry resolves printer ids to targets.
type Registry interface {
	Get(id string) (*Target, bool)
	Default() (*Target, bool)
}

// Config holds orchestrator-wide settings.
type Config struct {
	AttemptTimeout time.Duration
	Encoder        EncoderProfile
	Receipt        receipt.Options
	Business       receipt.BusinessProfile
}

// Options are the per-request print options.
type Options struct {
	Method        Method             `json:"method,omitempty"`
	PaperSize     *receipt.PaperSize `json:"paper_size,omitempty"`
	Copies        int                `json:"copies,omitempty"`
	AutoCut       *bool              `json:"auto_cut,omitempty"`
	Silent        bool               `json:"silent,omitempty"`
	Preview       bool               `json:"preview,omitempty"`
	DynamicHeight bool               `json:"dynamic_height,omitempty"`
	PrinterID     string             `json:"printer_id,omitempty"`
}

// Request is one print request: either an order or pre-formatted content.
type Request struct {
	Content  string
	Options  Options
	Order    *receipt.Order
	Business *receipt.BusinessProfile
}

// ProbeResult reports one transport's view of a printer.
type ProbeResult struct {
	Transport Method `json:"transport"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// Orchestrator builds print jobs and walks the transports in priority order
// until one succeeds. Jobs for the same printer never overlap.
type Orchestrator struct {
	registry   Registry
	logger     *zap.Logger
	cfg        Config
	transports map[Method]Transport
	locks      *keyedMutex

	mu        sync.RWMutex
	observers []func(Attempt)
}

// NewOrchestrator wires the transports. A later transport with the same name replaces an earlier one.
func NewOrchestrator(registry Registry, logger *zap.Logger, cfg Config, transports ...Transport) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Receipt.Width <= 0 {
		cfg.Receipt = receipt.DefaultOptions()
	}
	o := &Orchestrator{
		registry:   registry,
		logger:     logger,
		cfg:        cfg,
		transports: make(map[Method]Transport, len(transports)),
		locks:      newKeyedMutex(),
	}
	for _, t := range transports {
		if t != nil {
			o.transports[t.Name()] = t
		}
	}
	return o
}

// Methods lists the registered transports in fallback order.
func (o *Orchestrator) Methods() []Method {
	var out []Method
	for _, m := range fallbackOrder {
		if _, ok := o.transports[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Subscribe registers fn to receive every finished attempt.
func (o *Orchestrator) Subscribe(fn func(Attempt)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// SmartPrint prints content or an order and reports whether some transport succeeded.
func (o *Orchestrator) SmartPrint(ctx context.Context, content string, opts Options, order *receipt.Order, profile *receipt.BusinessProfile) (bool, error) {
	_, err := o.Print(ctx, Request{Content: content, Options: opts, Order: order, Business: profile})
	return err == nil, err
}

// Print builds the job for req and runs it through the transports.
func (o *Orchestrator) Print(ctx context.Context, req Request) (*Attempt, error) {
	job, err := o.BuildJob(req)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, job, req.Options)
}

// BuildJob formats and encodes a request without sending it anywhere.
func (o *Orchestrator) BuildJob(req Request) (*Job, error) {
	if req.Order == nil && strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyJob
	}

	target, err := o.resolve(req.Options.PrinterID)
	if err != nil {
		return nil, err
	}

	biz := req.Business
	if biz == nil {
		b := o.cfg.Business
		biz = &b
	}

	var doc *receipt.Document
	title := "Receipt"
	if req.Order != nil {
		doc = receipt.Format(req.Order, biz, o.cfg.Receipt)
		if req.Order.OrderNumber != "" {
			title = "Receipt #" + req.Order.OrderNumber
		}
	} else {
		doc = receipt.FromText(req.Content, o.cfg.Receipt.Width)
	}

	fixed := target != nil && target.FixedLength
	paper := receipt.PaperFor(req.Order, biz, req.Options.DynamicHeight, fixed)
	if target != nil && target.PaperWidthMM > 0 {
		paper.WidthMM = target.PaperWidthMM
	}
	if ps := req.Options.PaperSize; ps != nil {
		if ps.WidthMM > 0 {
			paper.WidthMM = ps.WidthMM
		}
		if ps.HeightMM > 0 {
			paper.HeightMM = receipt.ClampHeight(ps.HeightMM)
		}
	}
	doc.Paper = paper

	copies := req.Options.Copies
	if copies < 1 {
		copies = 1
	}

	profile := o.cfg.Encoder
	if req.Options.AutoCut != nil {
		profile.AutoCut = *req.Options.AutoCut
	}

	html, err := receipt.RenderHTML(doc, receipt.HTMLOptions{
		Title:     title,
		Paper:     paper,
		Copies:    copies,
		AutoPrint: !req.Options.Preview,
	})
	if err != nil {
		return nil, fmt.Errorf("render receipt page: %w", err)
	}

	return &Job{
		ID:       uuid.NewString(),
		Target:   target,
		Document: doc,
		Payload:  Encode(doc, profile),
		Text:     doc.Text(),
		HTML:     html,
		Paper:    paper,
		Copies:   copies,
	}, nil
}

func (o *Orchestrator) resolve(printerID string) (*Target, error) {
	if o.registry == nil {
		if printerID != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPrinter, printerID)
		}
		return nil, nil
	}
	if printerID != "" {
		t, ok := o.registry.Get(printerID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPrinter, printerID)
		}
		return t, nil
	}
	t, _ := o.registry.Default()
	return t, nil
}

// candidates returns the transports to try, in order. A pinned method that is
// not registered is returned in missing.
func (o *Orchestrator) candidates(opts Options) (list []Transport, missing Method) {
	method := opts.Method
	if opts.Preview {
		method = MethodDialog
	}
	if method != "" && method != MethodAuto {
		t, ok := o.transports[method]
		if !ok {
			return nil, method
		}
		return []Transport{t}, ""
	}
	for _, m := range fallbackOrder {
		if opts.Silent && m == MethodDialog {
			continue
		}
		if t, ok := o.transports[m]; ok {
			list = append(list, t)
		}
	}
	return list, ""
}

// Run sends an already built job, trying each candidate transport once and
// stopping at the first success. It returns an *ExhaustedError carrying the
// attempt log when nothing succeeded.
func (o *Orchestrator) Run(ctx context.Context, job *Job, opts Options) (*Attempt, error) {
	key := "system"
	attempt := &Attempt{JobID: job.ID, StartedAt: time.Now()}
	if job.Target != nil {
		key = job.Target.ID
		attempt.PrinterID = job.Target.ID
	}
	log := o.logger.With(zap.String("job_id", job.ID), zap.String("printer_id", attempt.PrinterID))

	unlock, err := o.locks.lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("waiting for printer %s: %w", key, err)
	}
	defer unlock()

	list, missing := o.candidates(opts)
	if missing != "" {
		attempt.Records = append(attempt.Records, AttemptRecord{
			Transport: missing,
			Outcome:   OutcomeSkipped,
			Error:     fmt.Sprintf("%s transport is not available", missing),
		})
	}

	for _, t := range list {
		if ctx.Err() != nil {
			break
		}
		name := t.Name()
		start := time.Now()
		err := withTimeout(ctx, o.cfg.AttemptTimeout, func(ctx context.Context) error {
			return safeCall(ctx, t, job)
		})
		rec := AttemptRecord{Transport: name, Duration: time.Since(start)}

		switch {
		case err == nil:
			rec.Outcome = OutcomeSucceeded
			attempt.Records = append(attempt.Records, rec)
			attempt.Succeeded = name
			log.Info("Receipt printed", zap.String("transport", string(name)), zap.Duration("duration", rec.Duration))
			o.notify(attempt)
			return attempt, nil
		case errors.Is(err, ErrUnsupported):
			rec.Outcome = OutcomeSkipped
			rec.Error = err.Error()
			log.Debug("Transport skipped", zap.String("transport", string(name)), zap.Error(err))
		default:
			rec.Outcome = OutcomeFailed
			rec.Error = err.Error()
			log.Warn("Print attempt failed", zap.String("transport", string(name)), zap.Error(err))
		}
		attempt.Records = append(attempt.Records, rec)
	}

	exhausted := &ExhaustedError{Attempt: attempt}
	log.Error("All print methods failed", zap.Error(exhausted))
	o.notify(attempt)
	return attempt, exhausted
}

// Probe asks every transport that can check reachability about target.
func (o *Orchestrator) Probe(ctx context.Context, target *Target) []ProbeResult {
	var results []ProbeResult
	for _, m := range o.Methods() {
		p, ok := o.transports[m].(Prober)
		if !ok {
			continue
		}
		err := p.Probe(ctx, target)
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		r := ProbeResult{Transport: m, Reachable: err == nil}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

func (o *Orchestrator) notify(a *Attempt) {
	o.mu.RLock()
	observers := o.observers
	o.mu.RUnlock()
	for _, fn := range observers {
		cp := *a
		cp.Records = append([]AttemptRecord(nil), a.Records...)
		fn(cp)
	}
}

// safeCall turns a transport panic into an ordinary failure.
func safeCall(ctx context.Context, t Transport, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s transport panicked: %v", t.Name(), r)
		}
	}()
	return t.Print(ctx, job)
}

// keyedMutex serialises work per key. Waiting honours ctx.
type keyedMutex struct {
	mu    sync.Mutex
	slots map[string]*keyedSlot
}

type keyedSlot struct {
	ch   chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{slots: make(map[string]*keyedSlot)}
}

func (k *keyedMutex) lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	s, ok := k.slots[key]
	if !ok {
		s = &keyedSlot{ch: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			k.release(key, s)
		}, nil
	case <-ctx.Done():
		k.release(key, s)
		return nil, ctx.Err()
	}
}

func (k *keyedMutex) release(key string, s *keyedSlot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}
