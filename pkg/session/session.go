// Package session persists wizard progress through a key-value store port.
//
// Progress is written after every change and read back on start-up. Stored
// values that fail to parse are treated as if nothing had been saved.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dkoosis/qarun/pkg/form"
	"github.com/dkoosis/qarun/pkg/report"
)

// Store is the key-value port the persister writes through.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KeyPrefix prefixes every key qarun writes.
const KeyPrefix = "qarun_"

// TesterKey holds the last tester information. It is shared by all
// catalogue sections and survives Clear.
const TesterKey = KeyPrefix + "tester_info"

// Keys names the stored values of one session.
type Keys struct {
	Step     string
	MaxStep  string
	FormData string
}

// KeysFor returns the keys for a catalogue section. The dotted section path
// becomes a suffix with dots replaced by underscores; an empty section uses
// the bare keys.
func KeysFor(section string) Keys {
	k := Keys{
		Step:     KeyPrefix + "currentStep",
		MaxStep:  KeyPrefix + "maxStepReached",
		FormData: KeyPrefix + "formData",
	}
	if section == "" {
		return k
	}
	suffix := "_" + strings.ReplaceAll(section, ".", "_")
	k.Step += suffix
	k.MaxStep += suffix
	k.FormData += suffix
	return k
}

// All returns the keys in a stable order.
func (k Keys) All() []string { return []string{k.Step, k.MaxStep, k.FormData} }

// IsProgressKey reports whether key holds the progress of some section.
// Tester information and other qarun keys are not progress.
func IsProgressKey(key string) bool {
	for _, base := range KeysFor("").All() {
		if key == base || strings.HasPrefix(key, base+"_") {
			return true
		}
	}
	return false
}

// Progress is the persisted state of one wizard session.
type Progress struct {
	CurrentStep    int
	MaxStepReached int
	FormValues     form.Values
}

// Persister saves and restores Progress under one set of keys.
type Persister struct {
	store Store
	keys  Keys
	log   *zap.Logger
}

// NewPersister returns a persister for section. A nil logger is replaced by a no-op one.
func NewPersister(store Store, section string, log *zap.Logger) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Persister{store: store, keys: KeysFor(section), log: log}
}

// Keys returns the keys p writes.
func (p *Persister) Keys() Keys { return p.keys }

// Save writes the complete progress.
func (p *Persister) Save(ctx context.Context, prog Progress) error {
	values := prog.FormValues
	if values == nil {
		values = form.Values{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	writes := []struct{ key, value string }{
		{p.keys.Step, strconv.Itoa(prog.CurrentStep)},
		{p.keys.MaxStep, strconv.Itoa(prog.MaxStepReached)},
		{p.keys.FormData, string(data)},
	}
	for _, w := range writes {
		if err := p.store.Set(ctx, w.key, w.value); err != nil {
			return fmt.Errorf("save progress: %s: %w", w.key, err)
		}
	}
	return nil
}

// Load reads saved progress. ok is false when nothing usable was saved.
// Only store failures are returned as errors.
func (p *Persister) Load(ctx context.Context) (prog Progress, ok bool, err error) {
	rawStep, found, err := p.store.Get(ctx, p.keys.Step)
	if err != nil {
		return Progress{}, false, fmt.Errorf("load progress: %w", err)
	}
	if !found {
		return Progress{}, false, nil
	}
	step, err := strconv.Atoi(strings.TrimSpace(rawStep))
	if err != nil || step < 1 {
		p.log.Debug("ignoring malformed saved step", zap.String("key", p.keys.Step), zap.String("value", rawStep))
		return Progress{}, false, nil
	}
	prog.CurrentStep = step
	prog.MaxStepReached = step

	rawMax, found, err := p.store.Get(ctx, p.keys.MaxStep)
	if err != nil {
		return Progress{}, false, fmt.Errorf("load progress: %w", err)
	}
	if found {
		maxStep, convErr := strconv.Atoi(strings.TrimSpace(rawMax))
		if convErr != nil {
			p.log.Debug("ignoring malformed saved max step", zap.String("key", p.keys.MaxStep), zap.String("value", rawMax))
			return Progress{}, false, nil
		}
		if maxStep > prog.MaxStepReached {
			prog.MaxStepReached = maxStep
		}
	}

	rawData, found, err := p.store.Get(ctx, p.keys.FormData)
	if err != nil {
		return Progress{}, false, fmt.Errorf("load progress: %w", err)
	}
	prog.FormValues = form.Values{}
	if found {
		if jsonErr := json.Unmarshal([]byte(rawData), &prog.FormValues); jsonErr != nil {
			p.log.Debug("ignoring malformed saved form data", zap.String("key", p.keys.FormData), zap.Error(jsonErr))
			return Progress{}, false, nil
		}
		if prog.FormValues == nil {
			prog.FormValues = form.Values{}
		}
	}
	return prog, true, nil
}

// Clear deletes the saved progress. Tester information is kept.
func (p *Persister) Clear(ctx context.Context) error {
	for _, key := range p.keys.All() {
		if err := p.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear progress: %s: %w", key, err)
		}
	}
	return nil
}

// SaveTester remembers the tester information for the next session.
func (p *Persister) SaveTester(ctx context.Context, t form.Tester) error {
	data, err := json.Marshal(testerRecord(t))
	if err != nil {
		return fmt.Errorf("save tester: %w", err)
	}
	if err := p.store.Set(ctx, TesterKey, string(data)); err != nil {
		return fmt.Errorf("save tester: %w", err)
	}
	return nil
}

// LoadTester returns the remembered tester information.
func (p *Persister) LoadTester(ctx context.Context) (form.Tester, bool, error) {
	raw, found, err := p.store.Get(ctx, TesterKey)
	if err != nil {
		return form.Tester{}, false, fmt.Errorf("load tester: %w", err)
	}
	if !found {
		return form.Tester{}, false, nil
	}
	var rec testerRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		p.log.Debug("ignoring malformed tester info", zap.Error(err))
		return form.Tester{}, false, nil
	}
	return form.Tester(rec), true, nil
}

type testerRecord struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// ApplyTo copies the saved values that plan still renders. Keys for fields
// that no longer exist are dropped, and so are statuses that do not parse.
func ApplyTo(saved form.Values, plan *form.Plan) form.Values {
	out := form.Values{}
	for name, v := range saved {
		if !plan.HasField(name) {
			continue
		}
		if _, ok := form.StatusID(name); ok {
			st, ok := report.ParseStatus(v)
			if !ok {
				continue
			}
			v = string(st)
		}
		out.Set(name, v)
	}
	return out
}
