package analysis

import "sync/atomic"

// Preference holds the process-wide preferred provider. Reads are lock-free;
// the last Set wins.
type Preference struct {
	v atomic.Value // Provider
}

// NewPreference returns a Preference initialised to initial, which must be a
// valid selection.
func NewPreference(initial Provider) (*Preference, error) {
	p, err := ParseProvider(string(initial))
	if err != nil {
		return nil, err
	}
	pref := &Preference{}
	pref.v.Store(p)
	return pref, nil
}

// Get returns the current preference. A zero Preference reads as auto.
func (p *Preference) Get() Provider {
	if v, ok := p.v.Load().(Provider); ok {
		return v
	}
	return ProviderAuto
}

// Set replaces the preference. Values outside {auto, openai, gemini} are
// rejected and leave the current value untouched.
func (p *Preference) Set(value Provider) error {
	parsed, err := ParseProvider(string(value))
	if err != nil {
		return err
	}
	p.v.Store(parsed)
	return nil
}
