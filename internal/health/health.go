package health

import (
	"net/http"
	"sync"
)

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Check reports nil when its dependency is usable.
type Check func() error

// Readiness holds named checks. The zero value has no checks and
// is always ready.
type Readiness struct {
	mu     sync.RWMutex
	names  []string
	checks map[string]Check
}

// NewReadiness returns an empty check set.
func NewReadiness() *Readiness {
	return &Readiness{checks: make(map[string]Check)}
}

// Register adds or replaces a named check.
func (p *Readiness) Register(name string, c Check) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.checks == nil {
		p.checks = make(map[string]Check)
	}
	if _, ok := p.checks[name]; !ok {
		p.names = append(p.names, name)
	}
	p.checks[name] = c
}

// Failing returns the name and error of the first failing check, in
// registration order.
func (p *Readiness) Failing() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, name := range p.names {
		if err := p.checks[name](); err != nil {
			return name, err
		}
	}
	return "", nil
}

// Readyz returns 200 "ready\n" when every check passes and 503 naming the
// first failing check otherwise.
func (p *Readiness) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if name, err := p.Failing(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready: " + name + ": " + err.Error() + "\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}
