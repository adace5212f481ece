package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/riskdash/riskdash/internal/config"
	"github.com/riskdash/riskdash/internal/report"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Component  string     `json:"component"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against report entries and delivers webhook
// notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig

	mu       sync.Mutex
	active   map[string]*Alert    // key: "ruleName:component"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
	now      func() time.Time // injectable for deterministic tests
	wg       sync.WaitGroup   // in-flight deliveries
}

// New creates an Engine from the alert configuration. Rules with a
// malformed condition are dropped with a warning. An Engine with no rules is
// valid; Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	rules := make([]config.AlertRule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		if !validCondition(r.Condition) {
			slog.Warn("alerts: ignoring rule with invalid condition",
				"rule", r.Name, "condition", r.Condition)
			continue
		}
		rules = append(rules, r)
	}
	return &Engine{
		rules:    rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Rules returns the number of rules the engine evaluates.
func (e *Engine) Rules() int { return len(e.rules) }

// Evaluate tests all configured rules against every entry of rep.
// Alerts that fire are stored and webhook delivery is triggered asynchronously.
// Alerts that were firing but whose condition is now false are resolved, as
// are alerts on components that are no longer among rep's entries (removed
// from the registry or moved to rep.Failures).
func (e *Engine) Evaluate(rep *report.Report) {
	if len(e.rules) == 0 || rep == nil {
		return
	}
	now := e.now()
	present := make(map[string]struct{}, len(rep.Entries))

	var changed []*Alert
	e.mu.Lock()
	for _, entry := range rep.Entries {
		present[entry.Component.Name] = struct{}{}
		changed = append(changed, e.evaluateEntryLocked(entry, now)...)
	}
	for key, a := range e.active {
		if _, ok := present[a.Component]; !ok {
			changed = append(changed, e.resolveLocked(key, now))
		}
	}
	e.mu.Unlock()

	for _, a := range changed {
		if a.State == StateFiring {
			slog.Warn("alert fired", "rule", a.RuleName, "component", a.Component,
				"value", a.Value, "severity", a.Severity)
		} else {
			slog.Info("alert resolved", "rule", a.RuleName, "component", a.Component)
		}
		e.dispatch(a)
	}
}

// evaluateEntryLocked applies every rule to one entry and returns copies of
// the alerts whose state changed.
func (e *Engine) evaluateEntryLocked(entry report.Entry, now time.Time) []*Alert {
	var changed []*Alert
	for _, rule := range e.rules {
		fires, value := evalCondition(rule.Condition, entry)
		var a *Alert
		if fires {
			a = e.fireLocked(rule, entry, value, now)
		} else {
			a = e.resolveLocked(rule.Name+":"+entry.Component.Name, now)
		}
		if a != nil {
			changed = append(changed, a)
		}
	}
	return changed
}

// fireLocked records a firing alert unless the rule is cooling down for this
// component. It returns a copy of the new alert, or nil.
func (e *Engine) fireLocked(rule config.AlertRule, entry report.Entry, value float64, now time.Time) *Alert {
	name := entry.Component.Name
	key := rule.Name + ":" + name

	cooldown := rule.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	if now.Sub(e.lastFire[key]) <= cooldown {
		return nil
	}

	sev := rule.Severity
	if sev == "" {
		sev = "warning"
	}
	a := &Alert{
		ID:        fmt.Sprintf("%s:%d", key, now.UnixNano()),
		RuleName:  rule.Name,
		Component: name,
		Severity:  sev,
		Value:     value,
		Message: fmt.Sprintf("%s: %s matched %q (value %g, level %s, likely recovery %.1f months)",
			rule.Name, name, rule.Condition, value, entry.Component.RiskLevel, entry.Timeline.LikelyMonths),
		FiredAt: now,
		State:   StateFiring,
	}
	e.active[key] = a
	e.lastFire[key] = now
	cp := *a
	return &cp
}

// resolveLocked moves the firing alert under key to history. It returns a
// copy of the resolved alert, or nil when nothing was firing.
func (e *Engine) resolveLocked(key string, now time.Time) *Alert {
	a, ok := e.active[key]
	if !ok {
		return nil
	}
	delete(e.active, key)

	a.State = StateResolved
	a.ResolvedAt = &now
	e.history = append(e.history, a)
	if n := len(e.history); n > maxHistoryLen {
		e.history = e.history[n-maxHistoryLen:]
	}
	cp := *a
	return &cp
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour, sorted newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *Alert) int {
		return latest(b).Compare(latest(a))
	})
	return out
}

// Wait blocks until all in-flight webhook deliveries have finished.
func (e *Engine) Wait() { e.wg.Wait() }

func (e *Engine) dispatch(a *Alert) {
	if len(e.webhooks) == 0 {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.deliver(a)
	}()
}

func latest(a *Alert) time.Time {
	if a.ResolvedAt != nil {
		return *a.ResolvedAt
	}
	return a.FiredAt
}
