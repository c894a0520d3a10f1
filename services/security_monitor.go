package services

import (
	"log"
	"sync"
	"time"
)

// LoginMonitor watches failed logins per client IP and raises an alert when
// an IP crosses the threshold inside the window. One alert per IP per hour.
type LoginMonitor struct {
	Threshold int
	Window    time.Duration

	mu           sync.Mutex
	failedLogins map[string][]time.Time
	alertedIPs   map[string]time.Time
	alerts       []SecurityAlert
	now          func() time.Time
}

// SecurityAlert is a raised login alert
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
}

const maxSecurityAlerts = 100

// Monitor is the process-wide login monitor used by the auth handlers
var Monitor = NewLoginMonitor(5, 10*time.Minute)

func NewLoginMonitor(threshold int, window time.Duration) *LoginMonitor {
	return &LoginMonitor{
		Threshold:    threshold,
		Window:       window,
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		now:          time.Now,
	}
}

// TrackFailedLogin records a failed attempt from ip
func (m *LoginMonitor) TrackFailedLogin(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-m.Window)
	recent := m.failedLogins[ip][:0]
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.failedLogins[ip] = recent

	if len(recent) < m.Threshold {
		return
	}
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < time.Hour {
		return
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Reason: "Multiple failed logins detected", Attempts: len(recent)}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxSecurityAlerts {
		m.alerts = m.alerts[:maxSecurityAlerts]
	}
	log.Printf("[SECURITY ALERT] %s from IP: %s (%d attempts)", alert.Reason, ip, alert.Attempts)
}

// RecentAlerts returns raised alerts, newest first
func (m *LoginMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SecurityAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Prune drops stale per-IP state. The cleanup job calls it.
func (m *LoginMonitor) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > m.Window {
			delete(m.failedLogins, ip)
		}
	}
	for ip, at := range m.alertedIPs {
		if now.Sub(at) > time.Hour {
			delete(m.alertedIPs, ip)
		}
	}
}
