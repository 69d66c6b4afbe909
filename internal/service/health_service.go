package service

import (
	"context"
	"sort"
	"time"
)

const (
	DependencyConnected = "connected"
	DependencyDisabled  = "disabled"
	DependencyError     = "error"
)

// PingFunc verifica la conectividad con una dependencia.
type PingFunc func(ctx context.Context) error

// HealthService agrega el estado de las dependencias opcionales (postgres, redis).
type HealthService struct {
	version string
	checks  map[string]PingFunc
	timeout time.Duration
}

type HealthReport struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
	Timestamp    time.Time         `json:"timestamp"`
}

func NewHealthService(version string) *HealthService {
	return &HealthService{
		version: version,
		checks:  make(map[string]PingFunc),
		timeout: 2 * time.Second,
	}
}

// Register agrega una dependencia; ping nil la marca como deshabilitada.
func (s *HealthService) Register(name string, ping PingFunc) {
	s.checks[name] = ping
}

func (s *HealthService) Version() string {
	return s.version
}

// Check ejecuta todos los pings. Status es "unhealthy" si alguna dependencia configurada falla.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:       "healthy",
		Version:      s.version,
		Dependencies: make(map[string]string, len(s.checks)),
		Timestamp:    time.Now().UTC(),
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ping := s.checks[name]
		if ping == nil {
			report.Dependencies[name] = DependencyDisabled
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := ping(pingCtx)
		cancel()
		if err != nil {
			report.Dependencies[name] = DependencyError
			report.Status = "unhealthy"
			continue
		}
		report.Dependencies[name] = DependencyConnected
	}
	return report
}
