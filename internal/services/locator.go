package services

import (
	"context"
	"strings"
	"sync"
	"time"
)

// StaticLocator resolves facility timezones from a fixed facility→IANA-name
// map, typically loaded from the FACILITY_TIMEZONES environment variable
// ("fac-1=America/New_York,fac-2=Europe/Athens"). Unknown facilities resolve
// to UTC. Loaded *time.Location values are cached.
type StaticLocator struct {
	zones map[string]string

	mu    sync.Mutex
	cache map[string]*time.Location
}

// NewStaticLocator parses a CSV of facility=zone pairs. Malformed pairs are
// skipped rather than rejected; a misconfigured facility just falls back to
// UTC.
func NewStaticLocator(csv string) *StaticLocator {
	zones := make(map[string]string)
	for _, pair := range strings.Split(csv, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" || v == "" {
			continue
		}
		zones[k] = v
	}
	return &StaticLocator{zones: zones, cache: make(map[string]*time.Location)}
}

// Location implements FacilityLocator.
func (l *StaticLocator) Location(_ context.Context, facilityID string) (*time.Location, error) {
	name, ok := l.zones[facilityID]
	if !ok {
		return time.UTC, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if loc, ok := l.cache[name]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, nil
	}
	l.cache[name] = loc
	return loc, nil
}
