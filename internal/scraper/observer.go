// internal/scraper/observer.go
package scraper

import "time"

// Observer receives pipeline measurements. monitoring.MetricsManager
// implements it.
type Observer interface {
	ObserveStep(step string, took time.Duration, err error)
	ObserveTransientTimeout(step string)
	ObserveSkippedContainer(reason string)
	ObserveScrape(outcome string, took time.Duration, courses int)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) ObserveStep(string, time.Duration, error) {}
func (NopObserver) ObserveTransientTimeout(string) {}
func (NopObserver) ObserveSkippedContainer(string) {}
func (NopObserver) ObserveScrape(string, time.Duration, int) {}
