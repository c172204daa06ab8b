// Package metrics defines the optional diagnostics sink the engine components
// accept. Components take a Recorder explicitly instead of touching a
// process-wide flag; Nop is the default when none is supplied.
package metrics

// Recorder receives operational counters from the engine.
type Recorder interface {
	VerificationResult(kind, outcome string)
	ScanForwarded()
	ScanSuppressed()
	WashStarted()
	WashEnded()
	RegistryRefresh(size int, failed bool)
	ActiveWashes(count int)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) VerificationResult(kind, outcome string) {}
func (Nop) ScanForwarded()                          {}
func (Nop) ScanSuppressed()                         {}
func (Nop) WashStarted()                            {}
func (Nop) WashEnded()                              {}
func (Nop) RegistryRefresh(size int, failed bool)   {}
func (Nop) ActiveWashes(count int)                  {}

// OrNop returns r, or Nop when r is nil, so callers can store the field
// without nil checks at every call site.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
