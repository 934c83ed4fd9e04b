package core

import "time"

// NewExtractorWith7z lets tests point the extractor at a specific 7z binary.
func NewExtractorWith7z(bin string) *Extractor {
	return &Extractor{sevenZip: bin}
}

// SetNow pins the clock used for record timestamps.
func (m *Manager) SetNow(now func() time.Time) {
	m.now = now
}
