package core

import "modman/internal/domain"

// progressSink forwards progress to the caller and keeps Percent from going
// backwards within one operation.
type progressSink struct {
	fn   domain.ProgressFunc
	last float64
}

func (s *progressSink) emit(p domain.Progress) {
	if s == nil || s.fn == nil {
		return
	}
	p.Percent = min(max(p.Percent, s.last), 100)
	s.last = p.Percent
	s.fn(p)
}

// slot is one item's equal share of a batch progress bar. The first half of
// the share tracks the download and the second half the extraction.
type slot struct {
	sink  *progressSink
	item  string
	index int
	total int
	base  float64
	share float64
}

func newSlot(sink *progressSink, item string, index, total int) slot {
	share := 100 / float64(total)
	return slot{
		sink:  sink,
		item:  item,
		index: index,
		total: total,
		base:  float64(index-1) * share,
		share: share,
	}
}

// report maps pct, the completion of phase in [0,100], onto the overall bar
func (s slot) report(phase domain.Phase, pct float64) {
	pct = min(max(pct, 0), 100)

	var within float64
	switch phase {
	case domain.PhaseDownload:
		within = pct / 2
	case domain.PhaseExtract:
		within = 50 + pct/2
	case domain.PhaseDone:
		within = 100
	}

	s.sink.emit(domain.Progress{
		Phase:   phase,
		Item:    s.item,
		Index:   s.index,
		Total:   s.total,
		Percent: s.base + s.share*within/100,
	})
}
