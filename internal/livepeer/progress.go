package livepeer

import (
	"io"
	"sync"
)

// ProgressReader reports the fraction of bytes read so far
type ProgressReader struct {
	reader     io.Reader
	total      int64
	read       int64
	lastReport int
	onProgress func(float64)
	mu         sync.Mutex
}

// NewProgressReader wraps r; onProgress fires at most once per whole percent
func NewProgressReader(r io.Reader, total int64, onProgress func(float64)) *ProgressReader {
	return &ProgressReader{
		reader:     r,
		total:      total,
		lastReport: -1,
		onProgress: onProgress,
	}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

func (p *ProgressReader) advance(n int64) {
	if p.onProgress == nil || p.total <= 0 {
		return
	}

	p.mu.Lock()
	p.read += n
	fraction := float64(p.read) / float64(p.total)
	if fraction > 1 {
		fraction = 1
	}
	percent := int(fraction * 100)
	if percent == p.lastReport {
		p.mu.Unlock()
		return
	}
	p.lastReport = percent
	p.mu.Unlock()

	p.onProgress(fraction)
}
