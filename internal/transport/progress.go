package transport

import "io"

// progressReader reports byte progress as an integer percentage while data is
// pulled through it. Percentages never decrease and never exceed cap.
type progressReader struct {
	src   io.Reader
	total int64
	read  int64
	last  int
	cap   int
	cb    func(percent int)
}

func newProgressReader(src io.Reader, total int64, capPct int, cb func(percent int)) *progressReader {
	return &progressReader{src: src, total: total, last: -1, cap: capPct, cb: cb}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.src.Read(b)
	if n > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > p.cap {
			pct = p.cap
		}
		if pct > p.last {
			p.last = pct
			p.cb(pct)
		}
	}
	return n, err
}
