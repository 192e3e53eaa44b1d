package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/MaximilianIsing/OCR-Processing/internal/core/recognize"
)

// handlePool hands out recognizer handles to batch slots so their startup
// cost is paid once per run instead of once per page. At most one task holds
// a given handle at a time.
type handlePool struct {
	free chan recognize.Handle
	all  []recognize.Handle
}

// newHandlePool creates size identically configured handles. On a creation
// failure the handles built so far are closed before the error is returned.
func newHandlePool(provider recognize.Provider, size int) (*handlePool, error) {
	p := &handlePool{free: make(chan recognize.Handle, size)}
	for i := 0; i < size; i++ {
		h, err := provider.NewHandle()
		if err != nil {
			p.releaseAll()
			return nil, fmt.Errorf("create recognizer %d of %d: %w", i+1, size, err)
		}
		p.all = append(p.all, h)
		p.free <- h
	}
	return p, nil
}

func (p *handlePool) acquire() recognize.Handle {
	return <-p.free
}

func (p *handlePool) release(h recognize.Handle) {
	p.free <- h
}

// releaseAll closes every handle the pool ever created. Handle.Close is
// idempotent, so this is safe to run on every exit path.
func (p *handlePool) releaseAll() {
	for _, h := range p.all {
		if err := h.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close recognizer handle")
		}
	}
}
