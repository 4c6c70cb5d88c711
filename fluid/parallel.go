package fluid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum cell count to fan a stage out to workers.
// Below this, running inline is faster than the channel round trips.
const parallelThreshold = 64 * 64

// kernel processes rows [y0, y1) of one stage.
type kernel func(y0, y1 int)

// rowChunk is a range of rows for a worker to process.
type rowChunk struct {
	y0, y1 int
	fn     kernel
}

// workerPool runs stage kernels over row chunks. Each run call returns only
// after every chunk has finished, which is the barrier between stages.
type workerPool struct {
	numWorkers int

	workChan chan rowChunk // sends work to workers
	doneChan chan struct{} // workers signal completion
	stopChan chan struct{} // signals workers to exit
	wg       sync.WaitGroup
	running  bool
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: workers}
}

// start launches persistent worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.y0, chunk.y1)
			p.doneChan <- struct{}{}
		}
	}
}

// run applies fn to every row of an n×n grid and waits for completion.
func (p *workerPool) run(n int, fn kernel) {
	if p.numWorkers <= 1 || n*n < parallelThreshold {
		fn(0, n)
		return
	}

	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		y0 := w * chunkSize
		y1 := y0 + chunkSize
		if y1 > n {
			y1 = n
		}
		if y0 >= y1 {
			continue
		}

		p.workChan <- rowChunk{y0: y0, y1: y1, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
