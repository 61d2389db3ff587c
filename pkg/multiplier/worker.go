package multiplier

import (
	"time"
)

// workerLoop is the body of each pool goroutine: dequeue a job, compute its
// block, report completion, repeat. The loop exits only when dequeue
// returns ok=false, which happens exactly once termination has been
// requested and the queue is drained. A worker never observes a job after
// that.
func (p *Pool) workerLoop(id int) {
	defer p.wg.Done()

	for {
		j, ok := p.mon.dequeue()
		if !ok {
			p.logger.Debugf("worker %d exiting", id)
			return
		}

		start := time.Now()
		computeBlock(j)
		p.mon.reportCompletion(j.invocation)
		p.metrics.RecordJob(time.Since(start))
	}
}

// computeBlock computes every element of the job's block of C: the full
// inner-dimension dot product of the corresponding rows of A and columns
// of B. The block owns its output elements exclusively, so the writes need
// no synchronization beyond the matrix's disjoint-index guarantee.
func computeBlock(j job) {
	n := j.c.Size()
	blockSize := n / j.blocksPerRow
	rowStart := j.blockRow * blockSize
	colStart := j.blockCol * blockSize

	for i := rowStart; i < rowStart+blockSize; i++ {
		for k := colStart; k < colStart+blockSize; k++ {
			var sum float64
			for x := 0; x < n; x++ {
				sum += j.a.At(i, x) * j.b.At(x, k)
			}
			j.c.Set(i, k, sum)
		}
	}
}
