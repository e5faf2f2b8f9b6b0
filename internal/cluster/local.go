package cluster

import (
	"fmt"

	"github.com/kprdes/gridfilter/internal/engine"
	"github.com/kprdes/gridfilter/internal/kernel"
	"github.com/kprdes/gridfilter/internal/raster"
)

// RunLocal executes a full distributed run inside one process, with every
// non-coordinator rank on its own goroutine behind a pipe link. The workers
// share nothing with the coordinator: all image data crosses the gob codec
// exactly as it would over TCP.
//
// ranks counts all participants including the coordinator, matching the
// worker-count argument of the shared-memory backend.
func RunLocal(src *raster.Buffer, k kernel.Kernel, ranks int) (*raster.Buffer, error) {
	if ranks <= 0 {
		return nil, fmt.Errorf("%w: worker count %d", engine.ErrInvalidPartition, ranks)
	}

	remote := ranks - 1
	coordConns := make([]Conn, remote)
	errC := make(chan error, remote)
	for i := 0; i < remote; i++ {
		coordSide, workerSide := Pipe()
		coordConns[i] = coordSide
		go func(conn Conn) {
			errC <- NewWorker(conn).Run()
			conn.Close()
		}(workerSide)
	}

	co := NewCoordinator(coordConns)
	out, runErr := co.Run(src, k)
	co.Close()

	for i := 0; i < remote; i++ {
		if err := <-errC; err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	return out, nil
}
