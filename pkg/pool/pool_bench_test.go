package pool

import (
	"fmt"
	"sync/atomic"
	"testing"
)

func BenchmarkPool_Submit(b *testing.B) {
	p := New(&Config{NumWorkers: 4})
	defer p.Shutdown()

	var counter atomic.Int64
	task := TaskFunc(func() error {
		counter.Add(1)
		return nil
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Submit(task)
	}
	b.StopTimer()

	p.Wait()
}

func BenchmarkPool_SubmitParallel(b *testing.B) {
	p := New(&Config{NumWorkers: 8})
	defer p.Shutdown()

	var counter atomic.Int64
	task := TaskFunc(func() error {
		counter.Add(1)
		return nil
	})

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			p.Submit(task)
		}
	})
	b.StopTimer()

	p.Wait()
}

func BenchmarkPool_Throughput(b *testing.B) {
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("%dworkers", workers), func(b *testing.B) {
			p := New(&Config{NumWorkers: workers})

			var counter atomic.Int64
			for i := 0; i < b.N; i++ {
				p.SubmitFunc(func() error {
					counter.Add(1)
					return nil
				})
			}

			p.ShutdownAndDrain()
		})
	}
}
