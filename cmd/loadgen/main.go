// TaskPool load generation tool
//
// This tool stress-tests the lock-free stack and the worker pool and prints
// throughput numbers, for quick sanity checks outside the benchmark suite.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mnohosten/taskpool/pkg/concurrent"
	"github.com/mnohosten/taskpool/pkg/pool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return nil
	}

	command := os.Args[1]

	switch command {
	case "stack":
		return runStack(os.Args[2:])
	case "pool":
		return runPool(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println("TaskPool Load Generator")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  loadgen stack [-goroutines N] [-ops N]   Hammer the lock-free stack")
	fmt.Println("  loadgen pool  [-workers N] [-tasks N]    Hammer the worker pool")
}

func runStack(args []string) error {
	fs := flag.NewFlagSet("stack", flag.ExitOnError)
	goroutines := fs.Int("goroutines", 8, "Number of concurrent goroutines")
	ops := fs.Int("ops", 1_000_000, "Push/pop pairs per goroutine")
	fs.Parse(args)

	stack := concurrent.NewLockFreeStack[int]()
	pops := concurrent.NewCounter()
	misses := concurrent.NewCounter()

	fmt.Printf("Stack stress: %d goroutines x %d push/pop pairs\n", *goroutines, *ops)

	start := time.Now()
	var wg sync.WaitGroup
	for g := 0; g < *goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < *ops; i++ {
				stack.Push(id**ops + i)
				if _, ok := stack.Pop(); ok {
					pops.Inc()
				} else {
					misses.Inc()
				}
			}
		}(g)
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := int64(*goroutines) * int64(*ops) * 2
	fmt.Printf("✓ Completed in %v\n", elapsed)
	fmt.Printf("  Throughput: %.0f ops/sec\n", float64(total)/elapsed.Seconds())
	fmt.Printf("  Successful pops: %d (misses: %d)\n", pops.Load(), misses.Load())
	fmt.Printf("  Remaining on stack: %d\n", stack.Size())

	// Every pushed element must be either popped or still on the stack
	if pops.Load()+int64(stack.Size()) != int64(*goroutines)*int64(*ops) {
		return fmt.Errorf("element conservation violated")
	}
	return nil
}

func runPool(args []string) error {
	fs := flag.NewFlagSet("pool", flag.ExitOnError)
	workers := fs.Int("workers", 8, "Number of pool workers")
	tasks := fs.Int("tasks", 100_000, "Number of tasks to submit")
	fs.Parse(args)

	counter := concurrent.NewCounter()
	p := pool.New(&pool.Config{NumWorkers: *workers})

	fmt.Printf("Pool stress: %d workers, %d tasks\n", *workers, *tasks)

	start := time.Now()
	for i := 0; i < *tasks; i++ {
		if err := p.SubmitFunc(func() error {
			counter.Inc()
			return nil
		}); err != nil {
			return fmt.Errorf("submit failed: %w", err)
		}
	}
	p.Wait()
	elapsed := time.Since(start)
	p.Shutdown()

	stats := p.Stats()
	fmt.Printf("✓ Completed in %v\n", elapsed)
	fmt.Printf("  Throughput: %.0f tasks/sec\n", float64(*tasks)/elapsed.Seconds())
	fmt.Printf("  Executed: %d, failed: %d, dropped: %d\n",
		counter.Load(), stats.TasksFailed, stats.TasksDropped)

	if counter.Load() != int64(*tasks) {
		return fmt.Errorf("expected %d executed tasks, got %d", *tasks, counter.Load())
	}
	return nil
}
