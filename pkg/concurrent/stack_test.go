package concurrent

import (
	"sync"
	"testing"
)

func TestLockFreeStack_PushPop(t *testing.T) {
	s := NewLockFreeStack[int]()

	// Test with empty stack
	if _, ok := s.Pop(); ok {
		t.Error("Pop on empty stack should return false")
	}

	// Push some values
	s.Push(1)
	s.Push(2)
	s.Push(3)

	// Pop in reverse order (LIFO)
	if v, ok := s.Pop(); !ok || v != 3 {
		t.Errorf("Expected 3, got %v", v)
	}
	if v, ok := s.Pop(); !ok || v != 2 {
		t.Errorf("Expected 2, got %v", v)
	}
	if v, ok := s.Pop(); !ok || v != 1 {
		t.Errorf("Expected 1, got %v", v)
	}

	// Stack should be empty
	if _, ok := s.Pop(); ok {
		t.Error("Stack should be empty")
	}
}

func TestLockFreeStack_Peek(t *testing.T) {
	s := NewLockFreeStack[string]()

	// Test with empty stack
	if _, ok := s.Peek(); ok {
		t.Error("Peek on empty stack should return false")
	}

	s.Push("hello")
	s.Push("world")

	// Peek should return top without removing
	if v, ok := s.Peek(); !ok || v != "world" {
		t.Errorf("Expected 'world', got %v", v)
	}
	if v, ok := s.Peek(); !ok || v != "world" {
		t.Errorf("Expected 'world' again, got %v", v)
	}

	// Size should still be 2
	if size := s.Size(); size != 2 {
		t.Errorf("Expected size 2, got %d", size)
	}
}

func TestLockFreeStack_IsEmpty(t *testing.T) {
	s := NewLockFreeStack[int]()

	if !s.IsEmpty() {
		t.Error("New stack should be empty")
	}

	s.Push(1)
	if s.IsEmpty() {
		t.Error("Stack should not be empty after push")
	}

	s.Pop()
	if !s.IsEmpty() {
		t.Error("Stack should be empty after popping all elements")
	}
}

func TestLockFreeStack_Size(t *testing.T) {
	s := NewLockFreeStack[int]()

	if size := s.Size(); size != 0 {
		t.Errorf("Expected size 0, got %d", size)
	}

	for i := 0; i < 10; i++ {
		s.Push(i)
	}

	if size := s.Size(); size != 10 {
		t.Errorf("Expected size 10, got %d", size)
	}

	for i := 0; i < 5; i++ {
		s.Pop()
	}

	if size := s.Size(); size != 5 {
		t.Errorf("Expected size 5, got %d", size)
	}
}

func TestLockFreeStack_Clear(t *testing.T) {
	s := NewLockFreeStack[int]()

	for i := 0; i < 100; i++ {
		s.Push(i)
	}

	s.Clear()

	if !s.IsEmpty() {
		t.Error("Stack should be empty after clear")
	}
	if size := s.Size(); size != 0 {
		t.Errorf("Expected size 0 after clear, got %d", size)
	}
}

func TestLockFreeStack_IsLockFree(t *testing.T) {
	s := NewLockFreeStack[int]()

	if !s.IsLockFree() {
		t.Error("atomic.Pointer should be lock-free on supported platforms")
	}
}

func TestLockFreeStack_ConcurrentPush(t *testing.T) {
	s := NewLockFreeStack[int]()
	iterations := 1000
	goroutines := 10

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				s.Push(id*iterations + j)
			}
		}(i)
	}

	wg.Wait()

	expected := goroutines * iterations
	size := s.Size()
	if size != expected {
		t.Errorf("Expected size %d, got %d", expected, size)
	}
}

// Four producers each push 0..999 concurrently; after they join, a single
// consumer pops until empty and verifies the multiset of popped values.
func TestLockFreeStack_ConcurrentProducersSingleConsumer(t *testing.T) {
	s := NewLockFreeStack[int]()
	producers := 4
	perProducer := 1000

	var wg sync.WaitGroup
	wg.Add(producers)

	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				s.Push(j)
			}
		}()
	}

	wg.Wait()

	counts := make(map[int]int)
	pops := 0
	for {
		v, ok := s.Pop()
		if !ok {
			break
		}
		counts[v]++
		pops++
	}

	if pops != producers*perProducer {
		t.Fatalf("Expected %d pops, got %d", producers*perProducer, pops)
	}
	for v := 0; v < perProducer; v++ {
		if counts[v] != producers {
			t.Errorf("Expected value %d to appear %d times, got %d", v, producers, counts[v])
		}
	}
}

func TestLockFreeStack_ConcurrentPushPop(t *testing.T) {
	s := NewLockFreeStack[int]()
	iterations := 1000
	goroutines := 5

	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	// Pushers
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				s.Push(id*iterations + j)
			}
		}(i)
	}

	// Poppers
	popCount := 0
	var popMu sync.Mutex
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				if _, ok := s.Pop(); ok {
					popMu.Lock()
					popCount++
					popMu.Unlock()
				}
			}
		}()
	}

	wg.Wait()

	// Total popped should be <= total pushed, and the remainder should
	// still be on the stack.
	totalPushed := iterations * goroutines
	if popCount > totalPushed {
		t.Errorf("Popped more items (%d) than pushed (%d)", popCount, totalPushed)
	}

	size := s.Size()
	expected := totalPushed - popCount
	if size != expected {
		t.Errorf("Expected final size %d, got %d", expected, size)
	}
}

func TestLockFreeStack_StructValues(t *testing.T) {
	type job struct {
		ID   int
		Name string
	}

	s := NewLockFreeStack[job]()
	s.Push(job{ID: 1, Name: "first"})
	s.Push(job{ID: 2, Name: "second"})

	if v, ok := s.Pop(); !ok || v.ID != 2 || v.Name != "second" {
		t.Errorf("Expected {2 second}, got %+v", v)
	}
	if v, ok := s.Pop(); !ok || v.ID != 1 || v.Name != "first" {
		t.Errorf("Expected {1 first}, got %+v", v)
	}
}
