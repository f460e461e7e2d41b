// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task 一次性延迟任务：重连排程、踢出后的跳转等
type Task struct {
	Id       int64
	Execute  time.Time
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Scheduler runs delayed callbacks. All tasks are one-shot; cancelling
// by id before the deadline prevents the callback from firing, which is
// how a terminal close cancels a pending reconnect.
type Scheduler struct {
	queue    taskQueue
	mutex    sync.Mutex
	nextId   int64
	stopChan chan struct{}
	stopOnce sync.Once
	// tick granularity, overridable in tests
	interval time.Duration
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue:    make(taskQueue, 0),
		nextId:   1,
		stopChan: make(chan struct{}),
		interval: 50 * time.Millisecond,
	}
	heap.Init(&s.queue)
	go s.process()
	return s
}

// After schedules callback to run once after delay and returns the task
// id for cancellation.
func (s *Scheduler) After(delay time.Duration, callback func()) int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task := &Task{
		Id:       s.nextId,
		Execute:  time.Now().Add(delay),
		Callback: callback,
	}
	s.nextId++

	heap.Push(&s.queue, task)
	return task.Id
}

// Cancel removes a pending task. Cancelling an already-fired or unknown
// id is a no-op.
func (s *Scheduler) Cancel(taskId int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, task := range s.queue {
		if task.Id == taskId {
			heap.Remove(&s.queue, i)
			break
		}
	}
}

// Pending returns the number of tasks not yet fired.
func (s *Scheduler) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.queue.Len()
}

// Stop halts the scheduler loop. Pending tasks never fire.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *Scheduler) process() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			var due []*Task

			s.mutex.Lock()
			for s.queue.Len() > 0 {
				task := s.queue[0]
				if task.Execute.After(now) {
					break
				}
				heap.Pop(&s.queue)
				due = append(due, task)
			}
			s.mutex.Unlock()

			for _, task := range due {
				go task.Callback()
			}

		case <-s.stopChan:
			return
		}
	}
}
