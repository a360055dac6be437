package routing

import (
	"container/heap"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

type queueItem struct {
	id   model.NodeID
	dist float64
}

// distQueue is a min-heap on dist. Decrease-key is lazy: a better distance
// pushes a new item and stale ones are dropped on pop.
type distQueue []queueItem

func (q distQueue) Len() int { return len(q) }

func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].id < q[j].id
}

func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *distQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

func (q *distQueue) push(id model.NodeID, dist float64) {
	heap.Push(q, queueItem{id: id, dist: dist})
}

func (q *distQueue) pop() queueItem {
	return heap.Pop(q).(queueItem)
}
