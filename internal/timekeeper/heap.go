package timekeeper

import "container/heap"

// dueHeap orders *Formation by dueAtMs, implementing container/heap.Interface.
type dueHeap []*Formation

func (h dueHeap) Len() int { return len(h) }

func (h dueHeap) Less(i, j int) bool { return h[i].dueAtMs < h[j].dueAtMs }

func (h dueHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *dueHeap) Push(x any) {
	f := x.(*Formation)
	f.heapIndex = len(*h)
	*h = append(*h, f)
}

func (h *dueHeap) Pop() any {
	old := *h
	n := len(old)
	f := old[n-1]
	old[n-1] = nil
	f.heapIndex = -1
	*h = old[:n-1]
	return f
}

func (h *dueHeap) push(f *Formation) { heap.Push(h, f) }

func (h *dueHeap) popMin() *Formation { return heap.Pop(h).(*Formation) }

func (h *dueHeap) peek() *Formation {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

func (h *dueHeap) remove(f *Formation) {
	if f.heapIndex < 0 || f.heapIndex >= len(*h) {
		return
	}
	heap.Remove(h, f.heapIndex)
}

func (h *dueHeap) fix(f *Formation) {
	if f.heapIndex < 0 || f.heapIndex >= len(*h) {
		return
	}
	heap.Fix(h, f.heapIndex)
}
