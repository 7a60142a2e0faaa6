package algorithm

func heapSort(r *recorder) {
	n := r.size()
	for i := n/2 - 1; i >= 0; i-- {
		if r.stopped() {
			return
		}
		siftDown(r, i, n)
	}
	for end := n - 1; end > 0; end-- {
		if r.stopped() {
			return
		}
		r.swap(0, end)
		siftDown(r, 0, end)
	}
}

// siftDown restores the max-heap property below root within [0, n).
func siftDown(r *recorder, root, n int) {
	for {
		if r.stopped() {
			return
		}
		largest := root
		left, right := 2*root+1, 2*root+2
		if left < n && r.compare(left, largest) {
			largest = left
		}
		if right < n && r.compare(right, largest) {
			largest = right
		}
		if largest == root {
			return
		}
		r.swap(root, largest)
		root = largest
	}
}

// leonardoNumbers memoizes L(0)=L(1)=1, L(k)=L(k-1)+L(k-2)+1 for one run.
type leonardoNumbers []int

func (l *leonardoNumbers) at(k int) int {
	for len(*l) <= k {
		n := len(*l)
		if n < 2 {
			*l = append(*l, 1)
			continue
		}
		*l = append(*l, (*l)[n-1]+(*l)[n-2]+1)
	}
	return (*l)[k]
}

// smoothSort keeps the prefix as a forest of Leonardo max-heaps whose roots
// ascend left to right, then dequeues the rightmost root repeatedly.
//
// orders holds the order of each tree, leftmost first; the rightmost tree's
// root is always the last element of the forest.
func smoothSort(r *recorder) {
	n := r.size()
	if n < 2 {
		return
	}
	leo := &leonardoNumbers{}
	orders := make([]int, 0, 32)
	for i := 0; i < n; i++ {
		if r.stopped() {
			return
		}
		k := len(orders)
		switch {
		case k >= 2 && orders[k-2] == orders[k-1]+1:
			orders = append(orders[:k-2], orders[k-2]+1)
		case k >= 1 && orders[k-1] == 1:
			orders = append(orders, 0)
		default:
			orders = append(orders, 1)
		}
		smoothRectify(r, leo, orders, len(orders)-1, i)
	}

	for end := n - 1; end > 0; end-- {
		if r.stopped() {
			return
		}
		k := len(orders) - 1
		order := orders[k]
		if order < 2 {
			orders = orders[:k]
			continue
		}
		// Split the root's tree into its two children.
		right := end - 1
		left := right - leo.at(order-2)
		orders = append(orders[:k], order-1, order-2)
		smoothRectify(r, leo, orders, len(orders)-2, left)
		if r.stopped() {
			return
		}
		smoothRectify(r, leo, orders, len(orders)-1, right)
	}
}

// smoothRectify moves the root of tree idx (at position root) left along the
// root chain until the chain ascends, then sifts it into that tree.
func smoothRectify(r *recorder, leo *leonardoNumbers, orders []int, idx, root int) {
	for idx > 0 {
		if r.stopped() {
			return
		}
		prev := root - leo.at(orders[idx])
		if !r.compare(prev, root) {
			break
		}
		if order := orders[idx]; order >= 2 {
			right := root - 1
			left := right - leo.at(order-2)
			if !r.compare(prev, left) || !r.compare(prev, right) {
				break
			}
		}
		r.swap(prev, root)
		root = prev
		idx--
	}
	smoothSift(r, leo, root, orders[idx])
}

// smoothSift restores the max-heap property of a Leonardo tree of the given
// order rooted at root. Its right child sits at root-1, its left child at
// root-1-L(order-2).
func smoothSift(r *recorder, leo *leonardoNumbers, root, order int) {
	for order >= 2 {
		if r.stopped() {
			return
		}
		right := root - 1
		left := right - leo.at(order-2)
		child, childOrder := right, order-2
		if r.compare(left, right) {
			child, childOrder = left, order-1
		}
		if !r.compare(child, root) {
			return
		}
		r.swap(root, child)
		root, order = child, childOrder
	}
}
