package algorithm

func selectionSort(r *recorder) {
	n := r.size()
	for i := 0; i < n-1; i++ {
		if r.stopped() {
			return
		}
		minIdx := i
		for j := i + 1; j < n; j++ {
			if r.stopped() {
				return
			}
			if r.compare(minIdx, j) {
				minIdx = j
			}
		}
		if minIdx != i {
			r.swap(i, minIdx)
		}
	}
}

// doubleSelectionSort places both the minimum and the maximum of the
// unsorted window per pass.
func doubleSelectionSort(r *recorder) {
	left, right := 0, r.size()-1
	for left < right {
		if r.stopped() {
			return
		}
		minIdx, maxIdx := left, left
		for j := left + 1; j <= right; j++ {
			if r.stopped() {
				return
			}
			if r.compare(minIdx, j) {
				minIdx = j
			}
			if r.compare(j, maxIdx) {
				maxIdx = j
			}
		}
		// Every element of the window is equal.
		if minIdx == maxIdx {
			return
		}
		if minIdx != left {
			r.swap(left, minIdx)
		}
		// The maximum was just moved out of left.
		if maxIdx == left {
			maxIdx = minIdx
		}
		if maxIdx != right {
			r.swap(right, maxIdx)
		}
		left++
		right--
	}
}

// cycleSort writes every element directly to its final position, carrying
// the displaced element on to the next position of the cycle. Elements already
// in place are skipped and runs of duplicates are stepped over.
//
// array[start] keeps its original value until the cycle closes; a write back
// to start completes the cycle and the stale copy is dropped.
func cycleSort(r *recorder) {
	n := r.size()
	for start := 0; start < n-1; start++ {
		if r.stopped() {
			return
		}
		item := r.read(start)
		pos := cyclePosition(r, start, item)
		if r.stopped() {
			return
		}
		if pos == start {
			continue
		}
		pos = skipDuplicates(r, pos, item)
		item = cycleWrite(r, pos, item)

		for pos != start {
			if r.stopped() {
				return
			}
			pos = cyclePosition(r, start, item)
			if r.stopped() {
				return
			}
			pos = skipDuplicates(r, pos, item)
			item = cycleWrite(r, pos, item)
		}
	}
}

// cycleWrite stores item at pos and returns the value it displaced.
func cycleWrite(r *recorder, pos, item int) int {
	displaced := r.read(pos)
	r.set(pos, item)
	return displaced
}

// skipDuplicates advances pos past elements equal to item.
func skipDuplicates(r *recorder, pos, item int) int {
	for pos < r.size()-1 && r.read(pos) == item {
		if r.stopped() {
			return pos
		}
		pos++
	}
	return pos
}

// cyclePosition counts the elements right of start that are smaller than item.
func cyclePosition(r *recorder, start, item int) int {
	pos := start
	for i := start + 1; i < r.size(); i++ {
		if r.stopped() {
			return pos
		}
		if r.read(i) < item {
			pos++
		}
	}
	return pos
}
