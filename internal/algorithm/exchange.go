package algorithm

// Exchange sorts: every mutation is a swap of two elements after a compare.

// bubbleSort shrinks each pass to the position of the last swap.
func bubbleSort(r *recorder) {
	n := r.size()
	for n > 1 {
		if r.stopped() {
			return
		}
		last := 0
		for i := 1; i < n; i++ {
			if r.stopped() {
				return
			}
			if r.compare(i-1, i) {
				r.swap(i-1, i)
				last = i
			}
		}
		n = last
	}
}

func cocktailShakerSort(r *recorder) {
	start, end := 0, r.size()-1
	for start < end {
		if r.stopped() {
			return
		}
		swapped := false
		for i := start; i < end; i++ {
			if r.stopped() {
				return
			}
			if r.compare(i, i+1) {
				r.swap(i, i+1)
				swapped = true
			}
		}
		if !swapped {
			return
		}
		end--

		swapped = false
		for i := end - 1; i >= start; i-- {
			if r.stopped() {
				return
			}
			if r.compare(i, i+1) {
				r.swap(i, i+1)
				swapped = true
			}
		}
		if !swapped {
			return
		}
		start++
	}
}

// oddEvenSort alternates passes over odd and even neighbour pairs until a
// full round makes no swap.
func oddEvenSort(r *recorder) {
	n := r.size()
	for sorted := false; !sorted; {
		if r.stopped() {
			return
		}
		sorted = true
		for _, first := range [2]int{1, 0} {
			for i := first; i < n-1; i += 2 {
				if r.stopped() {
					return
				}
				if r.compare(i, i+1) {
					r.swap(i, i+1)
					sorted = false
				}
			}
		}
	}
}

// combShrink is the gap shrink factor of comb sort.
const combShrink = 1.3

func combSort(r *recorder) {
	n := r.size()
	gap := n
	for swapped := true; gap > 1 || swapped; {
		if r.stopped() {
			return
		}
		gap = int(float64(gap) / combShrink)
		if gap < 1 {
			gap = 1
		}
		swapped = false
		for i := 0; i+gap < n; i++ {
			if r.stopped() {
				return
			}
			if r.compare(i, i+gap) {
				r.swap(i, i+gap)
				swapped = true
			}
		}
	}
}

func gnomeSort(r *recorder) {
	n := r.size()
	for i := 1; i < n; {
		if r.stopped() {
			return
		}
		if i > 0 && r.compare(i-1, i) {
			r.swap(i-1, i)
			i--
			continue
		}
		i++
	}
}

// shellSort runs gapped insertion with the gap halving from n/2.
func shellSort(r *recorder) {
	n := r.size()
	for gap := n / 2; gap > 0; gap /= 2 {
		for i := gap; i < n; i++ {
			if r.stopped() {
				return
			}
			for j := i; j >= gap && r.compare(j-gap, j); j -= gap {
				if r.stopped() {
					return
				}
				r.swap(j-gap, j)
			}
		}
	}
}
