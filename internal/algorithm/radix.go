package algorithm

// Radix sorts key every element on value-min so negative values sort
// correctly. The digit count comes from the largest key; an input whose
// keys are all zero needs no pass and produces no writes.

// digitCount returns the number of base-radix digits of span (0 for 0).
func digitCount(span, radix int) int {
	d := 0
	for t := span; t > 0; t /= radix {
		d++
	}
	return d
}

// radixLSD returns a least-significant-digit radix sort. Each pass reads
// the whole array, counts digits, and writes every value into its bucket
// slot with set.
func radixLSD(radix int) runFunc {
	return func(r *recorder) {
		n := r.size()
		if n == 0 {
			return
		}
		lo, hi, ok := scanBounds(r)
		if !ok {
			return
		}
		digits := digitCount(hi-lo, radix)

		values := make([]int, n)
		exp := 1
		for d := 0; d < digits; d++ {
			if r.stopped() {
				return
			}
			counts := make([]int, radix)
			for i := 0; i < n; i++ {
				if r.stopped() {
					return
				}
				values[i] = r.read(i)
				counts[(values[i]-lo)/exp%radix]++
			}
			sum := 0
			for b, c := range counts {
				counts[b] = sum
				sum += c
			}
			for _, v := range values {
				if r.stopped() {
					return
				}
				b := (v - lo) / exp % radix
				r.set(counts[b], v)
				counts[b]++
			}
			exp *= radix
		}
	}
}

// radixMSD returns a most-significant-digit radix sort. Buckets are formed
// in place by walking permutation cycles with swaps, then every bucket with
// more than one element is sorted on the next digit.
func radixMSD(radix int) runFunc {
	return func(r *recorder) {
		n := r.size()
		if n == 0 {
			return
		}
		lo, hi, ok := scanBounds(r)
		if !ok {
			return
		}
		digits := digitCount(hi-lo, radix)
		if digits == 0 {
			return
		}
		msd := &msdRadix{r: r, radix: radix, digits: digits, base: lo}
		msd.sort(0, n, 0)
	}
}

type msdRadix struct {
	r      *recorder
	radix  int
	digits int
	base   int
}

func (m *msdRadix) digit(value, exp int) int {
	return (value - m.base) / exp % m.radix
}

// sort orders [lo, hi) on digit depth, counted from the most significant.
func (m *msdRadix) sort(lo, hi, depth int) {
	r := m.r
	if r.stopped() {
		return
	}
	exp := 1
	for i := 0; i < m.digits-depth-1; i++ {
		exp *= m.radix
	}

	counts := make([]int, m.radix)
	for i := lo; i < hi; i++ {
		if r.stopped() {
			return
		}
		counts[m.digit(r.read(i), exp)]++
	}

	// ends[b] is one past the last free slot of bucket b, relative to lo.
	ends := make([]int, m.radix)
	sum := 0
	for b, c := range counts {
		sum += c
		ends[b] = sum
	}

	for i := 0; i < hi-lo; {
		if r.stopped() {
			return
		}
		var d int
		for {
			if r.stopped() {
				return
			}
			d = m.digit(r.read(lo+i), exp)
			ends[d]--
			j := ends[d]
			if j <= i {
				break
			}
			r.swap(lo+i, lo+j)
		}
		i += counts[d]
	}

	if depth+1 >= m.digits {
		return
	}
	start := lo
	for _, c := range counts {
		if c > 1 {
			m.sort(start, start+c, depth+1)
			if r.stopped() {
				return
			}
		}
		start += c
	}
}
