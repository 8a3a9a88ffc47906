package similarity

// autojunkMinLen is the target length from which very frequent runes are
// treated as popular and excluded from match seeding.
const autojunkMinLen = 200

// Ratio returns the matching-blocks similarity of a and b in [0, 1]:
// 2*M/T, where T is the total rune count of both strings and M the number of
// runes covered by the matching blocks found by recursively taking the
// longest common substring. Two empty strings score 1.
//
// The result matches Python's difflib.SequenceMatcher(None, a, b).ratio(),
// including its popular-element heuristic for targets of 200 runes or more.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := newMatcher(ra, rb)
	return 2 * float64(m.matches()) / float64(total)
}

// matcher finds matching blocks between a and b.
type matcher struct {
	a, b []rune
	// b2j maps each non-popular rune of b to its ascending positions.
	b2j map[rune][]int
}

type span struct {
	alo, ahi, blo, bhi int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	if n := len(b); n >= autojunkMinLen {
		ntest := n/100 + 1
		for r, idxs := range b2j {
			if len(idxs) > ntest {
				delete(b2j, r)
			}
		}
	}

	return &matcher{a: a, b: b, b2j: b2j}
}

// matches returns the total size of all matching blocks.
func (m *matcher) matches() int {
	total := 0
	queue := []span{{0, len(m.a), 0, len(m.b)}}

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k

		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}

	return total
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the given
// ranges. Ties go to the block starting earliest in a, then earliest in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	// Popular runes never seed a match but may still extend one.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}

	return besti, bestj, bestsize
}
