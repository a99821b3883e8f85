package names

// jaro computes the Jaro similarity of two strings compared byte-wise.
// Inputs are expected to be normalized (A-Z0-9 only).
func jaro(s1, s2 string) float64 {
	len1, len2 := len(s1), len(s2)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	window := max(len1, len2)/2 - 1
	if window < 0 {
		window = 0
	}

	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)
	matches := 0
	for i := 0; i < len1; i++ {
		start := max(0, i-window)
		end := min(i+window+1, len2)
		for j := start; j < end; j++ {
			if matched2[j] || s1[i] != s2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	// Half the number of matched characters that appear out of order.
	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(len1) + m/float64(len2) + (m-t)/m) / 3
}

// JaroWinkler returns the Jaro-Winkler similarity of s1 and s2 in [0, 1]
// using the resolver's default tuning.
func JaroWinkler(s1, s2 string) float64 {
	return DefaultOptions().similarity(s1, s2)
}

func (o Options) similarity(s1, s2 string) float64 {
	j := jaro(s1, s2)
	if j < o.BoostThreshold {
		return j
	}

	limit := min(len(s1), len(s2), o.MaxPrefix)
	prefix := 0
	for i := 0; i < limit; i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*o.PrefixScale*(1-j)
}
