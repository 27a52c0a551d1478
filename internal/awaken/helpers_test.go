package awaken_test

// scriptedRNG replays vals in order and counts how many were consumed.
type scriptedRNG struct {
	vals []float64
	n    int
}

func (s *scriptedRNG) Float64() float64 {
	v := s.vals[s.n%len(s.vals)]
	s.n++
	return v
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
