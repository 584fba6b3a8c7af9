package copra

// Choose turns the scanned community weights into the new labelset for
// vertex u. Communities with accumulated weight >= wth are collected in
// scan order, up to limit entries; if none qualify but at least one
// community was touched, the first community in scan order is taken alone,
// which keeps every vertex attached to some community under a strict
// threshold. Retained weights are normalized to sum to 1. A vertex with no
// touched community at all becomes its own singleton community. The
// dominant entry is moved to index 0 before returning.
//
// wth is conventionally B * vtot[u], with B the caller's belonging
// threshold fraction. More than limit qualifying communities are silently
// truncated in scan order; that is policy, not an error.
func (s *Scan) Choose(u uint32, wth float64, limit int) Labelset {
	if limit <= 0 || limit > MaxLabels {
		limit = MaxLabels
	}
	var ls Labelset
	n := 0
	sum := 0.0
	for _, c := range s.cs {
		if s.out[c] < wth {
			continue
		}
		if n == limit {
			break
		}
		ls[n] = Label{Community: c, Weight: s.out[c]}
		sum += s.out[c]
		n++
	}
	if n == 0 && len(s.cs) > 0 {
		c := s.cs[0]
		ls[0] = Label{Community: c, Weight: s.out[c]}
		sum = s.out[c]
		n = 1
	}
	for i := 0; i < n; i++ {
		ls[i].Weight /= sum
	}
	if n == 0 {
		ls[0] = Label{Community: u, Weight: 1}
		n = 1
	}
	// dominant community leads the list
	best := 0
	for i := 1; i < n; i++ {
		if ls[i].Weight > ls[best].Weight {
			best = i
		}
	}
	if best != 0 {
		ls[0], ls[best] = ls[best], ls[0]
	}
	return ls
}
