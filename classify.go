package reportprep

// Partition is the outcome of Classify: four disjoint lists, in input order.
type Partition struct {
	Equities   []Equity
	Bonds      []Bond
	Structured []StructuredProduct
	Unmatched  []string
}

// Len returns the number of identifiers in the partition.
func (p Partition) Len() int {
	return len(p.Equities) + len(p.Bonds) + len(p.Structured) + len(p.Unmatched)
}

// Classify assigns each identifier to the first catalog holding it:
// equities and ETFs, then bonds, then structured products. Identifiers found
// nowhere are unmatched. Every identifier lands in exactly one list.
func Classify(ids []string, c *Catalogs) Partition {
	p := Partition{
		Equities:   []Equity{},
		Bonds:      []Bond{},
		Structured: []StructuredProduct{},
		Unmatched:  []string{},
	}
	if c == nil {
		c = new(Catalogs)
	}
	for _, id := range ids {
		isin := NormalizeISIN(id)
		if e, ok := c.Equities[isin]; ok {
			e.ISIN = isin
			p.Equities = append(p.Equities, e)
			continue
		}
		if b, ok := c.Bonds[isin]; ok {
			b.ISIN = isin
			p.Bonds = append(p.Bonds, b)
			continue
		}
		if sp, ok := c.Structured[isin]; ok {
			sp.ISIN = isin
			sp.Type = StructuredType
			p.Structured = append(p.Structured, sp)
			continue
		}
		p.Unmatched = append(p.Unmatched, isin)
	}
	return p
}
