package wxicons

// Table is the ordered collection of asset records built from the icon sources.
// Records are kept in canonical condition order.
type Table struct {
	Records []AssetRecord
}

// resolveTier is one fallback level of the condition resolver.
type resolveTier func(r *AssetRecord, condition string, v Variant) bool

// resolveTiers are tried in order. Each tier scans the records in table order
// and the first match wins.
var resolveTiers = []resolveTier{
	// exact condition, matching or variant-less record
	func(r *AssetRecord, condition string, v Variant) bool {
		return r.Condition == condition && (r.Variant == NoVariant || r.Variant == v)
	},
	// exact condition, any variant
	func(r *AssetRecord, condition string, _ Variant) bool {
		return r.Condition == condition
	},
	func(r *AssetRecord, _ string, _ Variant) bool {
		return r.Condition == FallbackCondition
	},
	func(*AssetRecord, string, Variant) bool {
		return true
	},
}

// resolve returns the index of the best record and the 1-based tier which matched it.
// It returns -1, 0 only for an empty slice.
func resolve(records []AssetRecord, condition string, isDay bool) (int, int) {
	v := VariantFor(isDay)
	for tier, match := range resolveTiers {
		for i := range records {
			if match(&records[i], condition, v) {
				return i, tier + 1
			}
		}
	}
	return -1, 0
}

// Resolve returns the record to play for a condition at the given time of day.
// An unknown condition degrades to the fallback condition, then to the first record.
// It returns nil only when the table is empty.
func (t *Table) Resolve(condition string, isDay bool) *AssetRecord {
	i, _ := resolve(t.Records, condition, isDay)
	if i < 0 {
		return nil
	}
	return &t.Records[i]
}

// Lookup returns the record with the given identifier.
func (t *Table) Lookup(id string) (*AssetRecord, bool) {
	for i := range t.Records {
		if t.Records[i].ID == id {
			return &t.Records[i], true
		}
	}
	return nil, false
}

// Len returns the number of records in the table.
func (t *Table) Len() int { return len(t.Records) }

// fallback returns the record used when a weather type has no record of its own.
func (t *Table) fallback() *AssetRecord {
	for i := range t.Records {
		if t.Records[i].Condition == FallbackCondition {
			return &t.Records[i]
		}
	}
	if len(t.Records) > 0 {
		return &t.Records[0]
	}
	return nil
}

// weatherRecord returns the record bound to the weather type, if it was built.
func (t *Table) weatherRecord(wt WeatherType) *AssetRecord {
	condition, v, ok := wt.Asset()
	if !ok {
		return nil
	}
	for i := range t.Records {
		r := &t.Records[i]
		if r.Condition == condition && r.Variant == v {
			return r
		}
	}
	return nil
}

// Frame returns frame index of the animation bound to the weather type.
// Unknown types and out of range indices yield the first frame of the fallback record.
func (t *Table) Frame(wt WeatherType, index int) MonoFrame {
	if r := t.weatherRecord(wt); r != nil && index >= 0 && index < len(r.Frames) {
		return r.Frames[index]
	}
	if r := t.fallback(); r != nil && len(r.Frames) > 0 {
		return r.Frames[0]
	}
	return MonoFrame{}
}

// FrameCount returns the number of frames of the animation bound to the weather type.
func (t *Table) FrameCount(wt WeatherType) int {
	if r := t.weatherRecord(wt); r != nil {
		return len(r.Frames)
	}
	if r := t.fallback(); r != nil {
		return len(r.Frames)
	}
	return 0
}
