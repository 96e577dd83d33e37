package requirements

// synonymRules folds vendor label variants into the canonical field set.
// Rules run in this exact order and each one only fires when its target
// key is still unset, so a directly-labeled canonical field always wins
// and "hard drive" takes precedence over "hdd".
var synonymRules = []struct {
	from, to string
}{
	{"hard drive", "storage"},
	{"hdd", "storage"},
	{"cpu", "processor"},
	{"video card", "graphics"},
	{"video", "graphics"},
	{"ram", "memory"},
}

// NormalizeLabels returns a copy of fields with synonym labels folded into
// canonical keys. Existing canonical values are never overwritten.
func NormalizeLabels(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, rule := range synonymRules {
		v, have := out[rule.from]
		if !have {
			continue
		}
		if _, taken := out[rule.to]; !taken {
			out[rule.to] = v
		}
	}
	return out
}
